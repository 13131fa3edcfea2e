package appointment

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/handler"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/model"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/service/appointment"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.book)
		appointments.GET("", h.list)
		appointments.GET("/:id", h.get)
		appointments.POST("/:id/reschedule", h.reschedule)
		appointments.POST("/:id/cancel", h.cancel)
		appointments.POST("/:id/complete", h.complete)
		appointments.POST("/:id/no-show", h.markNoShow)
	}
}

func (h *Handler) book(c *gin.Context) {
	var req model.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	apt, err := h.service.Book(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	handler.Success(c, http.StatusCreated, apt)
}

func (h *Handler) get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.BadRequest(c, "invalid appointment ID")
		return
	}

	apt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	handler.Success(c, http.StatusOK, apt)
}

// list serves both patient and doctor views: exactly one of patient_id or
// doctor_id is required, and doctors may narrow by date.
func (h *Handler) list(c *gin.Context) {
	patientParam := c.Query("patient_id")
	doctorParam := c.Query("doctor_id")

	switch {
	case patientParam != "" && doctorParam != "":
		handler.BadRequest(c, "specify either patient_id or doctor_id, not both")
	case patientParam != "":
		patientID, err := uuid.Parse(patientParam)
		if err != nil {
			handler.BadRequest(c, "invalid patient ID")
			return
		}
		appointments, err := h.service.ListForPatient(c.Request.Context(), patientID)
		if err != nil {
			handler.Error(c, err)
			return
		}
		handler.Success(c, http.StatusOK, appointments)
	case doctorParam != "":
		doctorID, err := uuid.Parse(doctorParam)
		if err != nil {
			handler.BadRequest(c, "invalid doctor ID")
			return
		}
		var date *time.Time
		if raw := c.Query("date"); raw != "" {
			parsed, err := time.Parse("2006-01-02", raw)
			if err != nil {
				handler.BadRequest(c, "invalid date, expected YYYY-MM-DD")
				return
			}
			date = &parsed
		}
		appointments, err := h.service.ListForDoctor(c.Request.Context(), doctorID, date)
		if err != nil {
			handler.Error(c, err)
			return
		}
		handler.Success(c, http.StatusOK, appointments)
	default:
		handler.BadRequest(c, "patient_id or doctor_id is required")
	}
}

func (h *Handler) reschedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.BadRequest(c, "invalid appointment ID")
		return
	}

	var req model.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	apt, err := h.service.Reschedule(c.Request.Context(), id, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	handler.Success(c, http.StatusOK, apt)
}

func (h *Handler) cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.BadRequest(c, "invalid appointment ID")
		return
	}

	if err := h.service.Cancel(c.Request.Context(), id); err != nil {
		handler.Error(c, err)
		return
	}

	handler.Success(c, http.StatusOK, nil)
}

func (h *Handler) complete(c *gin.Context) {
	h.transition(c, h.service.Complete)
}

func (h *Handler) markNoShow(c *gin.Context) {
	h.transition(c, h.service.MarkNoShow)
}

func (h *Handler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*model.Appointment, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.BadRequest(c, "invalid appointment ID")
		return
	}

	apt, err := fn(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	handler.Success(c, http.StatusOK, apt)
}
