package availability

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/handler"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/service/availability"
)

// Handler serves the read-only availability view. Responses may be
// stale-within-TTL; the booking path re-validates.
type Handler struct {
	slots *availability.Cache
}

func NewHandler(slots *availability.Cache) *Handler {
	return &Handler{slots: slots}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/availability", h.getAvailability)
}

func (h *Handler) getAvailability(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Query("doctor_id"))
	if err != nil {
		handler.BadRequest(c, "invalid doctor ID")
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		handler.BadRequest(c, "invalid date, expected YYYY-MM-DD")
		return
	}

	slots, err := h.slots.Get(c.Request.Context(), doctorID, date)
	if err != nil {
		handler.Error(c, err)
		return
	}

	handler.Success(c, http.StatusOK, slots)
}
