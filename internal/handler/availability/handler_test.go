package availability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/model"
	availabilitysvc "github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/service/availability"
	apperrors "github.com/hafidaso/sal-lmjarab-bolt-sub000/pkg/errors"
)

type stubAvailRepo struct {
	availability *model.DoctorAvailability
	err          error
}

func (s *stubAvailRepo) Get(context.Context, uuid.UUID) (*model.DoctorAvailability, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.availability, nil
}

type stubAppointmentRepo struct{}

func (stubAppointmentRepo) Create(context.Context, *model.Appointment) error { return nil }
func (stubAppointmentRepo) Get(context.Context, uuid.UUID) (*model.Appointment, error) {
	return nil, apperrors.NewNotFound("appointment", nil)
}
func (stubAppointmentRepo) UpdateStatus(context.Context, uuid.UUID, model.AppointmentStatus) error {
	return nil
}
func (stubAppointmentRepo) MoveSlot(context.Context, uuid.UUID, time.Time, int, model.AppointmentStatus) error {
	return nil
}
func (stubAppointmentRepo) ListForPatient(context.Context, uuid.UUID) ([]*model.Appointment, error) {
	return nil, nil
}
func (stubAppointmentRepo) ListForDoctor(context.Context, uuid.UUID, *time.Time) ([]*model.Appointment, error) {
	return nil, nil
}
func (stubAppointmentRepo) ListBlocking(context.Context, uuid.UUID, time.Time) ([]*model.Appointment, error) {
	return nil, nil
}
func (stubAppointmentRepo) CountBlocking(context.Context, uuid.UUID, time.Time) (int, error) {
	return 0, nil
}

func newTestRouter(availRepo *stubAvailRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := availabilitysvc.NewEngine(availRepo, stubAppointmentRepo{}, time.UTC, func() time.Time {
		return time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	})
	cache := availabilitysvc.NewCache(engine, time.Minute, nil)

	r := gin.New()
	NewHandler(cache).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestGetAvailability_OK(t *testing.T) {
	router := newTestRouter(&stubAvailRepo{
		availability: &model.DoctorAvailability{
			WeeklyHours: map[time.Weekday]model.DayHours{
				time.Monday: {Open: true, StartMinute: 540, EndMinute: 1020},
			},
			DefaultDurationMinutes: 30,
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/availability?doctor_id="+uuid.NewString()+"&date=2025-01-20", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"start_minute":540`)
	assert.Contains(t, w.Body.String(), `"available":true`)
}

func TestGetAvailability_BadParams(t *testing.T) {
	router := newTestRouter(&stubAvailRepo{availability: &model.DoctorAvailability{}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/availability?doctor_id=nope&date=2025-01-20", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet,
		"/api/v1/availability?doctor_id="+uuid.NewString()+"&date=20-01-2025", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAvailability_UnknownDoctor(t *testing.T) {
	router := newTestRouter(&stubAvailRepo{err: apperrors.NewNotFound("doctor availability", nil)})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/availability?doctor_id="+uuid.NewString()+"&date=2025-01-20", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
