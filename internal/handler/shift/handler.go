package shift

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hopewell-clinic/booking-api/internal/model"
	"github.com/hopewell-clinic/booking-api/internal/repository"
	"github.com/hopewell-clinic/booking-api/internal/service/shift"
	apperrors "github.com/hopewell-clinic/booking-api/pkg/errors"
	"github.com/hopewell-clinic/booking-api/pkg/httputil"
)

type Handler struct {
	doctors repository.DoctorRepository
	shifts  *shift.Service
}

func NewHandler(doctors repository.DoctorRepository, shifts *shift.Service) *Handler {
	return &Handler{doctors: doctors, shifts: shifts}
}

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.doctors.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, doctors)
}

// ListOnDuty answers the roster question directly from the local schedule,
// without the upstream scheduling service.
func (h *Handler) ListOnDuty(c *gin.Context) {
	date, err := time.Parse(model.DateOnly, c.Query("date"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid date format"))
		return
	}

	doctors, err := h.doctors.ListActive(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	onDuty, err := h.shifts.FilterOnDuty(c.Request.Context(), doctors, date, nil)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, onDuty)
}

func (h *Handler) GetSchedule(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid doctor ID"))
		return
	}

	schedule, err := h.shifts.GetSchedule(c.Request.Context(), doctorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, schedule)
}

func (h *Handler) UpdateSchedule(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid doctor ID"))
		return
	}

	if _, err := h.doctors.Get(c.Request.Context(), doctorID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var inputs []*model.ShiftDayInput
	if err := c.ShouldBindJSON(&inputs); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	schedule, err := h.shifts.UpdateSchedule(c.Request.Context(), doctorID, inputs)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, schedule)
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.GET("", h.ListDoctors)
		doctors.GET("/on-duty", h.ListOnDuty)
		doctors.GET("/:id/shifts", h.GetSchedule)
		doctors.PUT("/:id/shifts", h.UpdateSchedule)
	}
}
