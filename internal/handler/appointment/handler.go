package appointment

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/hopewell-clinic/booking-api/internal/model"
	"github.com/hopewell-clinic/booking-api/internal/service/appointment"
	"github.com/hopewell-clinic/booking-api/internal/service/slot"
	apperrors "github.com/hopewell-clinic/booking-api/pkg/errors"
	"github.com/hopewell-clinic/booking-api/pkg/httputil"
)

type Handler struct {
	service  *appointment.Service
	slots    *slot.Service
	validate *validator.Validate
}

func NewHandler(service *appointment.Service, slots *slot.Service) *Handler {
	return &Handler{
		service:  service,
		slots:    slots,
		validate: validator.New(),
	}
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	apt, err := h.service.CreateFromRequest(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, apt)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid appointment ID"))
		return
	}

	apt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	filters := &model.AppointmentFilters{}

	if id := c.Query("doctor_id"); id != "" {
		doctorID, err := uuid.Parse(id)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation("invalid doctor ID"))
			return
		}
		filters.DoctorID = doctorID
	}
	if status := c.Query("status"); status != "" {
		filters.Status = model.AppointmentStatus(status)
	}
	if date := c.Query("date_from"); date != "" {
		from, err := time.Parse(model.DateOnly, date)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation("invalid date_from"))
			return
		}
		filters.DateFrom = from
	}
	if date := c.Query("date_to"); date != "" {
		to, err := time.Parse(model.DateOnly, date)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation("invalid date_to"))
			return
		}
		filters.DateTo = to
	}

	appointments, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointments)
}

func (h *Handler) ConfirmAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid appointment ID"))
		return
	}

	if err := h.service.Confirm(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"confirmed": true})
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid appointment ID"))
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.RespondWithError(c, apperrors.Validation(err.Error()))
			return
		}
	}

	if err := h.service.Cancel(c.Request.Context(), id, req.Reason); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"cancelled": true})
}

// GetAvailability is the raw slot query: one doctor, one date, a duration
// taken from the service when given, the default granularity otherwise.
func (h *Handler) GetAvailability(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Query("doctor_id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid doctor ID"))
		return
	}

	date, err := time.Parse(model.DateOnly, c.Query("date"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid date format"))
		return
	}

	duration := h.slots.Generator().Granularity()
	if raw := c.Query("duration_minutes"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httputil.RespondWithError(c, apperrors.Validation("invalid duration_minutes"))
			return
		}
		duration = parsed
	}

	slots, err := h.slots.AvailableSlots(c.Request.Context(), doctorID, date, duration)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, slots)
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("/availability", h.GetAvailability)
		appointments.POST("", h.CreateAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.POST("/:id/confirm", h.ConfirmAppointment)
		appointments.POST("/:id/cancel", h.CancelAppointment)
	}
}
