package booking

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hopewell-clinic/booking-api/internal/model"
	"github.com/hopewell-clinic/booking-api/internal/service/booking"
	apperrors "github.com/hopewell-clinic/booking-api/pkg/errors"
	"github.com/hopewell-clinic/booking-api/pkg/httputil"
)

// Handler is the wizard's HTTP surface. Each step endpoint returns the full
// session so clients can render state, draft, offered data and the degraded
// flag after every transition.
type Handler struct {
	workflow *booking.Workflow
}

func NewHandler(workflow *booking.Workflow) *Handler {
	return &Handler{workflow: workflow}
}

type openRequest struct {
	PatientEmail string `json:"patient_email" validate:"omitempty,email"`
}

type dateRequest struct {
	Date string `json:"date" binding:"required"`
}

type doctorRequest struct {
	DoctorID uuid.UUID `json:"doctor_id" binding:"required"`
}

type slotRequest struct {
	Start model.TimeOfDay `json:"start"`
}

type serviceRequest struct {
	ServiceID uuid.UUID `json:"service_id" binding:"required"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) Open(c *gin.Context) {
	var req openRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.RespondWithError(c, apperrors.Validation(err.Error()))
			return
		}
	}

	session, err := h.workflow.Open(c.Request.Context(), req.PatientEmail)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, session)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	session, err := h.workflow.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, session)
}

func (h *Handler) SelectDate(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req dateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}
	date, err := time.Parse(model.DateOnly, req.Date)
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validationf("invalid date %q", req.Date))
		return
	}

	session, err := h.workflow.SelectDate(c.Request.Context(), id, date)
	h.respond(c, session, err)
}

func (h *Handler) SelectDoctor(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req doctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	session, err := h.workflow.SelectDoctor(c.Request.Context(), id, req.DoctorID)
	h.respond(c, session, err)
}

func (h *Handler) SelectSlot(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	session, err := h.workflow.SelectSlot(c.Request.Context(), id, req.Start)
	h.respond(c, session, err)
}

func (h *Handler) SelectService(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req serviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	session, err := h.workflow.SelectService(c.Request.Context(), id, req.ServiceID)
	h.respond(c, session, err)
}

func (h *Handler) SetNotes(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req notesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	session, err := h.workflow.SetNotes(c.Request.Context(), id, req.Notes)
	h.respond(c, session, err)
}

func (h *Handler) Submit(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	session, err := h.workflow.Submit(c.Request.Context(), id)
	h.respond(c, session, err)
}

func (h *Handler) GoBack(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	session, err := h.workflow.GoBack(c.Request.Context(), id)
	h.respond(c, session, err)
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	if err := h.workflow.Cancel(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"cancelled": true})
}

// respond surfaces the session alongside conflict and validation errors:
// the wizard keeps its collected data on a failed step, and the refreshed
// session is what tells the client where it stands.
func (h *Handler) respond(c *gin.Context, session *booking.Session, err error) {
	if err != nil {
		if session != nil && (apperrors.IsSlotConflict(err) || apperrors.IsValidation(err)) {
			status := http.StatusBadRequest
			kind := apperrors.KindOf(err)
			if kind == apperrors.KindSlotConflict {
				status = http.StatusConflict
			}
			message := err.Error()
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) {
				message = appErr.Message
			}
			c.JSON(status, gin.H{
				"success": false,
				"data":    session,
				"error": gin.H{
					"code":    kind.String(),
					"message": message,
				},
			})
			return
		}
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, session)
}

func (h *Handler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid booking session ID"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/bookings")
	{
		bookings.POST("", h.Open)
		bookings.GET("/:id", h.Get)
		bookings.POST("/:id/date", h.SelectDate)
		bookings.POST("/:id/doctor", h.SelectDoctor)
		bookings.POST("/:id/slot", h.SelectSlot)
		bookings.POST("/:id/service", h.SelectService)
		bookings.POST("/:id/notes", h.SetNotes)
		bookings.POST("/:id/submit", h.Submit)
		bookings.POST("/:id/back", h.GoBack)
		bookings.DELETE("/:id", h.Cancel)
	}
}
