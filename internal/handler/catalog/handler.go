package catalog

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hopewell-clinic/booking-api/internal/service/catalog"
	apperrors "github.com/hopewell-clinic/booking-api/pkg/errors"
	"github.com/hopewell-clinic/booking-api/pkg/httputil"
)

type Handler struct {
	services *catalog.Service
}

func NewHandler(services *catalog.Service) *Handler {
	return &Handler{services: services}
}

func (h *Handler) ListServices(c *gin.Context) {
	services, err := h.services.ListServices(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, services)
}

func (h *Handler) GetService(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid service ID"))
		return
	}

	service, err := h.services.GetService(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, service)
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	services := r.Group("/services")
	{
		services.GET("", h.ListServices)
		services.GET("/:id", h.GetService)
	}
}
