package doctor

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/newflow/newflow/internal/platform/auth"
	"github.com/newflow/newflow/pkg/pagination"
	"github.com/newflow/newflow/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("doctor", "nurse", "receptionist"))
	readGroup.GET("/doctors", h.List)
	readGroup.GET("/doctors/:id", h.Get)

	// Registration and review are admin-only; RequireRole with no listed
	// roles passes admins and rejects everyone else.
	adminGroup := api.Group("", auth.RequireRole())
	adminGroup.POST("/doctors", h.Register)
	adminGroup.PUT("/doctors/:id", h.Update)
	adminGroup.DELETE("/doctors/:id", h.Delete)
	adminGroup.POST("/doctors/:id/approve", h.Approve)
	adminGroup.POST("/doctors/:id/reject", h.Reject)
}

func (h *Handler) Register(c echo.Context) error {
	var d Doctor
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Register(c.Request().Context(), &d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return response.Created(c, d)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	d, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
	}
	return response.OK(c, d)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	status := Status(c.QueryParam("status"))
	items, total, err := h.svc.List(c.Request().Context(), status, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var d Doctor
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d.ID = id
	if err := h.svc.Update(c.Request().Context(), &d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return response.OK(c, d)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type reviewRequest struct {
	Note string `json:"note"`
}

type reviewFunc func(ctx context.Context, id uuid.UUID, reviewerID, note string) (*Doctor, error)

func (h *Handler) Approve(c echo.Context) error {
	return h.review(c, h.svc.Approve)
}

func (h *Handler) Reject(c echo.Context) error {
	return h.review(c, h.svc.Reject)
}

func (h *Handler) review(c echo.Context, fn reviewFunc) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	reviewerID := auth.UserIDFromContext(c.Request().Context())
	d, err := fn(c.Request().Context(), id, reviewerID, req.Note)
	if err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return response.OK(c, d)
}
