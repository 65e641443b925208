package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/profile-setup/internal/form"
	"github.com/stemsi/profile-setup/internal/response"
	"github.com/stemsi/profile-setup/internal/service"
	"github.com/stemsi/profile-setup/internal/validator"
)

// ViewHandler exposes page views as a JSON API.
type ViewHandler struct {
	views    *form.Registry
	profiles *service.ProfileService
}

// NewViewHandler creates a new ViewHandler.
func NewViewHandler(views *form.Registry, profiles *service.ProfileService) *ViewHandler {
	return &ViewHandler{views: views, profiles: profiles}
}

type setFieldRequest struct {
	Field string  `json:"field" binding:"required,oneof=major year"`
	Value *string `json:"value" binding:"required"`
}

// CreateView godoc
// POST /api/v1/views
func (h *ViewHandler) CreateView(c *gin.Context) {
	f := h.views.Open()
	response.Success(c, http.StatusCreated, gin.H{"view": f.View()})
}

// GetView godoc
// GET /api/v1/views/:id
func (h *ViewHandler) GetView(c *gin.Context) {
	f, ok := lookupView(c, h.views, response.Fail)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{"view": f.View()})
}

// SetField godoc
// PUT /api/v1/views/:id/fields
// Applies one keystroke-level update. Field values are never validated.
func (h *ViewHandler) SetField(c *gin.Context) {
	f, ok := lookupView(c, h.views, response.Fail)
	if !ok {
		return
	}

	var req setFieldRequest
	if fields := validator.Bind(c, &req); fields != nil {
		code := response.ErrValidation
		if _, malformed := fields[validator.DetailKey]; malformed {
			code = response.ErrInvalidPayload
		}
		response.FailWithFields(c, http.StatusBadRequest, code, fields)
		return
	}

	field, err := form.ParseField(req.Field)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownField)
		return
	}
	if err := f.Set(field, *req.Value); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownField)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"view": f.View()})
}

// Submit godoc
// POST /api/v1/views/:id/submit
// Starts a submission and answers immediately with the sending state.
func (h *ViewHandler) Submit(c *gin.Context) {
	f, ok := lookupView(c, h.views, response.Fail)
	if !ok {
		return
	}

	h.profiles.Submit(c.Request.Context(), f)
	response.Success(c, http.StatusAccepted, gin.H{"view": f.View()})
}

// DeleteView godoc
// DELETE /api/v1/views/:id
func (h *ViewHandler) DeleteView(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	if !h.views.Close(id) {
		response.Fail(c, http.StatusNotFound, response.ErrViewNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "view closed"})
}

// lookupView resolves the :id param, reporting failures through fail.
func lookupView(
	c *gin.Context,
	views *form.Registry,
	fail func(c *gin.Context, statusCode int, code response.ErrCode),
) (*form.Form, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil, false
	}

	f, err := views.Get(id)
	if errors.Is(err, form.ErrViewNotFound) {
		fail(c, http.StatusNotFound, response.ErrViewNotFound)
		return nil, false
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, response.ErrInternal)
		return nil, false
	}
	return f, true
}
