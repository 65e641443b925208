package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/profile-setup/internal/form"
	"github.com/stemsi/profile-setup/internal/model"
	"github.com/stemsi/profile-setup/internal/render"
	"github.com/stemsi/profile-setup/internal/response"
	"github.com/stemsi/profile-setup/internal/service"
)

// PageHandler serves the server-rendered profile page.
type PageHandler struct {
	views    *form.Registry
	profiles *service.ProfileService
	log      zerolog.Logger
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(views *form.Registry, profiles *service.ProfileService, log zerolog.Logger) *PageHandler {
	return &PageHandler{
		views:    views,
		profiles: profiles,
		log:      log.With().Str("component", "page_handler").Logger(),
	}
}

// NewPage godoc
// GET /
// Every load opens a fresh view, so reloading resets the form.
func (h *PageHandler) NewPage(c *gin.Context) {
	f := h.views.Open()
	c.HTML(http.StatusOK, render.PageTemplate, render.NewPage(f.View()))
}

// ShowPage godoc
// GET /views/:id
func (h *PageHandler) ShowPage(c *gin.Context) {
	f, ok := lookupView(c, h.views, failHTML)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, render.PageTemplate, render.NewPage(f.View()))
}

// ShowStatus godoc
// GET /views/:id/status
func (h *PageHandler) ShowStatus(c *gin.Context) {
	f, ok := lookupView(c, h.views, failHTML)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, render.StatusTemplate, f.View())
}

// SubmitForm godoc
// POST /views/:id/submit
// Plain form post used when the live stream is unavailable: the posted
// values are applied as field updates, a submission starts, and the browser
// is sent back to the page, which shows the sending state. A view that has
// been swept is reopened with the posted values so the submit still goes out.
func (h *PageHandler) SubmitForm(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		failHTML(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	f, err := h.views.Get(id)
	if errors.Is(err, form.ErrViewNotFound) {
		f = h.views.Open()
		h.log.Info().Str("expired_view_id", id).Str("view_id", f.ID()).Msg("Reopened expired view for submit")
	} else if err != nil {
		failHTML(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	for _, field := range []model.Field{model.FieldMajor, model.FieldYear} {
		if value, posted := c.GetPostForm(string(field)); posted {
			if err := f.Set(field, value); err != nil {
				h.log.Error().Err(err).Str("view_id", f.ID()).Msg("Apply posted field")
				failHTML(c, http.StatusBadRequest, response.ErrUnknownField)
				return
			}
		}
	}

	h.profiles.Submit(c.Request.Context(), f)
	c.Redirect(http.StatusSeeOther, "/views/"+f.ID())
}

func failHTML(c *gin.Context, statusCode int, code response.ErrCode) {
	c.String(statusCode, response.GetMessage(code))
}
