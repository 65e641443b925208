package handler

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/profile-setup/internal/form"
	"github.com/stemsi/profile-setup/internal/middleware"
	"github.com/stemsi/profile-setup/internal/model"
	"github.com/stemsi/profile-setup/internal/render"
	"github.com/stemsi/profile-setup/internal/response"
	"github.com/stemsi/profile-setup/internal/service"
	ws "github.com/stemsi/profile-setup/internal/websocket"
)

// outboxSize bounds queued events per connection. A client that falls this
// far behind is disconnected.
const outboxSize = 64

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams live re-renders of a view and accepts keystrokes and
// submit actions from the page.
type WSHandler struct {
	views    *form.Registry
	profiles *service.ProfileService
	limiter  *middleware.RateLimiter
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler. limiter is shared with the HTTP
// submit routes; nil leaves stream submissions unlimited.
func NewWSHandler(
	views *form.Registry,
	profiles *service.ProfileService,
	limiter *middleware.RateLimiter,
	log zerolog.Logger,
	allowedOrigins []string,
) *WSHandler {
	return &WSHandler{
		views:    views,
		profiles: profiles,
		limiter:  limiter,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// ViewStream godoc
// WS /ws/v1/views/:id/stream
// Sends a render event on connect and after every change to the view.
// Disconnecting leaves the view open so the page can reconnect; abandoned
// views are removed by the registry sweeper.
func (h *WSHandler) ViewStream(c *gin.Context) {
	f, ok := lookupView(c, h.views, response.Fail)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("view_id", f.ID()).Logger()
	wsLog.Debug().Msg("View stream connected")

	outbox := make(chan interface{}, outboxSize)
	// stop is closed when the client falls behind or a write fails.
	stop := make(chan struct{})
	var stopOnce sync.Once
	halt := func() { stopOnce.Do(func() { close(stop) }) }

	// Observers run synchronously inside form updates; they only enqueue.
	unsubscribe := f.Subscribe(func(field model.Field, view model.ProfileView) {
		select {
		case outbox <- h.renderEvent(wsLog, field, view):
		default:
			halt()
		}
	})

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writeLoop(conn, wsLog, outbox, stop, halt)
	}()

	if enqueue(outbox, stop, h.renderEvent(wsLog, "", f.View())) {
		h.readLoop(c.Request.Context(), conn, wsLog, c.ClientIP(), f, outbox, stop)
	}

	// No observer call can follow unsubscribe, so closing the outbox is safe.
	unsubscribe()
	close(outbox)
	<-writerDone

	wsLog.Debug().Msg("View stream closed")
}

// enqueue reports false once the stream has stopped.
func enqueue(outbox chan<- interface{}, stop <-chan struct{}, v interface{}) bool {
	select {
	case outbox <- v:
		return true
	case <-stop:
		return false
	}
}

func (h *WSHandler) readLoop(
	ctx context.Context,
	conn *websocket.Conn,
	log zerolog.Logger,
	clientIP string,
	f *form.Form,
	outbox chan<- interface{},
	stop <-chan struct{},
) {
	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("Unexpected close")
			}
			return
		}

		var reply interface{}
		switch msg.Action {
		case ws.ActionInput:
			field, err := form.ParseField(msg.Field)
			if err != nil {
				reply = ws.NewError("unknown field: " + msg.Field)
				break
			}
			// Set cannot fail for a parsed field.
			_ = f.Set(field, msg.Value)
		case ws.ActionSubmit:
			if !h.limiter.Allow(clientIP) {
				reply = ws.NewError(response.GetMessage(response.ErrRateLimitExceeded))
				break
			}
			applyIfSent(f, model.FieldMajor, msg.Major)
			applyIfSent(f, model.FieldYear, msg.Year)
			h.profiles.Submit(ctx, f)
		case ws.ActionPing:
			reply = ws.PongResponse{Event: ws.EventPong}
		default:
			log.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			reply = ws.NewError("unknown action: " + string(msg.Action))
		}

		if reply != nil && !enqueue(outbox, stop, reply) {
			return
		}
	}
}

// applyIfSent sets field when the client included it.
func applyIfSent(f *form.Form, field model.Field, value *string) {
	if value != nil {
		// Set cannot fail for major or year.
		_ = f.Set(field, *value)
	}
}

func (h *WSHandler) writeLoop(conn *websocket.Conn, log zerolog.Logger, outbox <-chan interface{}, stop <-chan struct{}, halt func()) {
	for {
		select {
		case v, ok := <-outbox:
			if !ok {
				return
			}
			if err := ws.WriteTyped(conn, v); err != nil {
				log.Debug().Err(err).Msg("Write failed")
				halt()
				_ = conn.Close()
				return
			}
		case <-stop:
			log.Warn().Msg("Stream stopped, closing connection")
			_ = conn.Close()
			return
		}
	}
}

func (h *WSHandler) renderEvent(log zerolog.Logger, field model.Field, view model.ProfileView) ws.RenderResponse {
	statusHTML, err := render.Status(view)
	if err != nil {
		log.Error().Err(err).Msg("Render status")
	}
	return ws.RenderResponse{
		Event:      ws.EventRender,
		Changed:    field,
		View:       view,
		StatusHTML: statusHTML,
	}
}
