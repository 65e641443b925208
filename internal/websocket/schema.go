package websocket

import "github.com/stemsi/profile-setup/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionInput  Action = "input"
	ActionSubmit Action = "submit"
	ActionPing   Action = "ping"
)

// RequestPayload is the single client message shape; unused fields stay empty.
// A submit may carry the values on screen, which are applied before sending.
type RequestPayload struct {
	Action Action  `json:"action"`
	Field  string  `json:"field,omitempty"`
	Value  string  `json:"value"`
	Major  *string `json:"major,omitempty"`
	Year   *string `json:"year,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventRender Event = "render"
	EventError  Event = "error"
	EventPong   Event = "pong"
)

// RenderResponse carries the form state after a change plus the
// recomputed status line.
type RenderResponse struct {
	Event      Event             `json:"event"`
	Changed    model.Field       `json:"changed,omitempty"`
	View       model.ProfileView `json:"view"`
	StatusHTML string            `json:"status_html"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
