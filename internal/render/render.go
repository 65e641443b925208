// Package render turns form state into HTML: the full profile page and the
// status line fragment pushed to live views.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"

	"github.com/stemsi/profile-setup/internal/model"
)

const (
	// PageTemplate is the full-page template name.
	PageTemplate = "page.tmpl"
	// StatusTemplate renders the status line alone.
	StatusTemplate = "status.tmpl"

	pageTitle = "Profile Setup"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed assets
var assetFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Templates returns the parsed template set, ready for gin's SetHTMLTemplate.
func Templates() *template.Template {
	return templates
}

// Assets returns the static files served under /assets.
func Assets() fs.FS {
	sub, err := fs.Sub(assetFS, "assets")
	if err != nil {
		panic(fmt.Sprintf("render: assets sub fs: %v", err))
	}
	return sub
}

// Page is the data handed to PageTemplate.
type Page struct {
	Title string
	View  model.ProfileView
}

// NewPage wraps a view for rendering.
func NewPage(view model.ProfileView) Page {
	return Page{Title: pageTitle, View: view}
}

// Status recomputes the status line for view.
func Status(view model.ProfileView) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, StatusTemplate, view); err != nil {
		return "", fmt.Errorf("render status: %w", err)
	}
	return buf.String(), nil
}
