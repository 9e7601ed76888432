package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/membersonly/forum/types"
)

const (
	PageIndex         = "index"
	PageSignup        = "sign-up-form"
	PageLogin         = "log-in"
	PageForum         = "forum"
	PageConfirmDelete = "confirm-delete"
)

//go:embed templates/*.html
var templateFS embed.FS

// IndexPage is the public landing page. Posts carry content only.
type IndexPage struct {
	User  *types.User
	Users []types.User
	Posts []types.Post
}

type ForumPage struct {
	User  *types.User
	Posts []types.Post
}

type ConfirmDeletePage struct {
	User    *types.User
	PostID  int64
	Content string
}

type FormPage struct {
	User *types.User
}

// Renderer executes the embedded page templates.
type Renderer struct {
	templates *template.Template
}

func New() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"isAdmin": func(u *types.User) bool { return u != nil && u.IsAdmin() },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{templates: tmpl}, nil
}

// Render writes page with the given status. The template is executed into a
// buffer first so a failing template never produces a half-written page.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data any) error {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, page, data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
