package mail

import (
	"bytes"
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/django/v3"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Renderer struct {
	engine *django.Engine
}

// NewRenderer loads the embedded mail templates. Templates are addressed by
// file name without the .html extension.
func NewRenderer() (*Renderer, error) {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, err
	}

	engine := django.NewFileSystem(http.FS(sub), ".html")
	if err = engine.Load(); err != nil {
		return nil, err
	}
	return &Renderer{engine: engine}, nil
}

func (r *Renderer) Render(name string, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := r.engine.Render(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
