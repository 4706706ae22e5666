package mailer

import (
	"bytes"
	"embed"
	"html/template"
	"sync"

	"github.com/go-faster/errors"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Renderer renders named email templates. Templates are parsed once at
// construction and cached for the process lifetime.
type Renderer struct {
	once sync.Once
	tpl  *template.Template
	err  error
}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Render(name string, model any) (string, error) {
	r.once.Do(func() {
		r.tpl, r.err = template.ParseFS(templatesFS, "templates/*.html")
	})
	if r.err != nil {
		return "", errors.Wrap(r.err, "failed to parse email templates")
	}

	var buf bytes.Buffer
	if err := r.tpl.ExecuteTemplate(&buf, name, model); err != nil {
		return "", errors.Wrapf(err, "failed to render template %q", name)
	}
	return buf.String(), nil
}
