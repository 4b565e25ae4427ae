package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/rs/zerolog/log"
)

//go:embed templates/*
var templateFiles embed.FS

const (
	templateIndex  = "index.html"
	templateResult = "result.html"
	templateError  = "error.html"
)

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// ParseTemplate parses a page together with the shared layout.
func ParseTemplate(name string) (*template.Template, error) {
	return template.New(name).ParseFS(TemplateFilesFS(), "layout.html", name)
}

// pages holds the parsed page templates.
type pages struct {
	index  *template.Template
	result *template.Template
	error  *template.Template
}

func parsePages() (*pages, error) {
	p := &pages{}
	for name, dst := range map[string]**template.Template{
		templateIndex:  &p.index,
		templateResult: &p.result,
		templateError:  &p.error,
	} {
		t, err := ParseTemplate(name)
		if err != nil {
			return nil, fmt.Errorf("[server parsePages] %s: %w", name, err)
		}
		*dst = t
	}
	return p, nil
}

// render executes tmpl into a buffer first so a template error never leaves a
// half-written page behind.
func render(w http.ResponseWriter, r *http.Request, tmpl *template.Template, status int, data any) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("template", tmpl.Name()).Msg("failed to render page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
