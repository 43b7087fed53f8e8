// Package app serves the server-rendered review UI: a single-review form and
// a chat transcript, both backed by the shared review workflow.
package app

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/yuin/goldmark"

	"github.com/JaimeStill/verdict/internal/chat"
	"github.com/JaimeStill/verdict/pkg/formatting"
	"github.com/JaimeStill/verdict/pkg/module"
	"github.com/JaimeStill/verdict/pkg/web"
)

//go:embed templates static
var content embed.FS

const layout = "app"

var (
	reviewView   = web.ViewDef{Route: "/{$}", Template: "review.html", Title: "리뷰 감성 분류"}
	chatView     = web.ViewDef{Route: "/chat/{id}", Template: "chat.html", Title: "리뷰 분류 봇"}
	notFoundView = web.ViewDef{Template: "not-found.html", Title: "Not Found"}
)

// NewModule creates the UI module mounted at basePath.
func NewModule(basePath string, cls chat.Classifier, sessions chat.System, logger *slog.Logger) (*module.Module, error) {
	ts, err := web.NewTemplateSet(
		content,
		"templates/layouts/*.html",
		"templates/views",
		basePath,
		funcs(),
		[]web.ViewDef{reviewView, chatView, notFoundView},
	)
	if err != nil {
		return nil, err
	}

	static, err := web.DistServer(content, "static", "/static/")
	if err != nil {
		return nil, err
	}

	h := &handler{
		cls:      cls,
		sessions: sessions,
		ts:       ts,
		logger:   logger.With("module", "app"),
	}

	router := web.NewRouter(ts.ErrorHandler(layout, notFoundView, http.StatusNotFound))
	router.HandleFunc("GET "+reviewView.Route, h.reviewPage)
	router.HandleFunc("POST "+reviewView.Route, h.classify)
	router.HandleFunc("GET /chat", h.newChat)
	router.HandleFunc("GET "+chatView.Route, h.chatPage)
	router.HandleFunc("POST "+chatView.Route, h.send)
	router.HandleFunc("GET /static/", static)

	return module.New(basePath, router), nil
}

func funcs() template.FuncMap {
	md := goldmark.New()
	return template.FuncMap{
		"pct": func(v float64) string {
			return formatting.Percent(v, 2)
		},
		"markdown": func(s string) template.HTML {
			var buf bytes.Buffer
			if err := md.Convert([]byte(s), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(s))
			}
			return template.HTML(buf.String())
		},
	}
}
