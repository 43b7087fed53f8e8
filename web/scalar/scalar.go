// Package scalar serves an interactive reference for the API's OpenAPI document.
package scalar

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/verdict/pkg/module"
)

//go:embed index.html
var staticFS embed.FS

var page = template.Must(template.ParseFS(staticFS, "index.html"))

// NewModule creates a module at basePath that renders the reference for the
// document served at specURL.
func NewModule(basePath, specURL string, logger *slog.Logger) *module.Module {
	logger = logger.With("module", "scalar")

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := page.Execute(w, map[string]string{"SpecURL": specURL}); err != nil {
			logger.Error("render failed", "error", err)
		}
	})

	return module.New(basePath, mux)
}
