package api

import (
	"net/http"

	"github.com/JaimeStill/verdict/internal/config"
	"github.com/JaimeStill/verdict/pkg/openapi"
	"github.com/JaimeStill/verdict/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) error {
	spec := openapi.NewSpec(&cfg.API.OpenAPI, cfg.Version)

	status := newClassifierHandler(
		runtime.Classifier,
		runtime.Storage,
		runtime.Lifecycle,
		runtime.Logger,
		artifactKeys(cfg),
	)

	routes.Register(
		mux,
		cfg.API.BasePath,
		spec,
		domain.Reviews.Handler().Routes(),
		domain.Chat.Handler().Routes(),
		status.routes(),
	)

	serveSpec, err := spec.Handler()
	if err != nil {
		return err
	}
	mux.HandleFunc("GET "+cfg.API.OpenAPI.Path, serveSpec)

	return nil
}

func artifactKeys(cfg *config.Config) []string {
	var keys []string
	for _, k := range []string{cfg.Classifier.ONNX.ModelKey, cfg.Classifier.ONNX.TokenizerKey} {
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
