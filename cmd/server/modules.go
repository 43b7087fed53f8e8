package main

import (
	"net/http"

	"github.com/JaimeStill/verdict/internal/api"
	"github.com/JaimeStill/verdict/internal/config"
	"github.com/JaimeStill/verdict/internal/infrastructure"
	"github.com/JaimeStill/verdict/pkg/handlers"
	"github.com/JaimeStill/verdict/pkg/lifecycle"
	"github.com/JaimeStill/verdict/pkg/middleware"
	"github.com/JaimeStill/verdict/pkg/module"
	"github.com/JaimeStill/verdict/web/app"
	"github.com/JaimeStill/verdict/web/scalar"
)

const appPrefix = "/app"

// Modules holds the mounted HTTP modules and the domain they share.
type Modules struct {
	API    *module.Module
	App    *module.Module
	Scalar *module.Module

	runtime *api.Runtime
	domain  *api.Domain
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	runtime := api.NewRuntime(cfg, infra)
	domain := api.NewDomain(cfg, runtime)

	apiModule, err := api.NewModule(cfg, runtime, domain)
	if err != nil {
		return nil, err
	}

	appModule, err := app.NewModule(appPrefix, domain.Reviews, domain.Chat, infra.Logger)
	if err != nil {
		return nil, err
	}
	appModule.Use(middleware.Logger(infra.Logger))
	appModule.Use(middleware.MaxBody(cfg.API.MaxBodySizeBytes()))

	scalarModule := scalar.NewModule("/scalar", cfg.API.BasePath+cfg.API.OpenAPI.Path, infra.Logger)
	scalarModule.Use(middleware.Logger(infra.Logger))

	return &Modules{
		API:     apiModule,
		App:     appModule,
		Scalar:  scalarModule,
		runtime: runtime,
		domain:  domain,
	}, nil
}

// Start registers domain lifecycle hooks.
func (m *Modules) Start() error {
	return m.domain.Start(m.runtime)
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
	router.Mount(m.App)
	router.Mount(m.Scalar)
}

// Readiness is the /readyz body. Failed names subsystems whose startup hook
// returned an error; the service still serves with them degraded.
type Readiness struct {
	Status string            `json:"status"`
	Failed map[string]string `json:"failed,omitempty"`
}

func buildRouter(lc *lifecycle.Coordinator) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, appPrefix+"/", http.StatusFound)
	})

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !lc.Ready() {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, Readiness{Status: "not ready"})
			return
		}

		body := Readiness{Status: "ready"}
		if failures := lc.Failures(); len(failures) > 0 {
			body.Status = "degraded"
			body.Failed = make(map[string]string, len(failures))
			for name, err := range failures {
				body.Failed[name] = err.Error()
			}
		}
		handlers.RespondJSON(w, http.StatusOK, body)
	})

	return router
}
