package api

import (
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/verdict/pkg/classifier"
	"github.com/JaimeStill/verdict/pkg/handlers"
	"github.com/JaimeStill/verdict/pkg/lifecycle"
	"github.com/JaimeStill/verdict/pkg/openapi"
	"github.com/JaimeStill/verdict/pkg/routes"
	"github.com/JaimeStill/verdict/pkg/storage"
)

// ClassifierStatus reports which provider serves classifications and whether
// it is ready.
type ClassifierStatus struct {
	Provider  string           `json:"provider,omitempty"`
	Ready     bool             `json:"ready"`
	Error     string           `json:"error,omitempty"`
	Artifacts []ArtifactStatus `json:"artifacts,omitempty"`
}

// ArtifactStatus reports whether a model artifact exists in blob storage.
type ArtifactStatus struct {
	Key    string `json:"key"`
	Exists bool   `json:"exists"`
	Error  string `json:"error,omitempty"`
}

type classifierHandler struct {
	cls    classifier.Classifier
	store  storage.System
	lc     *lifecycle.Coordinator
	logger *slog.Logger
	keys   []string
}

func newClassifierHandler(
	cls classifier.Classifier,
	store storage.System,
	lc *lifecycle.Coordinator,
	logger *slog.Logger,
	keys []string,
) *classifierHandler {
	return &classifierHandler{
		cls:    cls,
		store:  store,
		lc:     lc,
		logger: logger.With("handler", "classifier"),
		keys:   keys,
	}
}

func (h *classifierHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/classifier",
		Tags:   []string{"Classifier"},
		Schemas: map[string]*openapi.Schema{
			"ClassifierStatus": {
				Type: "object",
				Properties: map[string]*openapi.Schema{
					"provider":  {Type: "string", Enum: []any{classifier.ProviderHTTP, classifier.ProviderOpenAI, classifier.ProviderONNX}},
					"ready":     {Type: "boolean"},
					"error":     {Type: "string"},
					"artifacts": {Type: "array", Items: &openapi.Schema{Type: "object"}},
				},
			},
		},
		Routes: []routes.Route{
			{
				Method:  "GET",
				Pattern: "",
				Handler: h.status,
				OpenAPI: &openapi.Operation{
					Summary: "Classifier provider status",
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Provider status", "ClassifierStatus"),
					},
				},
			},
		},
	}
}

func (h *classifierHandler) status(w http.ResponseWriter, r *http.Request) {
	var s ClassifierStatus

	switch {
	case h.cls == nil:
		s.Error = "classifier unavailable"
	default:
		s.Provider = h.cls.Name()
		s.Ready = h.lc.Ready()
		if err, failed := h.lc.Failures()["classifier"]; failed {
			s.Ready = false
			s.Error = err.Error()
		}
	}

	if h.store != nil && len(h.keys) > 0 {
		s.Artifacts = make([]ArtifactStatus, len(h.keys))

		g, ctx := errgroup.WithContext(r.Context())
		for i, key := range h.keys {
			g.Go(func() error {
				a := ArtifactStatus{Key: key}
				exists, err := h.store.Exists(ctx, key)
				if err != nil {
					h.logger.Warn("artifact check failed", "key", key, "error", err)
					a.Error = err.Error()
				}
				a.Exists = exists
				s.Artifacts[i] = a
				return nil
			})
		}
		g.Wait()
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}
