package openapi

import (
	"encoding/json"
	"net/http"
	"slices"
)

const version = "3.1.0"

// Spec is an OpenAPI 3.1 document. Paths and component schemas are filled in
// as route groups register.
type Spec struct {
	OpenAPI    string               `json:"openapi"`
	Info       *Info                `json:"info"`
	Tags       []*Tag               `json:"tags,omitempty"`
	Paths      map[string]*PathItem `json:"paths"`
	Components *Components          `json:"components,omitempty"`
}

// NewSpec starts a document titled and described by cfg for the given
// service version.
func NewSpec(cfg *Config, serviceVersion string) *Spec {
	return &Spec{
		OpenAPI: version,
		Info: &Info{
			Title:       cfg.Title,
			Version:     serviceVersion,
			Description: cfg.Description,
		},
		Paths:      make(map[string]*PathItem),
		Components: NewComponents(),
	}
}

// AddTag declares a tag and its description. The first description given
// for a name is kept.
func (s *Spec) AddTag(name, description string) {
	if slices.ContainsFunc(s.Tags, func(t *Tag) bool { return t.Name == name }) {
		return
	}
	s.Tags = append(s.Tags, &Tag{Name: name, Description: description})
}

// Handler serializes the document as it stands and serves those bytes.
// Routes registered afterward are not reflected.
func (s *Spec) Handler() (http.HandlerFunc, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write(data)
	}, nil
}
