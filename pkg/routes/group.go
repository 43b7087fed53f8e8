// Package routes registers grouped HTTP routes on a ServeMux and records
// their OpenAPI operations.
package routes

import (
	"maps"
	"net/http"

	"github.com/JaimeStill/verdict/pkg/openapi"
)

// Group organizes routes under a common prefix with shared tags.
// Schemas are merged into the spec's components when the group is registered.
type Group struct {
	Prefix      string
	Tags        []string
	Description string
	Routes      []Route
	Children    []Group
	Schemas     map[string]*openapi.Schema
}

// Register adds all routes from the given groups to the mux.
// When spec is non-nil, documented routes are added to its paths under basePath.
func Register(mux *http.ServeMux, basePath string, spec *openapi.Spec, groups ...Group) {
	for _, group := range groups {
		registerGroup(mux, basePath, spec, "", group)
	}
}

func registerGroup(mux *http.ServeMux, basePath string, spec *openapi.Spec, parentPrefix string, group Group) {
	fullPrefix := parentPrefix + group.Prefix

	if spec != nil {
		if group.Schemas != nil {
			maps.Copy(spec.Components.Schemas, group.Schemas)
		}
		if group.Description != "" {
			for _, tag := range group.Tags {
				spec.AddTag(tag, group.Description)
			}
		}
	}

	for _, route := range group.Routes {
		pattern := route.Method + " " + fullPrefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)

		if spec != nil && route.OpenAPI != nil {
			addOperation(spec, basePath+fullPrefix+route.Pattern, route, group.Tags)
		}
	}

	for _, child := range group.Children {
		registerGroup(mux, basePath, spec, fullPrefix, child)
	}
}

func addOperation(spec *openapi.Spec, path string, route Route, tags []string) {
	op := route.OpenAPI
	if len(op.Tags) == 0 {
		op.Tags = tags
	}

	item, ok := spec.Paths[path]
	if !ok {
		item = &openapi.PathItem{}
		spec.Paths[path] = item
	}

	switch route.Method {
	case http.MethodGet:
		item.Get = op
	case http.MethodPost:
		item.Post = op
	case http.MethodPut:
		item.Put = op
	case http.MethodDelete:
		item.Delete = op
	}
}
