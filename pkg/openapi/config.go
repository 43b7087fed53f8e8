// Package openapi models an OpenAPI 3.1 document assembled from registered routes.
package openapi

import (
	"fmt"
	"os"
	"strings"
)

// Config names the document and the path, relative to the API base path,
// it is served from.
type Config struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
	Path        string `toml:"path"`
}

// ConfigEnv names the environment variables that override Config fields.
type ConfigEnv struct {
	Title       string
	Description string
	Path        string
}

// Finalize fills defaults, applies env overrides, and checks Path.
func (c *Config) Finalize(env *ConfigEnv) error {
	if c.Title == "" {
		c.Title = "Verdict API"
	}
	if c.Description == "" {
		c.Description = "Review sentiment classification with an append-only classification log."
	}
	if c.Path == "" {
		c.Path = "/openapi.json"
	}

	if env != nil {
		for _, o := range []struct {
			name string
			dst  *string
		}{
			{env.Title, &c.Title},
			{env.Description, &c.Description},
			{env.Path, &c.Path},
		} {
			if o.name == "" {
				continue
			}
			if v := os.Getenv(o.name); v != "" {
				*o.dst = v
			}
		}
	}

	if !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("invalid path: %q must start with /", c.Path)
	}
	return nil
}

// Merge takes every non-empty field of overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Title != "" {
		c.Title = overlay.Title
	}
	if overlay.Description != "" {
		c.Description = overlay.Description
	}
	if overlay.Path != "" {
		c.Path = overlay.Path
	}
}
