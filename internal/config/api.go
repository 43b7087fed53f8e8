package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/JaimeStill/verdict/pkg/formatting"
	"github.com/JaimeStill/verdict/pkg/middleware"
	"github.com/JaimeStill/verdict/pkg/openapi"
	"github.com/JaimeStill/verdict/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "VERDICT_CORS_ENABLED",
	Origins:          "VERDICT_CORS_ORIGINS",
	AllowedMethods:   "VERDICT_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "VERDICT_CORS_ALLOWED_HEADERS",
	AllowCredentials: "VERDICT_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "VERDICT_CORS_MAX_AGE",
}

var paginationEnv = &pagination.Env{
	DefaultPageSize: "VERDICT_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "VERDICT_PAGINATION_MAX_PAGE_SIZE",
}

var openapiEnv = &openapi.ConfigEnv{
	Title:       "VERDICT_OPENAPI_TITLE",
	Description: "VERDICT_OPENAPI_DESCRIPTION",
	Path:        "VERDICT_OPENAPI_PATH",
}

// APIConfig holds API routing, request limits, CORS, pagination, and OpenAPI settings.
type APIConfig struct {
	BasePath    string                `toml:"base_path"`
	MaxBodySize string                `toml:"max_body_size"`
	CORS        middleware.CORSConfig `toml:"cors"`
	Pagination  pagination.Config     `toml:"pagination"`
	OpenAPI     openapi.Config        `toml:"openapi"`
}

// MaxBodySizeBytes returns MaxBodySize in bytes. Finalize guarantees it parses.
func (c *APIConfig) MaxBodySizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxBodySize)
	return int64(size)
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.OpenAPI.Finalize(openapiEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxBodySize != "" {
		c.MaxBodySize = overlay.MaxBodySize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "1MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("VERDICT_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("VERDICT_API_MAX_BODY_SIZE"); v != "" {
		c.MaxBodySize = v
	}
}

func (c *APIConfig) validate() error {
	if !strings.HasPrefix(c.BasePath, "/") {
		return fmt.Errorf("invalid base_path: %q must start with /", c.BasePath)
	}
	if size, err := formatting.ParseBytes(c.MaxBodySize); err != nil || size <= 0 {
		return fmt.Errorf("invalid max_body_size: %q", c.MaxBodySize)
	}
	return nil
}
