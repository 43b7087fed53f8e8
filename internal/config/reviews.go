package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
)

const (
	EnvReviewsPersist     = "VERDICT_REVIEWS_PERSIST"
	EnvReviewsSchema      = "VERDICT_REVIEWS_SCHEMA"
	EnvReviewsTable       = "VERDICT_REVIEWS_TABLE"
	EnvReviewsSequence    = "VERDICT_REVIEWS_SEQUENCE"
	EnvReviewsPositiveTag = "VERDICT_REVIEWS_POSITIVE_TAG"
	EnvReviewsNegativeTag = "VERDICT_REVIEWS_NEGATIVE_TAG"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// ReviewsConfig controls label mapping and the classification log.
// Persist disables the log entirely when false; classification still succeeds.
type ReviewsConfig struct {
	Persist     bool   `toml:"persist"`
	Schema      string `toml:"schema"`
	Table       string `toml:"table"`
	Sequence    string `toml:"sequence"`
	PositiveTag string `toml:"positive_tag"`
	NegativeTag string `toml:"negative_tag"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ReviewsConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. Persist always applies.
func (c *ReviewsConfig) Merge(overlay *ReviewsConfig) {
	c.Persist = overlay.Persist
	if overlay.Schema != "" {
		c.Schema = overlay.Schema
	}
	if overlay.Table != "" {
		c.Table = overlay.Table
	}
	if overlay.Sequence != "" {
		c.Sequence = overlay.Sequence
	}
	if overlay.PositiveTag != "" {
		c.PositiveTag = overlay.PositiveTag
	}
	if overlay.NegativeTag != "" {
		c.NegativeTag = overlay.NegativeTag
	}
}

func (c *ReviewsConfig) loadDefaults() {
	if c.Schema == "" {
		c.Schema = "public"
	}
	if c.Table == "" {
		c.Table = "review_log"
	}
	if c.Sequence == "" {
		c.Sequence = c.Table + "_seq"
	}
	if c.PositiveTag == "" {
		c.PositiveTag = "LABEL_1"
	}
	if c.NegativeTag == "" {
		c.NegativeTag = "LABEL_0"
	}
}

func (c *ReviewsConfig) loadEnv() {
	if v := os.Getenv(EnvReviewsPersist); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Persist = b
		}
	}
	if v := os.Getenv(EnvReviewsSchema); v != "" {
		c.Schema = v
	}
	if v := os.Getenv(EnvReviewsTable); v != "" {
		c.Table = v
	}
	if v := os.Getenv(EnvReviewsSequence); v != "" {
		c.Sequence = v
	}
	if v := os.Getenv(EnvReviewsPositiveTag); v != "" {
		c.PositiveTag = v
	}
	if v := os.Getenv(EnvReviewsNegativeTag); v != "" {
		c.NegativeTag = v
	}
}

func (c *ReviewsConfig) validate() error {
	for name, v := range map[string]string{
		"schema":   c.Schema,
		"table":    c.Table,
		"sequence": c.Sequence,
	} {
		if !identifierPattern.MatchString(v) {
			return fmt.Errorf("invalid %s identifier: %q", name, v)
		}
	}
	if c.PositiveTag == c.NegativeTag {
		return fmt.Errorf("positive_tag and negative_tag must differ: %q", c.PositiveTag)
	}
	return nil
}
