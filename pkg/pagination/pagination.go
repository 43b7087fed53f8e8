package pagination

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/JaimeStill/verdict/pkg/query"
)

// SortFields is a sort order decoded from either "classification,-created_at"
// or a JSON array of query.SortField.
type SortFields []query.SortField

func (s *SortFields) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = nil
		return nil
	}

	var spec string
	if json.Unmarshal(data, &spec) == nil {
		*s = query.ParseSortFields(spec)
		return nil
	}

	var fields []query.SortField
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*s = fields
	return nil
}

// PageRequest selects one page of review log entries.
type PageRequest struct {
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
	Search   *string    `json:"search,omitempty"`
	Sort     SortFields `json:"sort,omitempty"`
}

// Normalize clamps Page to at least 1 and PageSize into [1, cfg.MaxPageSize],
// substituting cfg.DefaultPageSize when unset. A blank Search is dropped.
func (r *PageRequest) Normalize(cfg Config) {
	r.Page = max(r.Page, 1)
	if r.PageSize < 1 {
		r.PageSize = cfg.DefaultPageSize
	}
	r.PageSize = min(r.PageSize, cfg.MaxPageSize)

	if r.Search != nil {
		if term := strings.TrimSpace(*r.Search); term != "" {
			r.Search = &term
		} else {
			r.Search = nil
		}
	}
}

// FromQuery reads page, page_size, search (or its short form q) and sort
// from URL query values and normalizes the result.
func FromQuery(values url.Values, cfg Config) PageRequest {
	var req PageRequest
	req.Page, _ = strconv.Atoi(values.Get("page"))
	req.PageSize, _ = strconv.Atoi(values.Get("page_size"))

	term := values.Get("search")
	if term == "" {
		term = values.Get("q")
	}
	if term != "" {
		req.Search = &term
	}

	req.Sort = query.ParseSortFields(values.Get("sort"))
	req.Normalize(cfg)
	return req
}

// PageResult is one page of T with the counts needed to walk the rest.
type PageResult[T any] struct {
	Data       []T  `json:"data"`
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

// NewPageResult wraps data as page of a total-row result. An empty result
// still reports one page, and nil data is returned as an empty slice.
func NewPageResult[T any](data []T, total, page, pageSize int) PageResult[T] {
	pages := 1
	if pageSize > 0 {
		pages = max(1, (total+pageSize-1)/pageSize)
	}
	if data == nil {
		data = []T{}
	}

	return PageResult[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: pages,
		HasNext:    page < pages,
	}
}
