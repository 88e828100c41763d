// Package pagination parses page parameters and shapes paged listings.
package pagination

import (
	"net/url"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params is a requested page.
type Params struct {
	Page  int
	Limit int
}

// Meta describes where a page sits within the full result set.
type Meta struct {
	CurrentPage int
	TotalPages  int
	TotalPosts  int64
}

// FromQuery reads page and limit, falling back to defaults when either is
// absent, malformed or non-positive.
func FromQuery(values url.Values) Params {
	p := Params{
		Page:  positiveInt(values.Get("page"), DefaultPage),
		Limit: positiveInt(values.Get("limit"), DefaultLimit),
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset is the number of records to skip.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Compute derives the page metadata for total records. ok is false when the
// requested page lies beyond the last non-empty page.
func (p Params) Compute(total int64) (meta Meta, ok bool) {
	pages := 0
	if total > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	meta = Meta{CurrentPage: p.Page, TotalPages: pages, TotalPosts: total}
	if pages > 0 && p.Page > pages {
		return meta, false
	}
	return meta, true
}

// Payload lays out records followed by the currentPage, totalPages and
// totalPosts entries, matching the shape existing clients consume.
func Payload[T any](records []T, meta Meta) []any {
	out := make([]any, 0, len(records)+3)
	for _, record := range records {
		out = append(out, record)
	}
	return append(out,
		map[string]int{"currentPage": meta.CurrentPage},
		map[string]int{"totalPages": meta.TotalPages},
		map[string]int64{"totalPosts": meta.TotalPosts},
	)
}

func positiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
