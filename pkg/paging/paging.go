package paging

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultSize = 20
	maxSize     = 100
)

// Params carries caller-specified pagination: zero-based page index, page
// size and an optional "column" or "column,desc" sort expression. The sort
// column is validated against a whitelist by each repository.
type Params struct {
	Page int
	Size int
	Sort string
	Desc bool
}

func Default() Params {
	return Params{Page: 0, Size: defaultSize}
}

// FromQuery parses page, size and sort from URL query values, falling back to
// defaults on absent or malformed input.
func FromQuery(values url.Values) Params {
	p := Default()

	if v := values.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			p.Page = n
		}
	}
	if v := values.Get("size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Size = n
		}
	}
	if p.Size > maxSize {
		p.Size = maxSize
	}
	if v := values.Get("sort"); v != "" {
		sort, dir, found := strings.Cut(v, ",")
		p.Sort = strings.TrimSpace(sort)
		p.Desc = found && strings.EqualFold(strings.TrimSpace(dir), "desc")
	}
	return p
}

func (p Params) Limit() int {
	if p.Size <= 0 {
		return defaultSize
	}
	return p.Size
}

func (p Params) Offset() int {
	if p.Page < 0 {
		return 0
	}
	return p.Page * p.Limit()
}

type Page[T any] struct {
	Items      []T   `json:"content"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total_elements"`
	TotalPages int   `json:"total_pages"`
}

func NewPage[T any](items []T, params Params, total int64) *Page[T] {
	size := params.Limit()
	pages := int(total) / size
	if int(total)%size != 0 {
		pages++
	}
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:      items,
		Page:       params.Page,
		Size:       size,
		Total:      total,
		TotalPages: pages,
	}
}

// Map converts a page of one item type into another, preserving metadata.
func Map[T, U any](p *Page[T], fn func(T) U) *Page[U] {
	items := make([]U, len(p.Items))
	for i, item := range p.Items {
		items[i] = fn(item)
	}
	return &Page[U]{
		Items:      items,
		Page:       p.Page,
		Size:       p.Size,
		Total:      p.Total,
		TotalPages: p.TotalPages,
	}
}
