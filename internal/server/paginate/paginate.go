// Package paginate turns (page, limit, total count) into a page descriptor.
package paginate

import "strconv"

// Defaults applied when page/limit are missing or invalid.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Descriptor describes one page of a listing. TotalPages is
// ceil(Total/Limit) and 0 when Total is 0. Page is not clamped: a caller may
// request a page past the end and simply gets an empty item set.
type Descriptor struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

// Coerce turns raw query parameters into positive page/limit values,
// falling back to the defaults for non-numeric or non-positive input.
func Coerce(page, limit string) (int, int) {
	p, err := strconv.Atoi(page)
	if err != nil || p <= 0 {
		p = DefaultPage
	}
	l, err := strconv.Atoi(limit)
	if err != nil || l <= 0 {
		l = DefaultLimit
	}
	return p, l
}

// New builds a Descriptor. Non-positive page/limit fall back to the defaults,
// so New(0, 0, n) is well-defined. Pure and deterministic.
func New(page, limit int, total int64) Descriptor {
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return Descriptor{Page: page, Limit: limit, Total: total, TotalPages: pages}
}
