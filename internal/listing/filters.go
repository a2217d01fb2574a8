package listing

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/omart/marketplace/internal/domain"
)

const (
	DefaultLimit   = 12
	MaxLimit       = 50
	MaxPage        = 10000
	MaxSearchRunes = 100
)

const (
	SortCreatedAt = "createdAt"
	SortPrice     = "price"
	SortViewCount = "viewCount"
	SortTitle     = "title"
)

var sortColumns = map[string]string{
	SortCreatedAt: "created_at",
	SortPrice:     "price",
	SortViewCount: "view_count",
	SortTitle:     "title",
}

// Filters is a fully sanitised listing request.
type Filters struct {
	Search    string
	Category  domain.Category
	MinPrice  *float64
	MaxPrice  *float64
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

type FieldError struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Defaults() Filters {
	return Filters{SortBy: SortCreatedAt, SortOrder: "desc", Page: 1, Limit: DefaultLimit}
}

// ParseFilters never fails: every problem degrades the affected field to its
// default and is reported in the returned list.
func ParseFilters(q url.Values) (Filters, []FieldError) {
	f := Defaults()
	var errs []FieldError
	report := func(field, value, msg string) {
		errs = append(errs, FieldError{Field: field, Value: value, Message: msg})
	}

	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			report("page", raw, "must be a positive integer")
		case n < 1:
			report("page", raw, "must be a positive integer")
		case n > MaxPage:
			report("page", raw, fmt.Sprintf("must not exceed %d", MaxPage))
			f.Page = MaxPage
		default:
			f.Page = n
		}
	}

	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil || n < 1:
			report("limit", raw, fmt.Sprintf("must be an integer between 1 and %d", MaxLimit))
		case n > MaxLimit:
			report("limit", raw, fmt.Sprintf("must be an integer between 1 and %d", MaxLimit))
			f.Limit = MaxLimit
		default:
			f.Limit = n
		}
	}

	if raw := strings.TrimSpace(q.Get("search")); raw != "" {
		if utf8.RuneCountInString(raw) > MaxSearchRunes {
			report("search", raw, fmt.Sprintf("must not exceed %d characters", MaxSearchRunes))
			raw = string([]rune(raw)[:MaxSearchRunes])
		}
		f.Search = raw
	}

	if raw := strings.TrimSpace(q.Get("category")); raw != "" && raw != "all" {
		if c := domain.Category(raw); c.Valid() {
			f.Category = c
		} else {
			report("category", raw, "unknown category")
		}
	}

	f.MinPrice = parsePrice(q, "minPrice", report)
	f.MaxPrice = parsePrice(q, "maxPrice", report)
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		report("minPrice", q.Get("minPrice"), "must not be greater than maxPrice")
		f.MinPrice, f.MaxPrice = nil, nil
	}

	if raw := strings.TrimSpace(q.Get("sortBy")); raw != "" {
		if _, ok := sortColumns[raw]; ok {
			f.SortBy = raw
		} else {
			report("sortBy", raw, "must be one of createdAt, price, viewCount, title")
		}
	}

	if raw := strings.ToLower(strings.TrimSpace(q.Get("sortOrder"))); raw != "" {
		if raw == "asc" || raw == "desc" {
			f.SortOrder = raw
		} else {
			report("sortOrder", raw, "must be asc or desc")
		}
	}

	return f, errs
}

func parsePrice(q url.Values, key string, report func(field, value, msg string)) *float64 {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		report(key, raw, "must be a non-negative number")
		return nil
	}
	return &v
}

func (f Filters) Offset() int {
	return (f.Page - 1) * f.Limit
}

// CacheKey derives a stable key from the normalised filters; Encode sorts by key.
func (f Filters) CacheKey(prefix string) string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(f.Page))
	v.Set("limit", strconv.Itoa(f.Limit))
	v.Set("sortBy", f.SortBy)
	v.Set("sortOrder", f.SortOrder)
	if f.Search != "" {
		v.Set("search", strings.ToLower(f.Search))
	}
	if f.Category != "" {
		v.Set("category", string(f.Category))
	}
	if f.MinPrice != nil {
		v.Set("minPrice", strconv.FormatFloat(*f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64))
	}
	return prefix + v.Encode()
}
