package listing

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omart/marketplace/internal/domain"
)

func fields(errs []FieldError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestParseFilters_Defaults(t *testing.T) {
	t.Parallel()

	f, errs := ParseFilters(url.Values{})
	assert.Empty(t, errs)
	assert.Equal(t, Defaults(), f)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 12, f.Limit)
	assert.Equal(t, SortCreatedAt, f.SortBy)
	assert.Equal(t, "desc", f.SortOrder)
}

func TestParseFilters_Valid(t *testing.T) {
	t.Parallel()

	q := url.Values{
		"page":      {"3"},
		"limit":     {"20"},
		"search":    {"  lamp "},
		"category":  {"Home & Garden"},
		"minPrice":  {"10"},
		"maxPrice":  {"99.5"},
		"sortBy":    {"price"},
		"sortOrder": {"ASC"},
	}
	f, errs := ParseFilters(q)
	require.Empty(t, errs)
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 20, f.Limit)
	assert.Equal(t, 40, f.Offset())
	assert.Equal(t, "lamp", f.Search)
	assert.Equal(t, domain.Category("Home & Garden"), f.Category)
	require.NotNil(t, f.MinPrice)
	require.NotNil(t, f.MaxPrice)
	assert.Equal(t, 10.0, *f.MinPrice)
	assert.Equal(t, 99.5, *f.MaxPrice)
	assert.Equal(t, "price", f.SortBy)
	assert.Equal(t, "asc", f.SortOrder)
}

func TestParseFilters_Degrades(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		q     url.Values
		field string
		check func(t *testing.T, f Filters)
	}{
		{
			name: "non numeric page", q: url.Values{"page": {"two"}}, field: "page",
			check: func(t *testing.T, f Filters) { assert.Equal(t, 1, f.Page) },
		},
		{
			name: "zero page", q: url.Values{"page": {"0"}}, field: "page",
			check: func(t *testing.T, f Filters) { assert.Equal(t, 1, f.Page) },
		},
		{
			name: "huge page", q: url.Values{"page": {"999999"}}, field: "page",
			check: func(t *testing.T, f Filters) { assert.Equal(t, MaxPage, f.Page) },
		},
		{
			name: "limit above cap", q: url.Values{"limit": {"500"}}, field: "limit",
			check: func(t *testing.T, f Filters) { assert.Equal(t, MaxLimit, f.Limit) },
		},
		{
			name: "negative limit", q: url.Values{"limit": {"-1"}}, field: "limit",
			check: func(t *testing.T, f Filters) { assert.Equal(t, DefaultLimit, f.Limit) },
		},
		{
			name: "unknown category", q: url.Values{"category": {"Weapons"}}, field: "category",
			check: func(t *testing.T, f Filters) { assert.Empty(t, f.Category) },
		},
		{
			name: "garbage min price", q: url.Values{"minPrice": {"cheap"}}, field: "minPrice",
			check: func(t *testing.T, f Filters) { assert.Nil(t, f.MinPrice) },
		},
		{
			name: "negative max price", q: url.Values{"maxPrice": {"-3"}}, field: "maxPrice",
			check: func(t *testing.T, f Filters) { assert.Nil(t, f.MaxPrice) },
		},
		{
			name: "inverted price range", q: url.Values{"minPrice": {"50"}, "maxPrice": {"10"}}, field: "minPrice",
			check: func(t *testing.T, f Filters) {
				assert.Nil(t, f.MinPrice)
				assert.Nil(t, f.MaxPrice)
			},
		},
		{
			name: "unknown sort", q: url.Values{"sortBy": {"seller"}}, field: "sortBy",
			check: func(t *testing.T, f Filters) { assert.Equal(t, SortCreatedAt, f.SortBy) },
		},
		{
			name: "unknown order", q: url.Values{"sortOrder": {"sideways"}}, field: "sortOrder",
			check: func(t *testing.T, f Filters) { assert.Equal(t, "desc", f.SortOrder) },
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f, errs := ParseFilters(tt.q)
			assert.Equal(t, []string{tt.field}, fields(errs))
			tt.check(t, f)
		})
	}
}

func TestParseFilters_AllCategoryMeansNoFilter(t *testing.T) {
	t.Parallel()

	f, errs := ParseFilters(url.Values{"category": {"all"}})
	assert.Empty(t, errs)
	assert.Empty(t, f.Category)
}

func TestCacheKey_StableAcrossEquivalentQueries(t *testing.T) {
	t.Parallel()

	a, _ := ParseFilters(url.Values{"search": {"Lamp"}, "page": {"1"}})
	b, _ := ParseFilters(url.Values{"search": {"lamp "}, "sortOrder": {"desc"}})
	c, _ := ParseFilters(url.Values{"search": {"lamp"}, "page": {"2"}})

	assert.Equal(t, a.CacheKey("products_list:"), b.CacheKey("products_list:"))
	assert.NotEqual(t, a.CacheKey("products_list:"), c.CacheKey("products_list:"))
}

func TestEscapeLike(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `50\% off\_now \\o/`, EscapeLike(`50% off_now \o/`))
}
