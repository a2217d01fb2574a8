package httpserver

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omart/marketplace/internal/service"
	"github.com/omart/marketplace/internal/transport"
)

func TestProductFromValues(t *testing.T) {
	tests := []struct {
		name string
		in   url.Values
		want func(t *testing.T, req transport.ProductRequest)
	}{
		{
			name: "dotted location and csv tags",
			in:   url.Values{"title": {"Lamp"}, "location.city": {"Denver"}, "tags": {"lamp, brass,,"}},
			want: func(t *testing.T, req transport.ProductRequest) {
				require.NotNil(t, req.Title)
				assert.Equal(t, "Lamp", *req.Title)
				require.NotNil(t, req.Location)
				assert.Equal(t, "Denver", *req.Location.City)
				assert.Nil(t, req.Location.State)
				assert.Equal(t, []string{"lamp", "brass"}, req.Tags)
			},
		},
		{
			name: "bracket location and repeated tags",
			in:   url.Values{"location[country]": {"USA"}, "tags[]": {"a", "b"}},
			want: func(t *testing.T, req transport.ProductRequest) {
				assert.Nil(t, req.Title)
				assert.Equal(t, "USA", *req.Location.Country)
				assert.Equal(t, []string{"a", "b"}, req.Tags)
			},
		},
		{
			name: "absent fields stay nil",
			in:   url.Values{"price": {"19.99"}},
			want: func(t *testing.T, req transport.ProductRequest) {
				assert.Nil(t, req.Location)
				assert.Nil(t, req.Tags)
				require.NotNil(t, req.Price)
				assert.Equal(t, "19.99", req.Price.String())
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := productFromValues(tt.in)
			require.NoError(t, err)
			tt.want(t, req)
		})
	}

	_, err := productFromValues(url.Values{"price": {"free"}})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestValidatorUsesJSONNames(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&transport.ProductRequest{Category: ptr("Weapons"), Condition: ptr("Broken")})
	var ve *service.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Fields, 2)
	assert.Equal(t, "category", ve.Fields[0].Field)
	assert.Equal(t, "Invalid category", ve.Fields[0].Message)
	assert.Equal(t, "condition", ve.Fields[1].Field)

	err = v.Validate(&transport.ProductRequest{
		Category: ptr("Electronics"),
		Location: &transport.LocationRequest{City: ptr(string(make([]byte, 101)))},
	})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "location.city", ve.Fields[0].Field)

	assert.NoError(t, v.Validate(&transport.ProductRequest{Category: ptr("Electronics"), Condition: ptr("Like New")}))
}

func ptr[T any](v T) *T { return &v }
