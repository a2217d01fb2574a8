package httpserver

import (
	"mime/multipart"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/omart/marketplace/internal/listing"
	"github.com/omart/marketplace/internal/media"
	"github.com/omart/marketplace/internal/service"
	"github.com/omart/marketplace/internal/transport"
)

const imagesField = "images"

// bindProduct reads a product from multipart form data or, failing that, a JSON body.
func bindProduct(c echo.Context) (transport.ProductRequest, []media.File, error) {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(ct, echo.MIMEMultipartForm) {
		var req transport.ProductRequest
		if err := c.Bind(&req); err != nil {
			return req, nil, err
		}
		return req, nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return transport.ProductRequest{}, nil, err
	}
	req, err := productFromValues(url.Values(form.Value))
	if err != nil {
		return req, nil, err
	}
	return req, media.FromMultipart(imageHeaders(form)), nil
}

func imageHeaders(form *multipart.Form) []*multipart.FileHeader {
	if hs := form.File[imagesField]; len(hs) > 0 {
		return hs
	}
	return form.File[imagesField+"[]"]
}

func productFromValues(v url.Values) (transport.ProductRequest, error) {
	var req transport.ProductRequest

	req.Title = formString(v, "title")
	req.Description = formString(v, "description")
	req.Category = formString(v, "category")
	req.Condition = formString(v, "condition")

	if raw := formString(v, "price"); raw != nil {
		price, err := decimal.NewFromString(strings.TrimSpace(*raw))
		if err != nil {
			return req, &service.ValidationError{Fields: []listing.FieldError{{
				Field: "price", Value: *raw, Message: "Price must be a positive number",
			}}}
		}
		req.Price = &price
	}

	loc := transport.LocationRequest{
		City:    formString(v, "location.city", "location[city]"),
		State:   formString(v, "location.state", "location[state]"),
		Country: formString(v, "location.country", "location[country]"),
	}
	if loc.City != nil || loc.State != nil || loc.Country != nil {
		req.Location = &loc
	}

	req.Tags = formTags(v)
	return req, nil
}

// formString returns the first value under any of keys, nil when none was sent.
func formString(v url.Values, keys ...string) *string {
	for _, k := range keys {
		if vals, ok := v[k]; ok && len(vals) > 0 {
			s := vals[0]
			return &s
		}
	}
	return nil
}

// formTags accepts repeated tags fields, tags[] fields, or one comma separated value.
func formTags(v url.Values) []string {
	vals, ok := v["tags"]
	if !ok {
		vals, ok = v["tags[]"]
	}
	if !ok {
		return nil
	}
	out := make([]string, 0, len(vals))
	for _, raw := range vals {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}
