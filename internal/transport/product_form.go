package transport

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"food-catalog/internal/domain"
	"food-catalog/internal/media"
	"food-catalog/internal/middleware"
	"food-catalog/internal/service"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling file parts to disk
const multipartMemory = 8 << 20

// fieldError reports a form value that could not be parsed
type fieldError struct {
	Field string
	Err   error
}

func (e *fieldError) Error() string {
	return fmt.Sprintf("invalid value for %s: %v", e.Field, e.Err)
}

func (e *fieldError) Unwrap() error {
	return e.Err
}

// productRequest is a decoded create or update request. closer releases
// any temporary files backing the image.
type productRequest struct {
	input  service.ProductInput
	image  *media.File
	closer func()
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// readProductRequest accepts either multipart/form-data with an optional
// "image" part or a JSON body without an image
func readProductRequest(w http.ResponseWriter, r *http.Request, maxUpload int64) (*productRequest, error) {
	req := &productRequest{closer: func() {}}

	if !isMultipart(r) {
		if err := middleware.DecodeJSON(r, &req.input); err != nil {
			return nil, err
		}
		return req, nil
	}

	// Allow the image plus room for the text fields
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload+1<<20)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: request body exceeds %d bytes", media.ErrInvalidFile, tooLarge.Limit)
		}
		return nil, fmt.Errorf("invalid multipart body: %w", err)
	}
	req.closer = func() { r.MultipartForm.RemoveAll() }

	input, err := productInputFromForm(r.MultipartForm)
	if err != nil {
		req.closer()
		return nil, err
	}
	req.input = input

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		req.closer()
		return nil, fmt.Errorf("invalid image part: %w", err)
	default:
		removeAll := req.closer
		req.closer = func() {
			file.Close()
			removeAll()
		}
		req.image = imageFromHeader(file, header)
	}

	return req, nil
}

func imageFromHeader(file multipart.File, header *multipart.FileHeader) *media.File {
	return &media.File{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
}

// productInputFromForm maps form fields onto a ProductInput. Empty values
// are treated as absent, except description which may be cleared.
func productInputFromForm(form *multipart.Form) (service.ProductInput, error) {
	var (
		in  service.ProductInput
		err error
	)

	value := func(key string) (string, bool) {
		v, ok := form.Value[key]
		if !ok || len(v) == 0 {
			return "", false
		}
		return v[0], true
	}
	nonEmpty := func(key string) (string, bool) {
		v, ok := value(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := nonEmpty("name"); ok {
		in.Name = &v
	}
	if v, ok := value("description"); ok {
		in.Description = &v
	}
	if v, ok := nonEmpty("unit"); ok {
		in.Unit = &v
	}
	if v, ok := nonEmpty("pricingMethod"); ok {
		m := domain.PricingMethod(v)
		in.PricingMethod = &m
	}

	if v, ok := nonEmpty("categoryId"); ok {
		if in.CategoryID, err = parseInt64("categoryId", v); err != nil {
			return in, err
		}
	}
	for _, f := range []struct {
		key string
		dst **domain.Money
	}{
		{"basePrice", &in.BasePrice},
		{"currentPrice", &in.CurrentPrice},
		{"costPrice", &in.CostPrice},
	} {
		if v, ok := nonEmpty(f.key); ok {
			m, err := domain.ParseMoney(v)
			if err != nil {
				return in, &fieldError{Field: f.key, Err: err}
			}
			*f.dst = &m
		}
	}
	for _, f := range []struct {
		key string
		dst **int
	}{
		{"stock", &in.Stock},
		{"initialStock", &in.InitialStock},
		{"shelfLife", &in.ShelfLife},
	} {
		if v, ok := nonEmpty(f.key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return in, &fieldError{Field: f.key, Err: err}
			}
			*f.dst = &n
		}
	}
	if v, ok := nonEmpty("expiryDate"); ok {
		d, err := domain.ParseDate(v)
		if err != nil {
			return in, &fieldError{Field: "expiryDate", Err: err}
		}
		in.ExpiryDate = &d
	}
	if v, ok := nonEmpty("isActive"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return in, &fieldError{Field: "isActive", Err: err}
		}
		in.IsActive = &b
	}

	return in, nil
}

func parseInt64(field, v string) (*int64, error) {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, &fieldError{Field: field, Err: err}
	}
	return &n, nil
}

// productFilterFromQuery reads the list filters. isActive matches only
// the literal "true"; any other value selects inactive products.
func productFilterFromQuery(r *http.Request) (domain.ProductFilter, error) {
	q := r.URL.Query()
	var filter domain.ProductFilter

	if v := q.Get("categoryId"); v != "" {
		id, err := parseInt64("categoryId", v)
		if err != nil {
			return filter, err
		}
		filter.CategoryID = id
	}
	if v := q.Get("pricingMethod"); v != "" {
		m := domain.PricingMethod(v)
		if !m.Valid() {
			return filter, &fieldError{Field: "pricingMethod", Err: fmt.Errorf("unknown pricing method %q", v)}
		}
		filter.PricingMethod = &m
	}
	if q.Has("isActive") {
		active := q.Get("isActive") == "true"
		filter.IsActive = &active
	}
	filter.Search = q.Get("search")

	return filter, nil
}
