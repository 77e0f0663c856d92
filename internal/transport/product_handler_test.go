package transport

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"food-catalog/internal/domain"
	"food-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newProductRouter(svc service.ProductService, maxUpload int64) http.Handler {
	r := chi.NewRouter()
	NewProductHandler(svc, maxUpload, zap.NewNop()).RegisterRoutes(r)
	return r
}

type imagePart struct {
	filename    string
	contentType string
	body        []byte
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, image *imagePart) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="`+image.filename+`"`)
		h.Set("Content-Type", image.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(image.body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestCreateProductFromMultipart(t *testing.T) {
	var got service.ProductInput
	svc := &stubProductService{create: func(in service.ProductInput) (*domain.Product, error) {
		got = in
		return &domain.Product{ID: 1, Name: *in.Name}, nil
	}}

	req := multipartRequest(t, http.MethodPost, "/api/products", map[string]string{
		"name":          "Salmon fillet",
		"categoryId":    "4",
		"basePrice":     "12.5",
		"costPrice":     "7.25",
		"stock":         "30",
		"expiryDate":    "2025-06-01",
		"shelfLife":     "5",
		"pricingMethod": "dynamic",
		"isActive":      "false",
		"unit":          "",
	}, &imagePart{filename: "salmon.jpg", contentType: "image/jpeg", body: []byte("jpeg-bytes")})

	w := httptest.NewRecorder()
	newProductRouter(svc, 1<<20).ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Product created successfully", decodeEnvelope(t, w).Message)

	assert.Equal(t, "Salmon fillet", *got.Name)
	assert.Equal(t, int64(4), *got.CategoryID)
	assert.True(t, got.BasePrice.Equal(domain.MustMoney("12.50")))
	assert.True(t, got.CostPrice.Equal(domain.MustMoney("7.25")))
	assert.Nil(t, got.CurrentPrice)
	assert.Equal(t, 30, *got.Stock)
	assert.Equal(t, "2025-06-01", got.ExpiryDate.String())
	assert.Equal(t, 5, *got.ShelfLife)
	assert.Equal(t, domain.PricingDynamic, *got.PricingMethod)
	assert.False(t, *got.IsActive)
	assert.Nil(t, got.Unit, "empty form values are absent")

	require.NotNil(t, svc.image)
	assert.Equal(t, "salmon.jpg", svc.image.Filename)
	assert.Equal(t, "image/jpeg", svc.image.ContentType)
	assert.Equal(t, []byte("jpeg-bytes"), svc.imageBody)
}

func TestCreateProductFromJSON(t *testing.T) {
	var got service.ProductInput
	svc := &stubProductService{create: func(in service.ProductInput) (*domain.Product, error) {
		got = in
		return &domain.Product{ID: 2}, nil
	}}

	w := serve(newProductRouter(svc, 1<<20), http.MethodPost, "/api/products",
		`{"name":"Apples","categoryId":2,"basePrice":3,"costPrice":"1.5","expiryDate":"2025-10-01","shelfLife":30}`)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Apples", *got.Name)
	assert.True(t, got.BasePrice.Equal(domain.MustMoney("3")))
	assert.Nil(t, svc.image)
}

func TestCreateProductRejectsUnparsableField(t *testing.T) {
	svc := &stubProductService{}
	req := multipartRequest(t, http.MethodPost, "/api/products", map[string]string{
		"name":  "Pears",
		"stock": "a dozen",
	}, nil)

	w := httptest.NewRecorder()
	newProductRouter(svc, 1<<20).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeEnvelope(t, w)
	require.Len(t, body.Details, 1)
	assert.Equal(t, "stock", body.Details[0].Field)
}

func TestCreateProductRejectsOversizeBody(t *testing.T) {
	svc := &stubProductService{}
	req := multipartRequest(t, http.MethodPost, "/api/products", map[string]string{"name": "Big"},
		&imagePart{filename: "big.png", contentType: "image/png", body: bytes.Repeat([]byte("x"), 2<<20)})

	w := httptest.NewRecorder()
	newProductRouter(svc, 512).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, decodeEnvelope(t, w).Success)
	assert.Nil(t, svc.image)
}

func TestUpdateProductWithoutImage(t *testing.T) {
	var gotID int64
	svc := &stubProductService{update: func(id int64, in service.ProductInput) (*domain.Product, error) {
		gotID = id
		return &domain.Product{ID: id, Name: *in.Name}, nil
	}}

	req := multipartRequest(t, http.MethodPut, "/api/products/8", map[string]string{"name": "Kale", "description": ""}, nil)
	w := httptest.NewRecorder()
	newProductRouter(svc, 1<<20).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(8), gotID)
	assert.Nil(t, svc.image)
	assert.Equal(t, "Product updated successfully", decodeEnvelope(t, w).Message)
}

func TestListProductsEmptyNotice(t *testing.T) {
	svc := &stubProductService{list: func(domain.ProductFilter) ([]*domain.Product, error) { return nil, nil }}

	w := serve(newProductRouter(svc, 0), http.MethodGet, "/api/products", "")

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeEnvelope(t, w)
	assert.True(t, body.Success)
	assert.Equal(t, noProductsMessage, body.Message)
	require.NotNil(t, body.Count)
	assert.Equal(t, 0, *body.Count)
	assert.JSONEq(t, `[]`, string(body.Data))
}

func TestListProductsParsesFilters(t *testing.T) {
	var got domain.ProductFilter
	svc := &stubProductService{list: func(f domain.ProductFilter) ([]*domain.Product, error) {
		got = f
		return []*domain.Product{{ID: 1}}, nil
	}}

	w := serve(newProductRouter(svc, 0), http.MethodGet, "/api/products?categoryId=3&pricingMethod=ai&isActive=yes&search=ber", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "", decodeEnvelope(t, w).Message)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, int64(3), *got.CategoryID)
	assert.Equal(t, domain.PricingAI, *got.PricingMethod)
	require.NotNil(t, got.IsActive)
	assert.False(t, *got.IsActive, "only the literal true selects active products")
	assert.Equal(t, "ber", got.Search)

	w = serve(newProductRouter(svc, 0), http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, got.CategoryID)
	assert.Nil(t, got.IsActive)

	w = serve(newProductRouter(svc, 0), http.MethodGet, "/api/products?categoryId=fruit", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListProductsRejectsUnknownPricingMethod(t *testing.T) {
	called := false
	svc := &stubProductService{list: func(domain.ProductFilter) ([]*domain.Product, error) {
		called = true
		return nil, nil
	}}

	w := serve(newProductRouter(svc, 0), http.MethodGet, "/api/products?pricingMethod=auction", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, "Invalid query parameters", body.Message)
	assert.Contains(t, body.Error, "pricingMethod")
	assert.False(t, called)
}

func TestUpdateProductPriceRoute(t *testing.T) {
	var got service.PriceInput
	svc := &stubProductService{price: func(id int64, in service.PriceInput) (*domain.Product, error) {
		got = in
		return &domain.Product{ID: id, CurrentPrice: *in.CurrentPrice}, nil
	}}

	w := serve(newProductRouter(svc, 0), http.MethodPatch, "/api/products/6/price", `{"currentPrice":4.2,"pricingMethod":"ai"}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Product price updated successfully", decodeEnvelope(t, w).Message)
	assert.True(t, got.CurrentPrice.Equal(domain.MustMoney("4.20")))
	assert.Equal(t, domain.PricingAI, *got.PricingMethod)
}

func TestDeleteProductNotFound(t *testing.T) {
	svc := &stubProductService{delete: func(id int64) error {
		return &service.Error{Kind: service.KindNotFound, Message: "Product not found"}
	}}

	w := serve(newProductRouter(svc, 0), http.MethodDelete, "/api/products/77", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Product not found", decodeEnvelope(t, w).Message)
}

func TestValidationDetailsAreRendered(t *testing.T) {
	type shape struct {
		Stock int `json:"stock" validate:"gte=0"`
	}
	verr := validator.New().Struct(shape{Stock: -1})
	require.Error(t, verr)

	svc := &stubProductService{create: func(service.ProductInput) (*domain.Product, error) {
		return nil, &service.Error{Kind: service.KindValidation, Message: "Invalid product data", Err: verr}
	}}

	w := serve(newProductRouter(svc, 0), http.MethodPost, "/api/products", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, "Invalid product data", body.Message)
	require.Len(t, body.Details, 1)
	assert.Equal(t, "Value must be greater than or equal to 0", body.Details[0].Message)
}
