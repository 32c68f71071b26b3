package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/go-shop-nosql/internal/application/image"
	"github.com/go-shop-nosql/internal/domain"
)

// --- mocks ---

type mockProductSvc struct{ mock.Mock }

func (m *mockProductSvc) Create(ctx context.Context, req domain.CreateProductRequest, images []image.UploadInput) (*domain.Product, error) {
	args := m.Called(ctx, req, len(images))
	if p, _ := args.Get(0).(*domain.Product); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockProductSvc) List(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}
func (m *mockProductSvc) Get(ctx context.Context, productID string) (*domain.Product, error) {
	args := m.Called(ctx, productID)
	if p, _ := args.Get(0).(*domain.Product); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockProductSvc) Update(ctx context.Context, productID string, req domain.UpdateProductRequest, images []image.UploadInput) (*domain.Product, error) {
	args := m.Called(ctx, productID, req, len(images))
	if p, _ := args.Get(0).(*domain.Product); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockProductSvc) Delete(ctx context.Context, productID string) error {
	return m.Called(ctx, productID).Error(0)
}
func (m *mockProductSvc) Images(ctx context.Context, productID string) ([]string, error) {
	args := m.Called(ctx, productID)
	keys, _ := args.Get(0).([]string)
	return keys, args.Error(1)
}

type mockImageSvc struct{ mock.Mock }

func (m *mockImageSvc) Upload(ctx context.Context, prefix string, in image.UploadInput) (string, error) {
	args := m.Called(ctx, prefix, in.Filename)
	return args.String(0), args.Error(1)
}
func (m *mockImageSvc) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	args := m.Called(ctx, key)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.String(1), args.Error(2)
}
func (m *mockImageSvc) DeleteAll(ctx context.Context, keys []string) {
	m.Called(ctx, keys)
}

// --- helpers ---

func multipartReq(t *testing.T, method, target string, fields map[string]string, files []string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, name := range files {
		fw, err := mw.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("data-" + name))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

const infoJSON = `{"material":"linen","weight":"200g","countryOfOrigin":"PT","dimensions":"70x50","type":"shirt"}`

// --- Create ---

func TestCreateProduct_ParsesJSONFields(t *testing.T) {
	svc := &mockProductSvc{}
	price := 49.5
	want := domain.CreateProductRequest{
		Name:        "Shirt",
		Description: "Linen",
		Sizes:       []string{"M", "L"},
		Colors:      []string{"white"},
		Price:       &price,
		ProductInfo: domain.ProductInfo{Material: "linen", Weight: "200g", CountryOfOrigin: "PT", Dimensions: "70x50", Type: "shirt"},
	}
	svc.On("Create", mock.Anything, want, 2).Return(&domain.Product{ProductID: "p1", Name: "Shirt"}, nil)
	h := NewProductHandler(svc, 5)

	r := multipartReq(t, http.MethodPost, "/api/products", map[string]string{
		"name": "Shirt", "description": "Linen", "price": "49.5",
		"sizes": `["M","L"]`, "colors": `["white"]`, "productInfo": infoJSON,
	}, []string{"a.png", "b.png"})
	rr := httptest.NewRecorder()
	h.Create(rr, r)

	assert.Equal(t, http.StatusCreated, rr.Code)
	var env ProductEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	assert.Equal(t, "Product added successfully!", env.Message)
	assert.Equal(t, "p1", env.Product.ProductID)
	svc.AssertExpectations(t)
}

func TestCreateProduct_BadJSONField(t *testing.T) {
	svc := &mockProductSvc{}
	h := NewProductHandler(svc, 5)

	r := multipartReq(t, http.MethodPost, "/api/products", map[string]string{
		"name": "Shirt", "price": "10", "sizes": "[not json",
	}, nil)
	rr := httptest.NewRecorder()
	h.Create(rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeEnvelope(t, rr).Error, "sizes")
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateProduct_BadPrice(t *testing.T) {
	h := NewProductHandler(&mockProductSvc{}, 5)

	r := multipartReq(t, http.MethodPost, "/api/products", map[string]string{"price": "cheap"}, nil)
	rr := httptest.NewRecorder()
	h.Create(rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateProduct_MissingPrice(t *testing.T) {
	svc := &mockProductSvc{}
	h := NewProductHandler(svc, 5)

	r := multipartReq(t, http.MethodPost, "/api/products", map[string]string{
		"name": "Shirt", "description": "Linen", "productInfo": infoJSON,
	}, nil)
	rr := httptest.NewRecorder()
	h.Create(rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeEnvelope(t, rr).Error, "field 'price' failed 'required'")
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateProduct_TooManyImages(t *testing.T) {
	svc := &mockProductSvc{}
	h := NewProductHandler(svc, 1)

	r := multipartReq(t, http.MethodPost, "/api/products", map[string]string{"name": "x", "price": "1"}, []string{"a.png", "b.png"})
	rr := httptest.NewRecorder()
	h.Create(rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

// --- Get / List / Images / Delete ---

func TestGetProduct_NotFound(t *testing.T) {
	svc := &mockProductSvc{}
	svc.On("Get", mock.Anything, "nope").Return(nil, domain.ErrNotFound)
	h := NewProductHandler(svc, 5)

	rr := httptest.NewRecorder()
	h.Get(rr, withChiID(httptest.NewRequest(http.MethodGet, "/api/products/nope", nil), "nope"))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Product not found", decodeEnvelope(t, rr).Error)
}

func TestListProducts(t *testing.T) {
	svc := &mockProductSvc{}
	svc.On("List", mock.Anything).Return([]domain.Product{{ProductID: "p1"}}, nil)
	h := NewProductHandler(svc, 5)

	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var ps []domain.Product
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&ps))
	assert.Len(t, ps, 1)
}

func TestProductImages(t *testing.T) {
	svc := &mockProductSvc{}
	svc.On("Images", mock.Anything, "p1").Return([]string{"uploads/p1/1-a.png"}, nil)
	h := NewProductHandler(svc, 5)

	rr := httptest.NewRecorder()
	h.Images(rr, withChiID(httptest.NewRequest(http.MethodGet, "/api/products/p1/images", nil), "p1"))

	var env ImagesEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	assert.Equal(t, []string{"uploads/p1/1-a.png"}, env.Images)
}

func TestDeleteProduct(t *testing.T) {
	svc := &mockProductSvc{}
	svc.On("Delete", mock.Anything, "p1").Return(nil)
	svc.On("Delete", mock.Anything, "gone").Return(domain.ErrNotFound)
	h := NewProductHandler(svc, 5)

	rr := httptest.NewRecorder()
	h.Delete(rr, withChiID(httptest.NewRequest(http.MethodDelete, "/api/products/p1", nil), "p1"))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Product deleted successfully", decodeEnvelope(t, rr).Message)

	rr = httptest.NewRecorder()
	h.Delete(rr, withChiID(httptest.NewRequest(http.MethodDelete, "/api/products/gone", nil), "gone"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// --- Update ---

func TestUpdateProduct_OnlyPresentFields(t *testing.T) {
	svc := &mockProductSvc{}
	price := 12.0
	sizes := []string{"S"}
	svc.On("Update", mock.Anything, "p1", domain.UpdateProductRequest{Price: &price, Sizes: &sizes}, 0).
		Return(&domain.Product{ProductID: "p1", Price: 12}, nil)
	h := NewProductHandler(svc, 5)

	r := multipartReq(t, http.MethodPut, "/api/products/p1", map[string]string{"price": "12", "sizes": `["S"]`}, nil)
	rr := httptest.NewRecorder()
	h.Update(rr, withChiID(r, "p1"))

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestUpdateProduct_URLEncoded(t *testing.T) {
	svc := &mockProductSvc{}
	name := "Renamed"
	svc.On("Update", mock.Anything, "p1", domain.UpdateProductRequest{Name: &name}, 0).
		Return(&domain.Product{ProductID: "p1", Name: name}, nil)
	h := NewProductHandler(svc, 5)

	r := httptest.NewRequest(http.MethodPut, "/api/products/p1", strings.NewReader(url.Values{"name": {name}}.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.Update(rr, withChiID(r, "p1"))

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestUpdateProduct_NotFound(t *testing.T) {
	svc := &mockProductSvc{}
	svc.On("Update", mock.Anything, "gone", mock.Anything, 1).Return(nil, domain.ErrNotFound)
	h := NewProductHandler(svc, 5)

	r := multipartReq(t, http.MethodPut, "/api/products/gone", nil, []string{"a.png"})
	rr := httptest.NewRecorder()
	h.Update(rr, withChiID(r, "gone"))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// --- Uploads ---

func withWildcard(r *http.Request, rest string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("*", rest)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestUploads_StreamsObject(t *testing.T) {
	svc := &mockImageSvc{}
	svc.On("Open", mock.Anything, "uploads/p1/1-a.png").Return(io.NopCloser(strings.NewReader("png-bytes")), "image/png", nil)
	h := NewUploadHandler(svc)

	rr := httptest.NewRecorder()
	h.Serve(rr, withWildcard(httptest.NewRequest(http.MethodGet, "/uploads/p1/1-a.png", nil), "p1/1-a.png"))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.Equal(t, "png-bytes", rr.Body.String())
}

func TestUploads_Missing(t *testing.T) {
	svc := &mockImageSvc{}
	svc.On("Open", mock.Anything, "uploads/p1/none.png").Return(nil, "", domain.ErrNotFound)
	h := NewUploadHandler(svc)

	rr := httptest.NewRecorder()
	h.Serve(rr, withWildcard(httptest.NewRequest(http.MethodGet, "/uploads/p1/none.png", nil), "p1/none.png"))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUploads_RejectsTraversal(t *testing.T) {
	h := NewUploadHandler(&mockImageSvc{})

	rr := httptest.NewRecorder()
	h.Serve(rr, withWildcard(httptest.NewRequest(http.MethodGet, "/uploads/x", nil), "../secret"))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
