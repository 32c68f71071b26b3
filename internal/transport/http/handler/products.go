package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/go-shop-nosql/internal/application/image"
	"github.com/go-shop-nosql/internal/application/product"
	"github.com/go-shop-nosql/internal/domain"
)

const maxFormMemory = 32 << 20

// ProductHandler handles catalog endpoints. Create and Update accept
// multipart forms where sizes, colors and productInfo are JSON strings and
// images are repeated "images" file parts.
type ProductHandler struct {
	svc       product.Service
	maxImages int
}

func NewProductHandler(svc product.Service, maxImages int) *ProductHandler {
	if maxImages <= 0 {
		maxImages = product.DefaultMaxImages
	}
	return &ProductHandler{svc: svc, maxImages: maxImages}
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	req, err := createRequestFromForm(r)
	if err != nil {
		httpError(w, r, err, "Product not found")
		return
	}
	images, closeAll, err := h.formImages(r)
	if err != nil {
		httpError(w, r, err, "Product not found")
		return
	}
	defer closeAll()

	p, err := h.svc.Create(r.Context(), req, images)
	if err != nil {
		httpError(w, r, err, "Product not found")
		return
	}
	writeJSON(w, http.StatusCreated, ProductEnvelope{Message: "Product added successfully!", Product: p})
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, r, err, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	req, err := updateRequestFromForm(r)
	if err != nil {
		httpError(w, r, err, "Product not found")
		return
	}
	images, closeAll, err := h.formImages(r)
	if err != nil {
		httpError(w, r, err, "Product not found")
		return
	}
	defer closeAll()

	p, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req, images)
	if err != nil {
		httpError(w, r, err, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, ProductEnvelope{Message: "Product updated successfully", Product: p})
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, r, err, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Product deleted successfully"})
}

func (h *ProductHandler) Images(w http.ResponseWriter, r *http.Request) {
	keys, err := h.svc.Images(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, ImagesEnvelope{Images: keys})
}

// parseForm accepts multipart bodies and falls back to url-encoded forms.
func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(maxFormMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

// formImages opens every "images" part. The returned func closes them.
func (h *ProductHandler) formImages(r *http.Request) ([]image.UploadInput, func(), error) {
	var headers []*multipart.FileHeader
	if r.MultipartForm != nil {
		headers = r.MultipartForm.File["images"]
	}
	if len(headers) > h.maxImages {
		return nil, func() {}, fmt.Errorf("at most %d images allowed: %w", h.maxImages, domain.ErrBadRequest)
	}

	var files []multipart.File
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}
	inputs := make([]image.UploadInput, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("open image %s: %w", fh.Filename, err)
		}
		files = append(files, f)
		inputs = append(inputs, image.UploadInput{
			Reader:      f,
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
		})
	}
	return inputs, closeAll, nil
}

func createRequestFromForm(r *http.Request) (domain.CreateProductRequest, error) {
	req := domain.CreateProductRequest{
		Name:               r.FormValue("name"),
		Description:        r.FormValue("description"),
		ShippingAndReturns: r.FormValue("shippingAndReturns"),
	}
	raw := r.FormValue("price")
	if raw == "" {
		return req, fmt.Errorf("field 'price' failed 'required': %w", domain.ErrBadRequest)
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return req, fmt.Errorf("price must be a number: %w", domain.ErrBadRequest)
	}
	req.Price = &price
	if err = jsonField(r, "sizes", &req.Sizes); err != nil {
		return req, err
	}
	if err = jsonField(r, "colors", &req.Colors); err != nil {
		return req, err
	}
	if err = jsonField(r, "productInfo", &req.ProductInfo); err != nil {
		return req, err
	}
	return req, nil
}

// updateRequestFromForm sets only the fields present in the form.
func updateRequestFromForm(r *http.Request) (domain.UpdateProductRequest, error) {
	var req domain.UpdateProductRequest
	if v, ok := formValue(r, "name"); ok {
		req.Name = &v
	}
	if v, ok := formValue(r, "description"); ok {
		req.Description = &v
	}
	if v, ok := formValue(r, "shippingAndReturns"); ok {
		req.ShippingAndReturns = &v
	}
	if v, ok := formValue(r, "price"); ok {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, fmt.Errorf("price must be a number: %w", domain.ErrBadRequest)
		}
		req.Price = &price
	}
	if _, ok := formValue(r, "sizes"); ok {
		var sizes []string
		if err := jsonField(r, "sizes", &sizes); err != nil {
			return req, err
		}
		req.Sizes = &sizes
	}
	if _, ok := formValue(r, "colors"); ok {
		var colors []string
		if err := jsonField(r, "colors", &colors); err != nil {
			return req, err
		}
		req.Colors = &colors
	}
	if _, ok := formValue(r, "productInfo"); ok {
		var info domain.ProductInfo
		if err := jsonField(r, "productInfo", &info); err != nil {
			return req, err
		}
		req.ProductInfo = &info
	}
	return req, nil
}

func formValue(r *http.Request, key string) (string, bool) {
	if r.Form == nil {
		return "", false
	}
	vs, ok := r.Form[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// jsonField decodes a JSON-encoded form field into dst; an absent field is
// left untouched.
func jsonField(r *http.Request, key string, dst interface{}) error {
	raw := r.FormValue(key)
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("field '%s' must be valid JSON: %w", key, domain.ErrBadRequest)
	}
	return nil
}
