package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/go-shop-nosql/internal/application/image"
)

// UploadHandler streams stored product images back under /uploads/.
type UploadHandler struct {
	svc image.Service
}

func NewUploadHandler(svc image.Service) *UploadHandler { return &UploadHandler{svc: svc} }

func (h *UploadHandler) Serve(w http.ResponseWriter, r *http.Request) {
	rest := chi.URLParam(r, "*")
	if rest == "" || strings.Contains(rest, "..") {
		writeError(w, http.StatusNotFound, "Image not found")
		return
	}
	rc, contentType, err := h.svc.Open(r.Context(), image.KeyPrefix+"/"+rest)
	if err != nil {
		httpError(w, r, err, "Image not found")
		return
	}
	defer rc.Close()
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = io.Copy(w, rc)
}
