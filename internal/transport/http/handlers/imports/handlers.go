package importhandler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"smartraise/internal/domain/auth"
	"smartraise/internal/domain/importer"
	"smartraise/internal/platform/apperr"
	"smartraise/internal/transport/http/middleware"
	"smartraise/internal/transport/http/shared"
)

// multipartOverhead leaves room for boundaries and headers around the file.
const multipartOverhead = 64 << 10

type Handler struct {
	Reconciler *importer.Reconciler
	UploadDir  string
	MaxBytes   int64
}

func NewHandler(reconciler *importer.Reconciler, uploadDir string, maxBytes int64) *Handler {
	return &Handler{Reconciler: reconciler, UploadDir: uploadDir, MaxBytes: maxBytes}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/import", func(r chi.Router) {
		r.With(middleware.RequireAuth, middleware.RequireRole(auth.RoleAdmin)).Post("/", h.handleImport)
		r.Get("/sample/{type}", h.handleSample)
	})
}

type importResponse struct {
	Message string `json:"message"`
	importer.Result
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			shared.Respond(w, r, tooLarge(h.MaxBytes))
			return
		}
		shared.Respond(w, r, apperr.Validation("No file uploaded"))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		shared.Respond(w, r, apperr.Validation("No file uploaded"))
		return
	}
	defer file.Close()

	if _, ok := importer.FormatOf(header.Filename); !ok {
		shared.Respond(w, r, apperr.Validation("only Excel and CSV files are allowed",
			apperr.Issue{Field: "file", Reason: "must be .xlsx, .xls or .csv"}))
		return
	}
	if header.Size > h.MaxBytes {
		shared.Respond(w, r, tooLarge(h.MaxBytes))
		return
	}

	path, err := h.save(file, header.Filename)
	if err != nil {
		shared.Respond(w, r, err)
		return
	}

	result, err := h.Reconciler.Import(r.Context(), path, header.Filename)
	if err != nil {
		shared.Respond(w, r, err)
		return
	}
	shared.OK(w, r, importResponse{Message: "File processed successfully", Result: result})
}

// save copies the upload to UploadDir as <unix nanos>-<original name>.
func (h *Handler) save(src io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(h.UploadDir, 0o750); err != nil {
		return "", apperr.Upstream(err, "failed to store upload")
	}
	name := strconv.FormatInt(time.Now().UnixNano(), 10) + "-" + filepath.Base(filename)
	path := filepath.Join(h.UploadDir, name)

	dst, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return "", apperr.Upstream(err, "failed to store upload")
	}
	_, copyErr := io.Copy(dst, io.LimitReader(src, h.MaxBytes+1))
	closeErr := dst.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(path)
		return "", apperr.Upstream(err, "failed to store upload")
	}
	return path, nil
}

func (h *Handler) handleSample(w http.ResponseWriter, r *http.Request) {
	tpl, err := importer.RenderTemplate(chi.URLParam(r, "type"))
	if err != nil {
		shared.Respond(w, r, err)
		return
	}
	w.Header().Set("Content-Type", tpl.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+tpl.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(tpl.Body)
}

func tooLarge(limit int64) error {
	return apperr.Validation("file too large",
		apperr.Issue{Field: "file", Reason: fmt.Sprintf("must be at most %d bytes", limit)})
}
