package performancehandler

import (
	"bytes"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"smartraise/internal/domain/auth"
	"smartraise/internal/domain/performance"
	"smartraise/internal/domain/reports"
	"smartraise/internal/transport/http/middleware"
	"smartraise/internal/transport/http/shared"
)

type Handler struct {
	Service *performance.Service
	Reports *reports.Service
}

func NewHandler(service *performance.Service, reportsSvc *reports.Service) *Handler {
	return &Handler{Service: service, Reports: reportsSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	admin := middleware.RequireRole(auth.RoleAdmin)
	r.Route("/performance", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.With(admin).Post("/", h.handleCreate)
		r.Post("/predict", h.handlePredict)
		r.Get("/employee/{employeeID}", h.handleListByEmployee)
		r.Get("/department/{department}", h.handleDepartmentSummary)
		r.Get("/department/{department}/report", h.handleDepartmentReport)
		r.Get("/{recordID}", h.handleGet)
		r.With(admin).Patch("/{recordID}", h.handleUpdate)
		r.With(admin).Put("/{recordID}", h.handleUpdate)
		r.With(admin).Delete("/{recordID}", h.handleDelete)
	})
}

type createRequest struct {
	EmployeeID string   `json:"employeeId"`
	KPIScore   *float64 `json:"kpiScore"`
	Attendance *float64 `json:"attendance"`
	PeerReview *float64 `json:"peerReview"`
	Date       *string  `json:"date"`
	Notes      string   `json:"notes"`
}

type updateRequest struct {
	KPIScore   *float64 `json:"kpiScore"`
	Attendance *float64 `json:"attendance"`
	PeerReview *float64 `json:"peerReview"`
	Date       *string  `json:"date"`
	Notes      *string  `json:"notes"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.List(r.Context())
	if err != nil {
		shared.Respond(w, r, err)
		return
	}
	shared.OK(w, r, records)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload createRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.Respond(w, r, err)
		return
	}
	date, err := shared.ParseOptionalDate("date", payload.Date)
	if err != nil {
		shared.Respond(w, r, err)
		return
	}
	rec, err := h.Service.Create(r.Context(), performance.Input{
		EmployeeID: payload.EmployeeID,
		KPIScore:   payload.KPIScore,
		Attendance: payload.Attendance,
		PeerReview: payload.PeerReview,
		Date:       date,
		Notes:      payload.Notes,
	})
	if err != nil {
		shared.Respond(w, r, err)
		return
	}
	shared.Created(w, r, rec)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Service.Get(r.Context(), chi.URLParam(r, "recordID"))
	if err != nil {
		shared.Respond(w, r, err)
		return
	}
	shared.OK(w, r, rec)
}

func (h *Handler) handleListByEmployee(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.ListByEmployee(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		shared.Respond(w, r, err)
		return
	}
	shared.OK(w, r, records)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload updateRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.Respond(w, r, err)
		return
	}
	date, err := shared.ParseOptionalDate("date", payload.Date)
	if err != nil {
		shared.Respond(w, r, err)
		return
	}
	rec, err := h.Service.Update(r.Context(), chi.URLParam(r, "recordID"), performance.Patch{
		KPIScore:   payload.KPIScore,
		Attendance: payload.Attendance,
		PeerReview: payload.PeerReview,
		Date:       date,
		Notes:      payload.Notes,
	})
	if err != nil {
		shared.Respond(w, r, err)
		return
	}
	shared.OK(w, r, rec)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "recordID")); err != nil {
		shared.Respond(w, r, err)
		return
	}
	shared.OK(w, r, map[string]string{"message": "performance record deleted"})
}

func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	var payload performance.PredictionInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.Respond(w, r, err)
		return
	}
	prediction, err := h.Service.Predict(r.Context(), payload)
	if err != nil {
		shared.Respond(w, r, err)
		return
	}
	shared.OK(w, r, prediction)
}

func (h *Handler) handleDepartmentSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.DepartmentSummary(r.Context(), department(r))
	if err != nil {
		shared.Respond(w, r, err)
		return
	}
	shared.OK(w, r, summary)
}

// handleDepartmentReport renders into memory first so a failure still gets a
// JSON error instead of a truncated PDF.
func (h *Handler) handleDepartmentReport(w http.ResponseWriter, r *http.Request) {
	dept := department(r)
	var buf bytes.Buffer
	if err := h.Reports.WriteDepartmentReport(r.Context(), dept, &buf); err != nil {
		shared.Respond(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+reportFilename(dept)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func department(r *http.Request) string {
	raw := chi.URLParam(r, "department")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

func reportFilename(department string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(department) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "department-performance.pdf"
	}
	return b.String() + "-performance.pdf"
}
