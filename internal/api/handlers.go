package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/openacre/loam/internal/projection"
	"github.com/openacre/loam/internal/store"
	"github.com/openacre/loam/internal/types"
	"github.com/openacre/loam/internal/validation"
)

// Generator is the projection backend the handlers drive.
// *projection.Generator satisfies it.
type Generator interface {
	Generate(ctx context.Context, req projection.Request) (*types.ProjectionResult, error)
	Mode() string
	ModelName() string
}

// Handler implements the API handlers
type Handler struct {
	store     store.Store
	generator Generator
	adminKey  string
	version   string
}

// NewHandler creates a new Handler with store.Store interface
func NewHandler(s store.Store, g Generator, adminKey, version string) *Handler {
	return &Handler{
		store:     s,
		generator: g,
		adminKey:  adminKey,
		version:   version,
	}
}

// Health returns the health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.CountInquiries(r.Context())
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	resp := types.HealthResponse{
		Status:          "healthy",
		Version:         h.version,
		GenerationMode:  h.generator.Mode(),
		GenerationModel: h.generator.ModelName(),
		InquiryCount:    count,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// CreateInquiry handles POST /api/v1/inquiries
func (h *Handler) CreateInquiry(w http.ResponseWriter, r *http.Request) {
	var req types.CreateInquiryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	errs := validation.ValidateCreateInquiry(req)
	if len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	// Lot sizes are stored in acres regardless of the submitted unit.
	acres := req.LotSize
	if req.LotSizeUnit == "hectares" {
		acres = req.LotSize * types.AcresPerHectare
	}

	inq, err := h.store.CreateInquiry(r.Context(), strings.TrimSpace(req.Address), acres, strings.TrimSpace(req.UserContext))
	if err != nil {
		slog.Error("create inquiry failed", "error", err)
		MapStoreError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(inq)
}

// GetInquiry handles GET /api/v1/inquiries/{id}
func (h *Handler) GetInquiry(w http.ResponseWriter, r *http.Request) {
	inq := MustInquiryFromContext(r.Context())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(inq)
}

// GetQuestion handles GET /api/v1/inquiries/{id}/questions/{number}
func (h *Handler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	inq := MustInquiryFromContext(r.Context())

	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		WriteProblem(w, r, http.StatusNotFound, "Question not found")
		return
	}
	q, ok := types.QuestionByNumber(number)
	if !ok {
		WriteProblem(w, r, http.StatusNotFound, "Question not found")
		return
	}

	resp := types.QuestionView{
		InquiryID:       inq.ID,
		Question:        q,
		Response:        inq.Answers[number],
		TotalQuestions:  types.QuestionCount,
		ProgressPercent: inq.ProgressPercent(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// SubmitAnswer handles PUT /api/v1/inquiries/{id}/answers/{number}
func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	inq := MustInquiryFromContext(r.Context())

	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		WriteProblem(w, r, http.StatusNotFound, "Question not found")
		return
	}
	if _, ok := types.QuestionByNumber(number); !ok {
		WriteProblem(w, r, http.StatusNotFound, "Question not found")
		return
	}

	var req types.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	errs := validation.ValidateAnswer(req.Response)
	if len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	updated, err := h.store.SaveAnswer(r.Context(), inq.ID, number, strings.TrimSpace(req.Response))
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	resp := types.AnswerResult{
		InquiryID:             updated.ID,
		QuestionNumber:        number,
		QuestionnaireComplete: updated.QuestionnaireComplete,
		ProgressPercent:       updated.ProgressPercent(),
	}
	if !updated.QuestionnaireComplete {
		next := updated.CurrentQuestion
		resp.NextQuestion = &next
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// statusView projects an inquiry onto its generation status.
func statusView(inq *types.Inquiry) types.StatusView {
	return types.StatusView{
		InquiryID:       inq.ID,
		Status:          inq.Status,
		ProgressPercent: inq.ProgressPercent(),
		Error:           inq.ErrorMessage,
	}
}

// writeProjectionState responds with the full record once the projection is
// ready, or the bare status otherwise.
func writeProjectionState(w http.ResponseWriter, inq *types.Inquiry) {
	w.Header().Set("Content-Type", "application/json")
	if inq.Status == types.StatusCompleted {
		json.NewEncoder(w).Encode(inq)
		return
	}
	json.NewEncoder(w).Encode(statusView(inq))
}

// TriggerProjection handles POST /api/v1/inquiries/{id}/projection
//
// Generation runs synchronously within the request. Re-triggering a
// completed inquiry returns the stored projection without recomputing;
// only one of several concurrent triggers wins the processing claim.
// A failed inquiry stays failed: generation runs at most once per
// record, and recovery is a fresh inquiry.
func (h *Handler) TriggerProjection(w http.ResponseWriter, r *http.Request) {
	inq := MustInquiryFromContext(r.Context())

	if inq.Status == types.StatusPending {
		if !inq.QuestionnaireComplete {
			WriteProblemConflict(w, r, "Questionnaire must be completed before requesting a projection")
			return
		}
		began, err := h.store.BeginProcessing(r.Context(), inq.ID)
		if err != nil {
			MapStoreError(w, r, err)
			return
		}
		if began {
			h.runGeneration(r.Context(), inq)
		}
	}

	// Re-read: covers a projection generated just now, a concurrent trigger
	// holding the claim, and terminal states reached earlier.
	updated, err := h.store.GetInquiry(r.Context(), inq.ID)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeProjectionState(w, updated)
}

// runGeneration produces and stores the projection for a claimed inquiry.
// Failures are recorded on the inquiry rather than returned.
func (h *Handler) runGeneration(ctx context.Context, inq *types.Inquiry) {
	result, err := h.generator.Generate(ctx, projection.Request{
		Address:      inq.Address,
		LotSizeAcres: inq.LotSizeAcres,
		UserContext:  inq.UserContext,
		Answers:      inq.Answers,
	})
	if err != nil {
		slog.Error("projection generation failed", "inquiry_id", inq.ID, "error", err)
		h.markFailed(ctx, inq.ID)
		return
	}

	if _, err := h.store.CompleteWithProjection(ctx, inq.ID, result); err != nil {
		slog.Error("failed to store projection", "inquiry_id", inq.ID, "error", err)
		h.markFailed(ctx, inq.ID)
	}
}

// markFailed records a generic failure on the inquiry. Details stay in the
// log; clients only learn that generation did not succeed.
func (h *Handler) markFailed(ctx context.Context, id string) {
	if err := h.store.MarkFailed(ctx, id, "projection generation failed"); err != nil {
		slog.Error("failed to record generation failure", "inquiry_id", id, "error", err)
	}
}

// GetProjection handles GET /api/v1/inquiries/{id}/projection
func (h *Handler) GetProjection(w http.ResponseWriter, r *http.Request) {
	inq := MustInquiryFromContext(r.Context())
	writeProjectionState(w, inq)
}

// GetStatus handles GET /api/v1/inquiries/{id}/status
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	inq := MustInquiryFromContext(r.Context())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(statusView(inq))
}

// AdminListInquiries handles GET /api/v1/admin/inquiries
func (h *Handler) AdminListInquiries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	status := types.InquiryStatus(q.Get("status"))
	if status != "" && !status.Valid() {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid status filter: %q", status))
		return
	}

	limit := 50
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			WriteProblem(w, r, http.StatusBadRequest, "Limit must be an integer between 1 and 500")
			return
		}
		limit = n
	}

	offset := 0
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			WriteProblem(w, r, http.StatusBadRequest, "Offset must be a non-negative integer")
			return
		}
		offset = n
	}

	inquiries, err := h.store.ListInquiries(r.Context(), status, limit, offset)
	if err != nil {
		slog.Error("list inquiries failed", "error", err)
		MapStoreError(w, r, err)
		return
	}
	if inquiries == nil {
		inquiries = []types.Inquiry{}
	}

	resp := types.InquiryListResponse{
		Inquiries: inquiries,
		Count:     len(inquiries),
		Limit:     limit,
		Offset:    offset,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// AdminStats handles GET /api/v1/admin/stats
func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetExtendedStats(r.Context())
	if err != nil {
		slog.Error("stats query failed", "error", err)
		MapStoreError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// AdminDeleteInquiry handles DELETE /api/v1/admin/inquiries/{id}
func (h *Handler) AdminDeleteInquiry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.DeleteInquiry(r.Context(), id); err != nil {
		MapStoreError(w, r, err)
		return
	}

	slog.Info("inquiry deleted", "inquiry_id", id)
	w.WriteHeader(http.StatusNoContent)
}
