package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openacre/loam/internal/types"
	"github.com/openacre/loam/internal/validation"
)

// inquiryContextKey is the context key for the resolved inquiry.
type inquiryContextKey struct{}

// ErrNoInquiryInContext indicates no inquiry was found in the context.
var ErrNoInquiryInContext = errors.New("no inquiry in context")

// WithInquiry returns a new context with the inquiry attached.
func WithInquiry(ctx context.Context, inq *types.Inquiry) context.Context {
	return context.WithValue(ctx, inquiryContextKey{}, inq)
}

// InquiryFromContext extracts the inquiry from the context.
// Returns ErrNoInquiryInContext if not present or nil.
func InquiryFromContext(ctx context.Context) (*types.Inquiry, error) {
	inq, ok := ctx.Value(inquiryContextKey{}).(*types.Inquiry)
	if !ok || inq == nil {
		return nil, ErrNoInquiryInContext
	}
	return inq, nil
}

// MustInquiryFromContext extracts the inquiry or panics.
// Use only when middleware guarantees inquiry presence.
func MustInquiryFromContext(ctx context.Context) *types.Inquiry {
	inq, err := InquiryFromContext(ctx)
	if err != nil {
		panic("inquiry not in context: middleware misconfiguration")
	}
	return inq
}

// InquiryCtx resolves the {id} URL parameter to an inquiry and attaches it
// to the request context. A malformed ID is indistinguishable from a missing
// inquiry so both produce 404.
func (h *Handler) InquiryCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := validation.ValidateULID("id", id); err != nil {
			WriteProblem(w, r, http.StatusNotFound, "Inquiry not found")
			return
		}

		inq, err := h.store.GetInquiry(r.Context(), id)
		if err != nil {
			MapStoreError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithInquiry(r.Context(), inq)))
	})
}
