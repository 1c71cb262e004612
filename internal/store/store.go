package store

import (
	"context"
	"time"

	"github.com/openacre/loam/internal/types"
)

// Store defines the interface contract for all inquiry storage operations.
type Store interface {
	CreateInquiry(ctx context.Context, address string, lotSizeAcres float64, userContext string) (*types.Inquiry, error)
	GetInquiry(ctx context.Context, id string) (*types.Inquiry, error)
	SaveAnswer(ctx context.Context, id string, question int, response string) (*types.Inquiry, error)
	BeginProcessing(ctx context.Context, id string) (bool, error)
	CompleteWithProjection(ctx context.Context, id string, result *types.ProjectionResult) (*types.Inquiry, error)
	MarkFailed(ctx context.Context, id string, message string) error
	ListInquiries(ctx context.Context, status types.InquiryStatus, limit, offset int) ([]types.Inquiry, error)
	CountInquiries(ctx context.Context) (int64, error)
	GetExtendedStats(ctx context.Context) (*types.ExtendedStats, error)
	SweepStaleProcessing(ctx context.Context, olderThan time.Time) (int64, error)
	DeleteInquiry(ctx context.Context, id string) error
	GenerateSnapshot(ctx context.Context) error
	GetSnapshotPath(ctx context.Context) (string, error)
	Close() error
}
