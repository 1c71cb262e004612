package store

import (
	"context"
	"time"

	"github.com/openacre/loam/internal/types"
)

// mockStore is a compile-time check that the Store interface can be implemented.
type mockStore struct{}

var _ Store = (*mockStore)(nil)

func (m *mockStore) CreateInquiry(ctx context.Context, address string, lotSizeAcres float64, userContext string) (*types.Inquiry, error) {
	return nil, nil
}
func (m *mockStore) GetInquiry(ctx context.Context, id string) (*types.Inquiry, error) {
	return nil, nil
}
func (m *mockStore) SaveAnswer(ctx context.Context, id string, question int, response string) (*types.Inquiry, error) {
	return nil, nil
}
func (m *mockStore) BeginProcessing(ctx context.Context, id string) (bool, error) {
	return false, nil
}
func (m *mockStore) CompleteWithProjection(ctx context.Context, id string, result *types.ProjectionResult) (*types.Inquiry, error) {
	return nil, nil
}
func (m *mockStore) MarkFailed(ctx context.Context, id string, message string) error {
	return nil
}
func (m *mockStore) ListInquiries(ctx context.Context, status types.InquiryStatus, limit, offset int) ([]types.Inquiry, error) {
	return nil, nil
}
func (m *mockStore) CountInquiries(ctx context.Context) (int64, error) {
	return 0, nil
}
func (m *mockStore) GetExtendedStats(ctx context.Context) (*types.ExtendedStats, error) {
	return nil, nil
}
func (m *mockStore) SweepStaleProcessing(ctx context.Context, olderThan time.Time) (int64, error) {
	return 0, nil
}
func (m *mockStore) DeleteInquiry(ctx context.Context, id string) error {
	return nil
}
func (m *mockStore) GenerateSnapshot(ctx context.Context) error {
	return nil
}
func (m *mockStore) GetSnapshotPath(ctx context.Context) (string, error) {
	return "", nil
}
func (m *mockStore) Close() error {
	return nil
}
