package projection

import (
	"context"

	"github.com/openacre/loam/internal/types"
)

// Request carries the inquiry fields a projection is generated from.
type Request struct {
	Address      string
	LotSizeAcres float64
	UserContext  string
	Answers      map[int]string
}

// Source defines the interface contract for projection generation backends.
type Source interface {
	Generate(ctx context.Context, req Request) (*types.ProjectionResult, error)
	ModelName() string
}
