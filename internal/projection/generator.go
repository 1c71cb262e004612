package projection

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/openacre/loam/internal/config"
	"github.com/openacre/loam/internal/types"
)

// Generator produces validated projections. When a remote source is
// configured it is tried first; on any remote failure the local estimator's
// output is substituted in full. Results are never blended across sources.
type Generator struct {
	remote Source // nil when generation runs local-only
	local  Source
	logger *slog.Logger
}

// NewGenerator wires the generation strategy from configuration: remote-first
// when the external path is enabled and keyed, local-only otherwise.
func NewGenerator(cfg *config.Config, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Generator{
		local:  NewLocalSource(cfg.Estimator),
		logger: logger,
	}
	if cfg.Generation.Mode() == "openai" {
		g.remote = NewOpenAISource(cfg.Generation)
	}
	return g
}

// Mode reports which path generation takes: "openai" or "local".
func (g *Generator) Mode() string {
	if g.remote != nil {
		return "openai"
	}
	return "local"
}

// ModelName reports the model of the preferred generation path.
func (g *Generator) ModelName() string {
	if g.remote != nil {
		return g.remote.ModelName()
	}
	return g.local.ModelName()
}

// Generate returns a validated projection for the request. Remote failures
// are absorbed by the fallback; an error here means the inputs themselves
// cannot produce a valid projection and the inquiry should be marked failed.
func (g *Generator) Generate(ctx context.Context, req Request) (*types.ProjectionResult, error) {
	start := time.Now()

	result, model, err := g.produce(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := ValidateProjection(result); err != nil {
		return nil, fmt.Errorf("generated projection failed validation: %w", err)
	}

	result.ModelUsed = model
	result.GenerationSeconds = roundSeconds(time.Since(start))
	return result, nil
}

func (g *Generator) produce(ctx context.Context, req Request) (*types.ProjectionResult, string, error) {
	if g.remote != nil {
		result, err := g.remote.Generate(ctx, req)
		if err == nil {
			return result, g.remote.ModelName(), nil
		}
		g.logger.Warn("remote generation failed, falling back to local estimator",
			"model", g.remote.ModelName(),
			"error", err)
	}

	result, err := g.local.Generate(ctx, req)
	if err != nil {
		return nil, "", err
	}
	return result, g.local.ModelName(), nil
}

// roundSeconds reports elapsed wall time in seconds at centisecond precision.
func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}
