package projection

import (
	"context"
	"fmt"
	"math"

	"github.com/openacre/loam/internal/config"
	"github.com/openacre/loam/internal/types"
)

// LocalModelName identifies projections produced by the local estimator.
const LocalModelName = "local-estimator-v1"

// Compile-time interface check
var _ Source = (*LocalSource)(nil)

// LocalSource computes projections from a fixed formula with no I/O.
// Identical input always yields an identical projection.
type LocalSource struct {
	coeffs config.EstimatorConfig
}

// NewLocalSource creates a local estimator with the given coefficients.
func NewLocalSource(coeffs config.EstimatorConfig) *LocalSource {
	return &LocalSource{coeffs: coeffs}
}

// ModelName returns the identifier stored on locally estimated projections.
func (l *LocalSource) ModelName() string {
	return LocalModelName
}

// Generate computes the 10-year projection. Revenue streams scale with lot
// size and the categorized answers; growth compounds year over year. The
// only failure mode is an input the formula has no answer for, such as a
// non-positive lot size.
func (l *LocalSource) Generate(ctx context.Context, req Request) (*types.ProjectionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	acres := req.LotSizeAcres
	if acres <= 0 || math.IsNaN(acres) || math.IsInf(acres, 0) {
		return nil, fmt.Errorf("estimation failed: lot size %v is outside the valid range", acres)
	}

	cats := CategorizeAnswers(req.Answers)
	c := l.coeffs

	agMult := cats.AgMultiplier()
	ecoMult := cats.EcoMultiplier()
	subMult := cats.SubsidyMultiplier()
	costMult := cats.CostMultiplier()

	years := make([]types.YearFinancials, 0, types.ProjectionYears)
	for year := 1; year <= types.ProjectionYears; year++ {
		ag := math.Round(acres * c.AgRevenuePerAcre * agMult * math.Pow(c.RevenueGrowth, float64(year-1)))

		// Ecosystem payments (carbon credits, water quality, biodiversity)
		// only begin once restored land can demonstrate outcomes.
		eco := 0.0
		if year >= c.EcoStartYear {
			eco = math.Round(acres * c.EcoRevenuePerAcre * ecoMult * math.Pow(c.EcoGrowth, float64(year-c.EcoStartYear)))
		}

		// Transition subsidies pay in full for the first years, then taper.
		sub := acres * c.SubsidyPerAcre * subMult
		if year > c.SubsidyFullYears {
			sub *= c.SubsidyTailFactor
		}
		sub = math.Round(sub)

		cost := math.Round(acres * c.CostPerAcre * costMult * math.Pow(c.CostTrend, float64(year-1)))

		revenue := ag + eco + sub
		years = append(years, types.YearFinancials{
			Year:                year,
			AgriculturalSales:   ag,
			EcosystemServices:   eco,
			SubsidiesIncentives: sub,
			TotalRevenue:        revenue,
			TotalCosts:          cost,
			NetCashFlow:         revenue - cost,
		})
	}

	result := &types.ProjectionResult{
		ProjectName:        projectNameFor(cats.Goal),
		ProjectDescription: projectDescription(acres),
		Location:           FormatLocation(req.Address),
		AreaHectares:       AreaHectares(acres),
		YearlyFinancials:   years,
	}
	sumTotals(result)
	return result, nil
}
