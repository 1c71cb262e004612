package projection

import (
	"errors"
	"fmt"
	"math"

	"github.com/openacre/loam/internal/types"
)

// ValidateProjection checks a generated projection against the schema every
// consumer assumes: exactly ten yearly rows with contiguous years 1..10, all
// numeric fields finite, and non-negative values where the domain requires.
// Net cash flow is the one signed field.
func ValidateProjection(p *types.ProjectionResult) error {
	if p == nil {
		return errors.New("projection is nil")
	}
	if n := len(p.YearlyFinancials); n != types.ProjectionYears {
		return fmt.Errorf("projection has %d yearly rows, want %d", n, types.ProjectionYears)
	}

	for i, y := range p.YearlyFinancials {
		if y.Year != i+1 {
			return fmt.Errorf("row %d: year %d breaks the contiguous 1..%d sequence", i+1, y.Year, types.ProjectionYears)
		}
		checks := []struct {
			field  string
			value  float64
			signed bool
		}{
			{"agricultural_sales", y.AgriculturalSales, false},
			{"ecosystem_services", y.EcosystemServices, false},
			{"subsidies_incentives", y.SubsidiesIncentives, false},
			{"total_revenue", y.TotalRevenue, false},
			{"total_costs", y.TotalCosts, false},
			{"net_cash_flow", y.NetCashFlow, true},
		}
		for _, c := range checks {
			if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
				return fmt.Errorf("year %d: %s is not a finite number", y.Year, c.field)
			}
			if !c.signed && c.value < 0 {
				return fmt.Errorf("year %d: %s must be non-negative, got %v", y.Year, c.field, c.value)
			}
		}
	}

	totals := []struct {
		field string
		value float64
	}{
		{"total_revenue_10_year", p.TotalRevenue},
		{"total_costs_10_year", p.TotalCosts},
		{"total_net_cash_flow_10_year", p.TotalNetCashFlow},
	}
	for _, c := range totals {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return fmt.Errorf("%s is not a finite number", c.field)
		}
	}
	return nil
}
