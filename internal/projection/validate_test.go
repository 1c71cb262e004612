package projection

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/openacre/loam/internal/types"
)

func validProjection(t *testing.T) *types.ProjectionResult {
	t.Helper()
	result, err := NewLocalSource(defaultCoeffs()).Generate(context.Background(), baselineRequest())
	if err != nil {
		t.Fatalf("building fixture: %v", err)
	}
	return result
}

func TestValidateProjection_AcceptsValid(t *testing.T) {
	if err := ValidateProjection(validProjection(t)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateProjection_NilProjection(t *testing.T) {
	if err := ValidateProjection(nil); err == nil {
		t.Error("expected error for nil projection")
	}
}

func TestValidateProjection_WrongRowCount(t *testing.T) {
	p := validProjection(t)
	p.YearlyFinancials = p.YearlyFinancials[:9]

	err := ValidateProjection(p)
	if err == nil {
		t.Fatal("expected error for 9 rows")
	}
	if !strings.Contains(err.Error(), "want 10") {
		t.Errorf("error should mention the required row count, got: %v", err)
	}
}

func TestValidateProjection_NonContiguousYears(t *testing.T) {
	p := validProjection(t)
	p.YearlyFinancials[5].Year = 12

	err := ValidateProjection(p)
	if err == nil {
		t.Fatal("expected error for broken year sequence")
	}
	if !strings.Contains(err.Error(), "contiguous") {
		t.Errorf("error should mention contiguity, got: %v", err)
	}
}

func TestValidateProjection_NegativeRequiredField(t *testing.T) {
	p := validProjection(t)
	p.YearlyFinancials[2].TotalCosts = -100

	err := ValidateProjection(p)
	if err == nil {
		t.Fatal("expected error for negative costs")
	}
	if !strings.Contains(err.Error(), "non-negative") {
		t.Errorf("error should mention non-negativity, got: %v", err)
	}
}

func TestValidateProjection_NegativeNetCashFlowAllowed(t *testing.T) {
	p := validProjection(t)
	p.YearlyFinancials[0].NetCashFlow = -5000

	if err := ValidateProjection(p); err != nil {
		t.Errorf("net cash flow may be negative, got error: %v", err)
	}
}

func TestValidateProjection_NonFiniteValues(t *testing.T) {
	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		p := validProjection(t)
		p.YearlyFinancials[4].AgriculturalSales = bad

		err := ValidateProjection(p)
		if err == nil {
			t.Fatalf("expected error for value %v", bad)
		}
		if !strings.Contains(err.Error(), "finite") {
			t.Errorf("error should mention finiteness, got: %v", err)
		}
	}
}

func TestValidateProjection_NonFiniteTotals(t *testing.T) {
	p := validProjection(t)
	p.TotalNetCashFlow = math.Inf(1)

	if err := ValidateProjection(p); err == nil {
		t.Error("expected error for non-finite total")
	}
}
