package projection

import (
	"fmt"
	"math"
	"strings"

	"github.com/openacre/loam/internal/types"
)

// projectNames maps each goal category to a fixed project name so identical
// inputs always title the projection identically.
var projectNames = map[string]string{
	GoalSoilHealth:   "Soil Restoration Project",
	GoalFoodForest:   "Sustainable Farming Project",
	GoalIncome:       "Regenerative Agricultural Initiative",
	GoalBiodiversity: "Biodiversity Enhancement Farm",
	GoalCarbon:       "Carbon Sequestration Agriculture Program",
}

func projectNameFor(goal string) string {
	if name, ok := projectNames[goal]; ok {
		return name
	}
	return projectNames[GoalSoilHealth]
}

func projectDescription(acres float64) string {
	return fmt.Sprintf("This %.1f-hectare regenerative agriculture project focuses on sustainable farming practices, "+
		"soil restoration, and carbon sequestration. The initiative combines modern agricultural techniques with "+
		"environmental stewardship to create a profitable and sustainable farming operation. Key components include "+
		"cover crop rotation, integrated pest management, livestock integration, and agroforestry systems. The project "+
		"is designed to improve soil health, increase biodiversity, and generate multiple revenue streams while "+
		"contributing to climate change mitigation through carbon sequestration.", AreaHectares(acres))
}

// FormatLocation reduces a full street address to its first and last
// comma-separated segments, e.g. "123 Farm Rd, Boise, ID" -> "123 Farm Rd, ID".
func FormatLocation(address string) string {
	parts := strings.Split(address, ",")
	if len(parts) >= 2 {
		return strings.TrimSpace(parts[0]) + ", " + strings.TrimSpace(parts[len(parts)-1])
	}
	return strings.TrimSpace(address)
}

// AreaHectares converts acres to hectares rounded to one decimal place.
func AreaHectares(acres float64) float64 {
	return math.Round(acres*types.HectaresPerAcre*10) / 10
}

// sumTotals fills the 10-year aggregate fields from the yearly rows.
func sumTotals(p *types.ProjectionResult) {
	var revenue, costs float64
	for _, y := range p.YearlyFinancials {
		revenue += y.TotalRevenue
		costs += y.TotalCosts
	}
	p.TotalRevenue = revenue
	p.TotalCosts = costs
	p.TotalNetCashFlow = revenue - costs
}
