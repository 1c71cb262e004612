package projection

import "strings"

// Canonical answer categories per questionnaire dimension. Free-text
// responses are matched against these (and their synonyms) before the
// dimension default applies.
const (
	GoalSoilHealth   = "soil_health"
	GoalFoodForest   = "food_forest"
	GoalIncome       = "income"
	GoalBiodiversity = "biodiversity"
	GoalCarbon       = "carbon"

	TimelineASAP         = "asap"
	TimelineFiveYears    = "5_years"
	TimelineTenYears     = "10_years"
	TimelineGenerational = "generational"

	BudgetLow    = "low"
	BudgetMedium = "medium"
	BudgetHigh   = "high"

	ExperienceBeginner     = "beginner"
	ExperienceIntermediate = "intermediate"
	ExperienceAdvanced     = "advanced"
)

// Categories is the categorized form of the four questionnaire answers.
type Categories struct {
	Goal       string
	Timeline   string
	Budget     string
	Experience string
}

// Category multipliers applied to the estimator baseline. Product-defined
// adjustments, not tunable configuration.
var (
	goalAgMult = map[string]float64{
		GoalSoilHealth:   1.0,
		GoalFoodForest:   1.1,
		GoalIncome:       1.25,
		GoalBiodiversity: 0.9,
		GoalCarbon:       0.95,
	}
	goalEcoMult = map[string]float64{
		GoalSoilHealth:   1.1,
		GoalFoodForest:   1.0,
		GoalIncome:       0.9,
		GoalBiodiversity: 1.3,
		GoalCarbon:       1.5,
	}
	timelineSubMult = map[string]float64{
		TimelineASAP:         0.85,
		TimelineFiveYears:    1.0,
		TimelineTenYears:     1.1,
		TimelineGenerational: 1.2,
	}
	budgetCostMult = map[string]float64{
		BudgetLow:    0.85,
		BudgetMedium: 1.0,
		BudgetHigh:   1.2,
	}
	experienceAgMult = map[string]float64{
		ExperienceBeginner:     0.9,
		ExperienceIntermediate: 1.0,
		ExperienceAdvanced:     1.1,
	}
	experienceCostMult = map[string]float64{
		ExperienceBeginner:     1.1,
		ExperienceIntermediate: 1.0,
		ExperienceAdvanced:     0.95,
	}
)

// AgMultiplier scales baseline agricultural revenue.
func (c Categories) AgMultiplier() float64 {
	return mult(goalAgMult, c.Goal, GoalSoilHealth) * mult(experienceAgMult, c.Experience, ExperienceBeginner)
}

// EcoMultiplier scales baseline ecosystem-services revenue.
func (c Categories) EcoMultiplier() float64 {
	return mult(goalEcoMult, c.Goal, GoalSoilHealth)
}

// SubsidyMultiplier scales baseline subsidy revenue.
func (c Categories) SubsidyMultiplier() float64 {
	return mult(timelineSubMult, c.Timeline, TimelineFiveYears)
}

// CostMultiplier scales baseline operating costs.
func (c Categories) CostMultiplier() float64 {
	return mult(budgetCostMult, c.Budget, BudgetMedium) * mult(experienceCostMult, c.Experience, ExperienceBeginner)
}

// mult keeps the multiplier functions total: unknown categories take the
// default category's multiplier rather than zeroing the projection.
func mult(table map[string]float64, key, def string) float64 {
	if m, ok := table[key]; ok {
		return m
	}
	return table[def]
}

// CategorizeAnswers maps the raw questionnaire responses (keyed by question
// number) to canonical categories. Missing or unrecognized answers take the
// dimension default.
func CategorizeAnswers(answers map[int]string) Categories {
	return Categories{
		Goal:       categorizeGoal(answers[1]),
		Timeline:   categorizeTimeline(answers[2]),
		Budget:     categorizeBudget(answers[3]),
		Experience: categorizeExperience(answers[4]),
	}
}

type synonymSet struct {
	category string
	keywords []string
}

// Synonym order matters: more specific categories are checked first so a
// compound answer like "sell carbon credits" lands on carbon, not income.
var (
	goalSynonyms = []synonymSet{
		{GoalCarbon, []string{"carbon", "climate", "sequest", "offset"}},
		{GoalBiodiversity, []string{"biodiversity", "wildlife", "habitat", "native", "species", "pollinator"}},
		{GoalFoodForest, []string{"food", "forest", "orchard", "fruit", "agroforestry"}},
		{GoalIncome, []string{"income", "profit", "revenue", "money", "sell", "business", "commercial"}},
		{GoalSoilHealth, []string{"soil", "restore", "regenerat", "fertility", "erosion", "compost"}},
	}
	timelineSynonyms = []synonymSet{
		{TimelineGenerational, []string{"generation", "legacy", "lifetime", "grandchild", "heir", "forever"}},
		{TimelineTenYears, []string{"10", "ten_year", "decade"}},
		{TimelineASAP, []string{"asap", "soon", "immediate", "right_away", "urgent", "quick", "1_year", "2_year"}},
		{TimelineFiveYears, []string{"5", "five"}},
	}
	budgetSynonyms = []synonymSet{
		{BudgetLow, []string{"low", "small", "tight", "minimal", "shoestring", "limited", "frugal"}},
		{BudgetHigh, []string{"high", "large", "substantial", "significant", "big", "ample", "unlimited"}},
		{BudgetMedium, []string{"medium", "moderate", "mid", "average"}},
	}
	experienceSynonyms = []synonymSet{
		{ExperienceAdvanced, []string{"advanced", "expert", "professional", "grew_up", "decades", "rancher"}},
		{ExperienceIntermediate, []string{"intermediate", "some", "hobby", "season", "garden", "moderate"}},
		{ExperienceBeginner, []string{"beginner", "none", "new", "first", "never", "nothing"}},
	}
)

func categorize(raw, def string, canonical []string, synonyms []synonymSet) string {
	s := normalizeAnswer(raw)
	if s == "" {
		return def
	}
	for _, c := range canonical {
		if s == c {
			return c
		}
	}
	for _, set := range synonyms {
		for _, kw := range set.keywords {
			if strings.Contains(s, kw) {
				return set.category
			}
		}
	}
	return def
}

func categorizeGoal(raw string) string {
	return categorize(raw, GoalSoilHealth,
		[]string{GoalSoilHealth, GoalFoodForest, GoalIncome, GoalBiodiversity, GoalCarbon},
		goalSynonyms)
}

func categorizeTimeline(raw string) string {
	return categorize(raw, TimelineFiveYears,
		[]string{TimelineASAP, TimelineFiveYears, TimelineTenYears, TimelineGenerational},
		timelineSynonyms)
}

func categorizeBudget(raw string) string {
	return categorize(raw, BudgetMedium,
		[]string{BudgetLow, BudgetMedium, BudgetHigh},
		budgetSynonyms)
}

func categorizeExperience(raw string) string {
	return categorize(raw, ExperienceBeginner,
		[]string{ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced},
		experienceSynonyms)
}

// normalizeAnswer lowercases, trims, and joins interior whitespace with
// underscores so "Soil Health" compares equal to "soil_health".
func normalizeAnswer(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "_")
}
