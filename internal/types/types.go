package types

import (
	"encoding/json"
	"math"
	"time"
)

// InquiryStatus represents the lifecycle state of a property inquiry
type InquiryStatus string

const (
	StatusPending    InquiryStatus = "pending"
	StatusProcessing InquiryStatus = "processing"
	StatusCompleted  InquiryStatus = "completed"
	StatusFailed     InquiryStatus = "failed"
)

// Valid reports whether s is a known lifecycle state.
func (s InquiryStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// ProjectionYears is the horizon every financial projection covers.
const ProjectionYears = 10

// QuestionCount is the number of steps in the intake questionnaire.
const QuestionCount = 4

// Acreage is collected in acres and reported in hectares.
const (
	AcresPerHectare = 2.47105
	HectaresPerAcre = 0.404686
)

// QuestionKey identifies which planning dimension a questionnaire step captures.
type QuestionKey string

const (
	KeyGoal       QuestionKey = "goal"
	KeyTimeline   QuestionKey = "timeline"
	KeyBudget     QuestionKey = "budget"
	KeyExperience QuestionKey = "experience"
)

// Question is a single step of the intake questionnaire.
type Question struct {
	Number      int         `json:"number"`
	Key         QuestionKey `json:"key"`
	Title       string      `json:"title"`
	Placeholder string      `json:"placeholder"`
	Required    bool        `json:"required"`
}

var questions = [QuestionCount]Question{
	{
		Number:      1,
		Key:         KeyGoal,
		Title:       "What's your main goal for the property?",
		Placeholder: "e.g. Restore the soil, grow food for my family, build a side income from the land...",
		Required:    true,
	},
	{
		Number:      2,
		Key:         KeyTimeline,
		Title:       "What timeline are you working with?",
		Placeholder: "e.g. I'd like to see meaningful results within 5 years...",
		Required:    true,
	},
	{
		Number:      3,
		Key:         KeyBudget,
		Title:       "How much are you able to invest up front?",
		Placeholder: "e.g. A medium budget, roughly $10-20k over the first few years...",
		Required:    true,
	},
	{
		Number:      4,
		Key:         KeyExperience,
		Title:       "How much hands-on farming experience do you have?",
		Placeholder: "e.g. Complete beginner, a few seasons of vegetable gardening, grew up on a farm...",
		Required:    false,
	},
}

// Questions returns the ordered intake questionnaire.
func Questions() []Question {
	return append([]Question(nil), questions[:]...)
}

// QuestionByNumber returns the questionnaire step n (1-based).
func QuestionByNumber(n int) (Question, bool) {
	if n < 1 || n > QuestionCount {
		return Question{}, false
	}
	return questions[n-1], true
}

// Inquiry is the persisted record of a property walkthrough: intake details,
// questionnaire progress, and the generated projection once complete.
type Inquiry struct {
	ID                    string            `json:"id"`
	Address               string            `json:"address"`
	LotSizeAcres          float64           `json:"lot_size_acres"`
	UserContext           string            `json:"user_context,omitempty"`
	CurrentQuestion       int               `json:"current_question"`
	QuestionnaireComplete bool              `json:"questionnaire_complete"`
	Answers               map[int]string    `json:"answers"`
	Status                InquiryStatus     `json:"status"`
	Result                *ProjectionResult `json:"result,omitempty"`
	ErrorMessage          string            `json:"error_message,omitempty"`
	ProcessingStartedAt   *time.Time        `json:"processing_started_at,omitempty"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
}

// ProgressPercent returns questionnaire completion as a whole percentage.
func (i *Inquiry) ProgressPercent() int {
	if i.QuestionnaireComplete {
		return 100
	}
	answered := 0
	for n := range i.Answers {
		if n >= 1 && n <= QuestionCount {
			answered++
		}
	}
	return answered * 100 / QuestionCount
}

// MarshalJSON ensures a nil answer map in Inquiry marshals as {} not null.
func (i Inquiry) MarshalJSON() ([]byte, error) {
	if i.Answers == nil {
		i.Answers = map[int]string{}
	}
	type Alias Inquiry
	return json.Marshal(Alias(i))
}

// YearFinancials is a single year of a projection. Monetary values are whole USD.
type YearFinancials struct {
	Year                int     `json:"year"`
	AgriculturalSales   float64 `json:"agricultural_sales"`
	EcosystemServices   float64 `json:"ecosystem_services"`
	SubsidiesIncentives float64 `json:"subsidies_incentives"`
	TotalRevenue        float64 `json:"total_revenue"`
	TotalCosts          float64 `json:"total_costs"`
	NetCashFlow         float64 `json:"net_cash_flow"`
}

// ProjectionResult is the generated outcome attached to a completed inquiry.
type ProjectionResult struct {
	ProjectName        string           `json:"project_name"`
	ProjectDescription string           `json:"project_description"`
	Location           string           `json:"location"`
	AreaHectares       float64          `json:"area_hectares"`
	YearlyFinancials   []YearFinancials `json:"yearly_financials"`
	TotalRevenue       float64          `json:"total_revenue_10_year"`
	TotalCosts         float64          `json:"total_costs_10_year"`
	TotalNetCashFlow   float64          `json:"total_net_cash_flow_10_year"`
	ModelUsed          string           `json:"model_used"`
	GenerationSeconds  float64          `json:"generation_seconds"`
}

// ROIPercentage returns net cash flow over total costs as a percentage,
// rounded to two decimals. Nil when total costs are zero.
func (p *ProjectionResult) ROIPercentage() *float64 {
	if p.TotalCosts == 0 {
		return nil
	}
	roi := math.Round(p.TotalNetCashFlow/p.TotalCosts*100*100) / 100
	return &roi
}

// MarshalJSON ensures a nil yearly slice in ProjectionResult marshals as [] not null,
// and includes the derived roi_percentage.
func (p ProjectionResult) MarshalJSON() ([]byte, error) {
	if p.YearlyFinancials == nil {
		p.YearlyFinancials = []YearFinancials{}
	}
	type Alias ProjectionResult
	return json.Marshal(struct {
		Alias
		ROIPercentage *float64 `json:"roi_percentage"`
	}{
		Alias:         Alias(p),
		ROIPercentage: p.ROIPercentage(),
	})
}

// CreateInquiryRequest represents a request to open a new property inquiry.
type CreateInquiryRequest struct {
	Address     string  `json:"address"`
	LotSize     float64 `json:"lot_size"`
	LotSizeUnit string  `json:"lot_size_unit,omitempty"` // "acres" (default) or "hectares"
	UserContext string  `json:"user_context,omitempty"`
}

// AnswerRequest represents a questionnaire answer submission.
type AnswerRequest struct {
	Response string `json:"response"`
}

// QuestionView couples a questionnaire step with the inquiry's stored answer.
type QuestionView struct {
	InquiryID       string   `json:"inquiry_id"`
	Question        Question `json:"question"`
	Response        string   `json:"response,omitempty"`
	TotalQuestions  int      `json:"total_questions"`
	ProgressPercent int      `json:"progress_percent"`
}

// AnswerResult represents the outcome of recording an answer.
type AnswerResult struct {
	InquiryID             string `json:"inquiry_id"`
	QuestionNumber        int    `json:"question_number"`
	QuestionnaireComplete bool   `json:"questionnaire_complete"`
	NextQuestion          *int   `json:"next_question,omitempty"`
	ProgressPercent       int    `json:"progress_percent"`
}

// StatusView represents the generation status of an inquiry.
type StatusView struct {
	InquiryID       string        `json:"inquiry_id"`
	Status          InquiryStatus `json:"status"`
	ProgressPercent int           `json:"progress_percent"`
	Error           string        `json:"error,omitempty"`
}

// InquiryListResponse is a page of inquiries from the admin listing.
type InquiryListResponse struct {
	Inquiries []Inquiry `json:"inquiries"`
	Count     int       `json:"count"`
	Limit     int       `json:"limit"`
	Offset    int       `json:"offset"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status          string `json:"status"`
	Version         string `json:"version"`
	GenerationMode  string `json:"generation_mode"`
	GenerationModel string `json:"generation_model"`
	InquiryCount    int64  `json:"inquiry_count"`
}

// ExtendedStats provides comprehensive service metrics for monitoring.
type ExtendedStats struct {
	TotalInquiries int64            `json:"total_inquiries"`
	StatusCounts   map[string]int64 `json:"status_counts"`

	QuestionnaireStats QuestionnaireStats `json:"questionnaire_stats"`
	GenerationStats    GenerationStats    `json:"generation_stats"`
	LandStats          LandStats          `json:"land_stats"`

	StatsAsOf time.Time `json:"stats_as_of"`
}

// QuestionnaireStats tracks questionnaire funnel health.
type QuestionnaireStats struct {
	Complete   int64 `json:"complete"`
	InProgress int64 `json:"in_progress"`
}

// GenerationStats tracks projection generation outcomes.
type GenerationStats struct {
	Completed      int64            `json:"completed"`
	Failed         int64            `json:"failed"`
	AverageSeconds float64          `json:"average_seconds"`
	ModelCounts    map[string]int64 `json:"model_counts"`
}

// LandStats tracks the acreage flowing through the service.
type LandStats struct {
	TotalAcres   float64 `json:"total_acres"`
	AverageAcres float64 `json:"average_acres"`
	LargestAcres float64 `json:"largest_acres"`
}

// MarshalJSON ensures nil maps in ExtendedStats marshal as {} not null.
func (e ExtendedStats) MarshalJSON() ([]byte, error) {
	if e.StatusCounts == nil {
		e.StatusCounts = map[string]int64{}
	}
	if e.GenerationStats.ModelCounts == nil {
		e.GenerationStats.ModelCounts = map[string]int64{}
	}
	type Alias ExtendedStats
	return json.Marshal(Alias(e))
}
