package client

import (
	"net/http"
	"time"
)

// InquiryStatus represents the lifecycle state of an inquiry
type InquiryStatus string

const (
	StatusPending    InquiryStatus = "pending"
	StatusProcessing InquiryStatus = "processing"
	StatusCompleted  InquiryStatus = "completed"
	StatusFailed     InquiryStatus = "failed"
)

// Terminal reports whether the status is an end state.
func (s InquiryStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Config holds the Loam client configuration
type Config struct {
	BaseURL    string        // Service base URL, e.g. "http://localhost:8080"
	AdminKey   string        // Admin API key; required only for admin calls
	Timeout    time.Duration // HTTP timeout (default: 30 seconds)
	HTTPClient *http.Client  // Optional custom HTTP client
}

// Inquiry is a property inquiry record as returned by the service
type Inquiry struct {
	ID                    string         `json:"id"`
	Address               string         `json:"address"`
	LotSizeAcres          float64        `json:"lot_size_acres"`
	UserContext           string         `json:"user_context,omitempty"`
	CurrentQuestion       int            `json:"current_question"`
	QuestionnaireComplete bool           `json:"questionnaire_complete"`
	Answers               map[int]string `json:"answers"`
	Status                InquiryStatus  `json:"status"`
	Result                *Projection    `json:"result,omitempty"`
	ErrorMessage          string         `json:"error_message,omitempty"`
	ProcessingStartedAt   *time.Time     `json:"processing_started_at,omitempty"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
}

// Projection is a generated 10-year financial projection
type Projection struct {
	ProjectName        string           `json:"project_name"`
	ProjectDescription string           `json:"project_description"`
	Location           string           `json:"location"`
	AreaHectares       float64          `json:"area_hectares"`
	YearlyFinancials   []YearFinancials `json:"yearly_financials"`
	TotalRevenue       float64          `json:"total_revenue_10_year"`
	TotalCosts         float64          `json:"total_costs_10_year"`
	TotalNetCashFlow   float64          `json:"total_net_cash_flow_10_year"`
	ROIPercentage      *float64         `json:"roi_percentage"`
	ModelUsed          string           `json:"model_used"`
	GenerationSeconds  float64          `json:"generation_seconds"`
}

// YearFinancials is one projected year
type YearFinancials struct {
	Year                int     `json:"year"`
	AgriculturalSales   float64 `json:"agricultural_sales"`
	EcosystemServices   float64 `json:"ecosystem_services"`
	SubsidiesIncentives float64 `json:"subsidies_incentives"`
	TotalRevenue        float64 `json:"total_revenue"`
	TotalCosts          float64 `json:"total_costs"`
	NetCashFlow         float64 `json:"net_cash_flow"`
}

// CreateInquiryParams holds parameters for opening an inquiry
type CreateInquiryParams struct {
	Address     string  `json:"address"`
	LotSize     float64 `json:"lot_size"`
	LotSizeUnit string  `json:"lot_size_unit,omitempty"` // "acres" (default) or "hectares"
	UserContext string  `json:"user_context,omitempty"`
}

// Question is a single step of the intake questionnaire
type Question struct {
	Number      int    `json:"number"`
	Key         string `json:"key"`
	Title       string `json:"title"`
	Placeholder string `json:"placeholder"`
	Required    bool   `json:"required"`
}

// QuestionView couples a questionnaire step with the stored answer
type QuestionView struct {
	InquiryID       string   `json:"inquiry_id"`
	Question        Question `json:"question"`
	Response        string   `json:"response,omitempty"`
	TotalQuestions  int      `json:"total_questions"`
	ProgressPercent int      `json:"progress_percent"`
}

// AnswerResult is the outcome of recording an answer
type AnswerResult struct {
	InquiryID             string `json:"inquiry_id"`
	QuestionNumber        int    `json:"question_number"`
	QuestionnaireComplete bool   `json:"questionnaire_complete"`
	NextQuestion          *int   `json:"next_question,omitempty"`
	ProgressPercent       int    `json:"progress_percent"`
}

// GenerationStatus is the generation state of an inquiry
type GenerationStatus struct {
	InquiryID       string        `json:"inquiry_id"`
	Status          InquiryStatus `json:"status"`
	ProgressPercent int           `json:"progress_percent"`
	Error           string        `json:"error,omitempty"`
}

// ProjectionState is the response to a projection request or lookup:
// the bare status while the projection is pending, processing, or failed,
// plus the full record once completed.
type ProjectionState struct {
	InquiryID       string
	Status          InquiryStatus
	ProgressPercent int
	Error           string
	Inquiry         *Inquiry // set when Status == StatusCompleted
}

// ListParams holds filters for the admin inquiry listing
type ListParams struct {
	Status InquiryStatus // Filter by status; empty means all
	Limit  int           // Page size (default: 50, max: 500)
	Offset int           // Rows to skip
}

// InquiryPage is a page of inquiries from the admin listing
type InquiryPage struct {
	Inquiries []Inquiry `json:"inquiries"`
	Count     int       `json:"count"`
	Limit     int       `json:"limit"`
	Offset    int       `json:"offset"`
}

// Health is the service health document
type Health struct {
	Status          string `json:"status"`
	Version         string `json:"version"`
	GenerationMode  string `json:"generation_mode"`
	GenerationModel string `json:"generation_model"`
	InquiryCount    int64  `json:"inquiry_count"`
}

// ServiceStats is the admin stats document
type ServiceStats struct {
	TotalInquiries     int64              `json:"total_inquiries"`
	StatusCounts       map[string]int64   `json:"status_counts"`
	QuestionnaireStats QuestionnaireStats `json:"questionnaire_stats"`
	GenerationStats    GenerationStats    `json:"generation_stats"`
	LandStats          LandStats          `json:"land_stats"`
	StatsAsOf          time.Time          `json:"stats_as_of"`
}

// QuestionnaireStats tracks questionnaire funnel health
type QuestionnaireStats struct {
	Complete   int64 `json:"complete"`
	InProgress int64 `json:"in_progress"`
}

// GenerationStats tracks projection generation outcomes
type GenerationStats struct {
	Completed      int64            `json:"completed"`
	Failed         int64            `json:"failed"`
	AverageSeconds float64          `json:"average_seconds"`
	ModelCounts    map[string]int64 `json:"model_counts"`
}

// LandStats tracks the acreage flowing through the service
type LandStats struct {
	TotalAcres   float64 `json:"total_acres"`
	AverageAcres float64 `json:"average_acres"`
	LargestAcres float64 `json:"largest_acres"`
}
