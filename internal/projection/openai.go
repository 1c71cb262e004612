package projection

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/openacre/loam/internal/config"
	"github.com/openacre/loam/internal/types"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Compile-time interface check
var _ Source = (*OpenAISource)(nil)

// ChatService defines the interface for making chat completion API calls.
// This abstraction enables testing without calling the real OpenAI API.
type ChatService interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAISource generates projections through OpenAI's chat completions API.
type OpenAISource struct {
	chat        ChatService
	model       string
	timeout     time.Duration
	temperature float64
	maxTokens   int64
}

// NewOpenAISource creates an OpenAI-backed projection source. A non-empty
// cfg.BaseURL points the client at an OpenAI-compatible endpoint.
func NewOpenAISource(cfg config.GenerationConfig) *OpenAISource {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)
	return &OpenAISource{
		chat:        client.Chat.Completions,
		model:       cfg.Model,
		timeout:     time.Duration(cfg.Timeout),
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// ModelName returns the configured chat model identifier.
func (o *OpenAISource) ModelName() string {
	return o.model
}

// Generate makes a single chat completion attempt within the configured
// timeout. Any transport, decode, or response-shape failure comes back as an
// error; retry and fallback policy belong to the caller.
func (o *OpenAISource) Generate(ctx context.Context, req Request) (*types.ProjectionResult, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	resp, err := o.chat.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildUserPrompt(req)),
		}),
		Model:       openai.F(openai.ChatModel(o.model)),
		Temperature: openai.F(o.temperature),
		MaxTokens:   openai.F(o.maxTokens),
		ResponseFormat: openai.F[openai.ChatCompletionNewParamsResponseFormatUnion](
			openai.ResponseFormatJSONObjectParam{
				Type: openai.F(openai.ResponseFormatJSONObjectTypeJSONObject),
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("projection generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("projection generation failed: no choices returned")
	}

	return parseRemoteProjection(resp.Choices[0].Message.Content, req)
}

const systemPrompt = `You are an expert agricultural economist and regenerative farming consultant. You analyze land properties and create detailed 10-year financial projections for regenerative agriculture projects.

Your task is to generate realistic, conservative estimates that include:
1. Year-by-year financial projections (10 years)
2. Three revenue categories: Agricultural Sales, Ecosystem Services, Subsidies & Incentives
3. Operating costs that improve over time due to efficiency gains
4. A compelling project name and description

Consider these factors in your projections:
- Soil restoration takes 2-3 years to show benefits
- Carbon credits and ecosystem services start generating revenue in years 3-4
- Agricultural productivity improves as soil health recovers
- Operating costs decrease over time due to reduced inputs and improved efficiency
- Subsidies are typically higher in early years
- Climate, soil type, and local markets affect profitability
- Regenerative practices: cover crops, rotational grazing, agroforestry, composting

Return ONLY valid JSON with this exact structure:
{
  "project_name": "string",
  "project_description": "string (200-400 words)",
  "yearly_projections": [
    {
      "year": 1,
      "agricultural_sales": number,
      "ecosystem_services": number,
      "subsidies_incentives": number,
      "total_costs": number
    }
  ]
}

The yearly_projections array must contain exactly 10 entries covering years 1 through 10. All monetary values should be in USD. Be realistic but optimistic about regenerative agriculture benefits.`

func buildUserPrompt(req Request) string {
	acres := req.LotSizeAcres
	hectares := acres * types.HectaresPerAcre

	contextBlock := strings.TrimSpace(req.UserContext)
	if contextBlock == "" {
		contextBlock = "No additional context provided"
	}
	var responses []string
	for n := 1; n <= types.QuestionCount; n++ {
		if answer, ok := req.Answers[n]; ok {
			responses = append(responses, fmt.Sprintf("Q%d: %s", n, answer))
		}
	}
	if len(responses) > 0 {
		contextBlock += "\n\nQuestionnaire Responses:\n" + strings.Join(responses, "\n")
	}

	return fmt.Sprintf(`Create a detailed 10-year financial projection for a regenerative agriculture project:

Property Details:
- Location: %s
- Size: %g acres (%.1f hectares)
- Project Type: Regenerative Agriculture Transition

Context:
%s

Generate realistic projections considering:
- Transition period (years 1-3): Lower yields as soil recovers
- Maturity period (years 4-7): Improved productivity and new revenue streams
- Optimization period (years 8-10): Peak efficiency and diversified income

Revenue Categories:
1. Agricultural Sales: Crops, livestock, value-added products
2. Ecosystem Services: Carbon credits, water quality, biodiversity payments
3. Subsidies & Incentives: Government programs, grants, tax benefits

Provide conservative estimates that account for regional agriculture economics and regenerative farming best practices.

Return valid JSON only.`, req.Address, acres, hectares, contextBlock)
}

type remoteProjection struct {
	ProjectName        string       `json:"project_name"`
	ProjectDescription string       `json:"project_description"`
	YearlyProjections  []remoteYear `json:"yearly_projections"`
}

// remoteYear decodes one yearly entry. Pointer fields distinguish a genuine
// zero from an omitted field.
type remoteYear struct {
	Year                *int     `json:"year"`
	AgriculturalSales   *float64 `json:"agricultural_sales"`
	EcosystemServices   *float64 `json:"ecosystem_services"`
	SubsidiesIncentives *float64 `json:"subsidies_incentives"`
	TotalCosts          *float64 `json:"total_costs"`
}

// parseRemoteProjection decodes the model's JSON payload. The payload must
// carry exactly ten complete yearly entries covering years 1..10; anything
// short, malformed, or out of range fails the whole response. Missing years
// are never extrapolated and bad entries are never repaired.
func parseRemoteProjection(content string, req Request) (*types.ProjectionResult, error) {
	var remote remoteProjection
	if err := json.Unmarshal([]byte(content), &remote); err != nil {
		return nil, fmt.Errorf("projection generation failed: decoding response: %w", err)
	}
	if n := len(remote.YearlyProjections); n != types.ProjectionYears {
		return nil, fmt.Errorf("projection generation failed: expected %d yearly entries, got %d", types.ProjectionYears, n)
	}

	entries := append([]remoteYear(nil), remote.YearlyProjections...)
	for i, e := range entries {
		if e.Year == nil || e.AgriculturalSales == nil || e.EcosystemServices == nil || e.SubsidiesIncentives == nil || e.TotalCosts == nil {
			return nil, fmt.Errorf("projection generation failed: yearly entry %d is missing fields", i+1)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return *entries[i].Year < *entries[j].Year })

	years := make([]types.YearFinancials, 0, types.ProjectionYears)
	for i, e := range entries {
		if *e.Year != i+1 {
			return nil, fmt.Errorf("projection generation failed: years are not contiguous 1..%d", types.ProjectionYears)
		}
		revenue := *e.AgriculturalSales + *e.EcosystemServices + *e.SubsidiesIncentives
		years = append(years, types.YearFinancials{
			Year:                *e.Year,
			AgriculturalSales:   *e.AgriculturalSales,
			EcosystemServices:   *e.EcosystemServices,
			SubsidiesIncentives: *e.SubsidiesIncentives,
			TotalRevenue:        revenue,
			TotalCosts:          *e.TotalCosts,
			NetCashFlow:         revenue - *e.TotalCosts,
		})
	}

	name := strings.TrimSpace(remote.ProjectName)
	if name == "" {
		name = "Regenerative Agriculture Project"
	}
	description := strings.TrimSpace(remote.ProjectDescription)
	if description == "" {
		description = "A comprehensive regenerative agriculture project focused on sustainable farming practices."
	}

	result := &types.ProjectionResult{
		ProjectName:        name,
		ProjectDescription: description,
		Location:           FormatLocation(req.Address),
		AreaHectares:       AreaHectares(req.LotSizeAcres),
		YearlyFinancials:   years,
	}
	sumTotals(result)

	if err := ValidateProjection(result); err != nil {
		return nil, fmt.Errorf("projection generation failed: %w", err)
	}
	return result, nil
}
