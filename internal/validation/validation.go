package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/openacre/loam/internal/types"
)

// Intake and questionnaire field limits.
const (
	AddressMinLength  = 5
	AddressMaxLength  = 500
	ContextMaxLength  = 2000
	ResponseMinLength = 5
	ResponseMaxLength = 2000
	LotSizeMin        = 0.01
	LotSizeMax        = 100000
)

// LotSizeUnits are the accepted units for intake lot sizes.
var LotSizeUnits = []string{"acres", "hectares"}

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Collector accumulates validation errors without failing on first.
type Collector struct {
	errors []ValidationError
}

// Add appends a validation error to the collector if non-nil.
func (c *Collector) Add(err *ValidationError) {
	if err != nil {
		c.errors = append(c.errors, *err)
	}
}

// HasErrors returns true if the collector has accumulated any errors.
func (c *Collector) HasErrors() bool {
	return len(c.errors) > 0
}

// Errors returns all accumulated validation errors.
func (c *Collector) Errors() []ValidationError {
	return c.errors
}

// ValidateRequired returns an error if the value is empty or whitespace-only.
func ValidateRequired(field, value string) *ValidationError {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   field,
			Message: "is required",
		}
	}
	return nil
}

// ValidateMinLength returns an error if the trimmed value is shorter than min runes.
func ValidateMinLength(field, value string, min int) *ValidationError {
	if utf8.RuneCountInString(strings.TrimSpace(value)) < min {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be at least %d characters", min),
		}
	}
	return nil
}

// ValidateMaxLength returns an error if the value exceeds max runes.
func ValidateMaxLength(field, value string, max int) *ValidationError {
	if utf8.RuneCountInString(value) > max {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("exceeds maximum length of %d characters", max),
		}
	}
	return nil
}

// ValidateUTF8 returns an error if the value is not valid UTF-8.
func ValidateUTF8(field, value string) *ValidationError {
	if !utf8.ValidString(value) {
		return &ValidationError{
			Field:   field,
			Message: "must be valid UTF-8",
		}
	}
	return nil
}

// ValidateNoNullBytes returns an error if the value contains null bytes.
func ValidateNoNullBytes(field, value string) *ValidationError {
	if strings.Contains(value, "\x00") {
		return &ValidationError{
			Field:   field,
			Message: "must not contain null bytes",
		}
	}
	return nil
}

// ValidateEnum returns an error if the value is not in the allowed list.
func ValidateEnum(field, value string, allowed []string) *ValidationError {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

// ValidateRange returns an error if the value is outside [min, max].
func ValidateRange(field string, value, min, max float64) *ValidationError {
	if value < min || value > max {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be between %g and %g", min, max),
		}
	}
	return nil
}

// ValidatePositive returns an error if the value is not strictly greater than zero.
func ValidatePositive(field string, value float64) *ValidationError {
	if value <= 0 {
		return &ValidationError{
			Field:   field,
			Message: "must be greater than zero",
		}
	}
	return nil
}

// ValidateCreateInquiry validates an intake submission. The lot size is
// validated in its submitted unit; conversion to acres happens afterwards.
func ValidateCreateInquiry(req types.CreateInquiryRequest) []ValidationError {
	c := &Collector{}

	if err := ValidateRequired("address", req.Address); err != nil {
		c.Add(err)
	} else {
		c.Add(ValidateMinLength("address", req.Address, AddressMinLength))
		c.Add(ValidateMaxLength("address", req.Address, AddressMaxLength))
	}
	c.Add(ValidateUTF8("address", req.Address))
	c.Add(ValidateNoNullBytes("address", req.Address))

	if err := ValidatePositive("lot_size", req.LotSize); err != nil {
		c.Add(err)
	} else {
		c.Add(ValidateRange("lot_size", req.LotSize, LotSizeMin, LotSizeMax))
	}

	if req.LotSizeUnit != "" {
		c.Add(ValidateEnum("lot_size_unit", req.LotSizeUnit, LotSizeUnits))
	}

	c.Add(ValidateMaxLength("user_context", req.UserContext, ContextMaxLength))
	c.Add(ValidateUTF8("user_context", req.UserContext))
	c.Add(ValidateNoNullBytes("user_context", req.UserContext))

	return c.Errors()
}

// ValidateAnswer validates a questionnaire response. Every step requires a
// substantive answer regardless of its presentation metadata.
func ValidateAnswer(response string) []ValidationError {
	c := &Collector{}

	if err := ValidateRequired("response", response); err != nil {
		c.Add(err)
	} else {
		c.Add(ValidateMinLength("response", response, ResponseMinLength))
	}
	c.Add(ValidateMaxLength("response", response, ResponseMaxLength))
	c.Add(ValidateUTF8("response", response))
	c.Add(ValidateNoNullBytes("response", response))

	return c.Errors()
}

// ValidateULID returns an error if the value is not a valid ULID format.
// ULIDs are 26 characters using Crockford Base32 (excludes I, L, O, U).
func ValidateULID(field, value string) *ValidationError {
	if len(value) != 26 {
		return &ValidationError{
			Field:   field,
			Message: "must be a valid ULID (26 characters)",
		}
	}

	// Crockford Base32 alphabet: 0123456789ABCDEFGHJKMNPQRSTVWXYZ
	// Excludes: I, L, O, U (to avoid confusion)
	const crockfordBase32 = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"
	for _, r := range value {
		upper := strings.ToUpper(string(r))
		if !strings.Contains(crockfordBase32, upper) {
			return &ValidationError{
				Field:   field,
				Message: "must be a valid ULID (invalid character)",
			}
		}
	}
	return nil
}
