// Package validator checks incoming game documents before they reach the
// catalog. Errors block a document; warnings ride along for callers that
// surface them.
package validator

import (
	"fmt"
	"strings"

	"github.com/rvickery/gamedex/internal/domain"
)

// DocumentValidator validates game documents and patches.
type DocumentValidator struct{}

// NewDocumentValidator creates a new document validator.
func NewDocumentValidator() *DocumentValidator {
	return &DocumentValidator{}
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// ValidationResult represents the result of validation
type ValidationResult struct {
	IsValid  bool              `json:"is_valid"`
	Errors   []ValidationError `json:"errors"`
	Warnings []ValidationError `json:"warnings"`
}

const (
	minReleaseYear = 1950
	maxReleaseYear = 2100
)

// clearableFields lists the field names a patch may clear.
var clearableFields = map[string]bool{
	"summary": true, "franchise": true, "developer": true, "publisher": true,
	"age_rating": true, "setting": true, "perspective": true, "world_type": true,
	"price_model": true, "story_focus": true, "release_year": true,
	"playtime_hours": true, "rating": true, "has_microtransactions": true,
	"is_vr": true, "has_mods": true, "requires_online": true,
	"cross_platform": true, "is_remake_or_remaster": true, "is_dlc": true,
	"procedurally_generated": true, "parent_game": true,
}

// ValidateDocument checks a full game document as used by create.
func (v *DocumentValidator) ValidateDocument(doc domain.GameDocument) ValidationResult {
	result := ValidationResult{
		IsValid:  true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	if doc.DisplayName == nil || strings.TrimSpace(*doc.DisplayName) == "" {
		result.fail("display_name", "display_name is required", nil)
	}

	v.validateCommon(doc, &result)
	return result
}

// ValidatePatch checks a partial update document. Display name is optional
// here; Clear entries must name clearable fields.
func (v *DocumentValidator) ValidatePatch(patch domain.GamePatch) ValidationResult {
	result := ValidationResult{
		IsValid:  true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	if patch.DisplayName != nil && strings.TrimSpace(*patch.DisplayName) == "" {
		result.fail("display_name", "display_name cannot be blank", *patch.DisplayName)
	}
	for _, field := range patch.Clear {
		if !clearableFields[field] {
			result.fail("clear", fmt.Sprintf("field '%s' cannot be cleared", field), field)
		}
	}

	v.validateCommon(patch.GameDocument, &result)
	return result
}

func (v *DocumentValidator) validateCommon(doc domain.GameDocument, result *ValidationResult) {
	if doc.ReleaseYear != nil && (*doc.ReleaseYear < minReleaseYear || *doc.ReleaseYear > maxReleaseYear) {
		result.warn("release_year",
			fmt.Sprintf("release_year %d is outside %d-%d", *doc.ReleaseYear, minReleaseYear, maxReleaseYear),
			*doc.ReleaseYear)
	}
	if doc.Rating != nil && (*doc.Rating < 0 || *doc.Rating > 10) {
		result.fail("rating", "rating must be between 0 and 10", *doc.Rating)
	}
	if doc.PlaytimeHours != nil && *doc.PlaytimeHours < 0 {
		result.fail("playtime_hours", "playtime_hours cannot be negative", *doc.PlaytimeHours)
	}

	for _, attr := range domain.Attributes {
		for _, value := range domain.AttributeValues(doc, attr) {
			if strings.TrimSpace(value) == "" {
				result.fail(string(attr), fmt.Sprintf("%s values cannot be blank", attr), value)
			}
		}
	}

	blank := 0
	for _, alias := range doc.Aliases {
		if strings.TrimSpace(alias) == "" {
			blank++
		}
	}
	if blank > 0 {
		result.warn("aliases", fmt.Sprintf("%d blank aliases will be dropped", blank), nil)
	}
}

func (r *ValidationResult) fail(field, message string, value any) {
	r.IsValid = false
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message, Value: value})
}

func (r *ValidationResult) warn(field, message string, value any) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Message: message, Value: value})
}
