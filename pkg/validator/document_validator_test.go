package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvickery/gamedex/internal/domain"
)

func strPtr(s string) *string     { return &s }
func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }

func TestValidateDocument_RequiresDisplayName(t *testing.T) {
	v := NewDocumentValidator()

	result := v.ValidateDocument(domain.GameDocument{})
	require.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "display_name", result.Errors[0].Field)

	result = v.ValidateDocument(domain.GameDocument{DisplayName: strPtr("   ")})
	assert.False(t, result.IsValid)
}

func TestValidateDocument_NumericRanges(t *testing.T) {
	v := NewDocumentValidator()

	result := v.ValidateDocument(domain.GameDocument{
		DisplayName:   strPtr("Portal 2"),
		Rating:        floatPtr(11),
		PlaytimeHours: floatPtr(-1),
	})
	require.False(t, result.IsValid)
	assert.Len(t, result.Errors, 2)

	result = v.ValidateDocument(domain.GameDocument{
		DisplayName: strPtr("Portal 2"),
		ReleaseYear: intPtr(1800),
	})
	assert.True(t, result.IsValid)
	assert.Len(t, result.Warnings, 1)
}

func TestValidateDocument_BlankAttributeValues(t *testing.T) {
	v := NewDocumentValidator()

	result := v.ValidateDocument(domain.GameDocument{
		DisplayName: strPtr("Hades"),
		Tags:        []string{"roguelike", "  "},
	})
	require.False(t, result.IsValid)
	assert.Equal(t, "tag", result.Errors[0].Field)
}

func TestValidatePatch(t *testing.T) {
	v := NewDocumentValidator()

	result := v.ValidatePatch(domain.GamePatch{
		GameDocument: domain.GameDocument{Rating: floatPtr(9.5)},
		Clear:        []string{"developer"},
	})
	assert.True(t, result.IsValid)

	result = v.ValidatePatch(domain.GamePatch{Clear: []string{"display_name"}})
	require.False(t, result.IsValid)
	assert.Equal(t, "clear", result.Errors[0].Field)

	result = v.ValidatePatch(domain.GamePatch{
		GameDocument: domain.GameDocument{DisplayName: strPtr("")},
	})
	assert.False(t, result.IsValid)
}
