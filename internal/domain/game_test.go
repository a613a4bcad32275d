package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameDocument_AbsentVersusEmptySlices(t *testing.T) {
	var doc GameDocument
	require.NoError(t, json.Unmarshal([]byte(`{"display_name":"Portal 2","tags":[]}`), &doc))

	assert.NotNil(t, doc.Tags)
	assert.Empty(t, doc.Tags)
	assert.Nil(t, doc.Genres)
	assert.Nil(t, AttributeValues(doc, AttributeGenre))
	assert.NotNil(t, AttributeValues(doc, AttributeTag))
}

func TestGamePatch_ShouldClear(t *testing.T) {
	patch := GamePatch{Clear: []string{"developer", "release_year"}}
	assert.True(t, patch.ShouldClear("developer"))
	assert.True(t, patch.ShouldClear("release_year"))
	assert.False(t, patch.ShouldClear("publisher"))
	assert.False(t, GamePatch{}.ShouldClear("developer"))
}

func TestAttributeValues_CoversEveryAttribute(t *testing.T) {
	doc := GameDocument{
		Platforms:        []string{"pc"},
		Genres:           []string{"rpg"},
		Tags:             []string{"indie"},
		MultiplayerModes: []string{"co-op"},
		InputMethods:     []string{"controller"},
	}
	for _, attr := range Attributes {
		assert.Len(t, AttributeValues(doc, attr), 1, "attribute %s", attr)
	}
}
