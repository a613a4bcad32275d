package domain

import "github.com/google/uuid"

// Attribute identifies one of the multi-valued game attributes that are
// mirrored into join tables.
type Attribute string

const (
	AttributePlatform        Attribute = "platform"
	AttributeGenre           Attribute = "genre"
	AttributeTag             Attribute = "tag"
	AttributeMultiplayerMode Attribute = "multiplayer_mode"
	AttributeInputMethod     Attribute = "input_method"
)

// Attributes lists every join-table-backed attribute in a stable order.
var Attributes = []Attribute{
	AttributePlatform,
	AttributeGenre,
	AttributeTag,
	AttributeMultiplayerMode,
	AttributeInputMethod,
}

// AttributeValues extracts the slice for one attribute from a document.
// A nil result means the document did not supply the attribute at all.
func AttributeValues(doc GameDocument, attr Attribute) []string {
	switch attr {
	case AttributePlatform:
		return doc.Platforms
	case AttributeGenre:
		return doc.Genres
	case AttributeTag:
		return doc.Tags
	case AttributeMultiplayerMode:
		return doc.MultiplayerModes
	case AttributeInputMethod:
		return doc.InputMethods
	default:
		return nil
	}
}

// JoinRow is one denormalized (game, attribute value) pair. ReleaseYear and
// ReleaseDecade are copied from the game so attribute+era listings need no
// join at query time.
type JoinRow struct {
	ID            int64     `json:"id"`
	GameID        uuid.UUID `json:"game_id"`
	Value         string    `json:"value"`
	ReleaseYear   *int      `json:"release_year,omitempty"`
	ReleaseDecade *int      `json:"release_decade,omitempty"`
}
