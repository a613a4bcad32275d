package domain

import (
	"time"

	"github.com/google/uuid"
)

// Game is the canonical catalog record. NormalizedName is the only identity
// key the engine trusts; it is unique across the whole catalog.
type Game struct {
	ID             uuid.UUID `json:"id"`
	DisplayName    string    `json:"display_name"`
	NormalizedName string    `json:"normalized_name"`

	Summary     *string `json:"summary,omitempty"`
	Franchise   *string `json:"franchise,omitempty"`
	Developer   *string `json:"developer,omitempty"`
	Publisher   *string `json:"publisher,omitempty"`
	AgeRating   *string `json:"age_rating,omitempty"`
	Setting     *string `json:"setting,omitempty"`
	Perspective *string `json:"perspective,omitempty"`
	WorldType   *string `json:"world_type,omitempty"`
	PriceModel  *string `json:"price_model,omitempty"`
	StoryFocus  *string `json:"story_focus,omitempty"`

	ReleaseYear *int `json:"release_year,omitempty"`
	// ReleaseDecade is derived from ReleaseYear on every write; it is never
	// taken from input.
	ReleaseDecade *int `json:"release_decade,omitempty"`

	PlaytimeHours *float64 `json:"playtime_hours,omitempty"`
	Rating        *float64 `json:"rating,omitempty"`

	HasMicrotransactions  *bool `json:"has_microtransactions,omitempty"`
	IsVR                  *bool `json:"is_vr,omitempty"`
	HasMods               *bool `json:"has_mods,omitempty"`
	RequiresOnline        *bool `json:"requires_online,omitempty"`
	CrossPlatform         *bool `json:"cross_platform,omitempty"`
	IsRemakeOrRemaster    *bool `json:"is_remake_or_remaster,omitempty"`
	IsDLC                 *bool `json:"is_dlc,omitempty"`
	ProcedurallyGenerated *bool `json:"procedurally_generated,omitempty"`

	ParentGameID *uuid.UUID `json:"parent_game,omitempty"`

	// Multi-valued attributes are denormalized on the record and mirrored
	// into one join table each. A nil slice means the attribute was never
	// supplied; an empty non-nil slice is a supplied-but-empty value.
	Platforms        []string `json:"platforms,omitempty"`
	Genres           []string `json:"genre,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	MultiplayerModes []string `json:"multiplayer_type,omitempty"`
	InputMethods     []string `json:"input_methods,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GameDocument is a loosely-specified incoming document, as produced by bulk
// ingestion or interactive edits. Pointer scalars distinguish absent from
// supplied; slice fields distinguish absent (nil) from supplied-empty.
type GameDocument struct {
	DisplayName    *string `json:"display_name"`
	NormalizedName *string `json:"normalized_name"`

	Summary     *string `json:"summary"`
	Franchise   *string `json:"franchise"`
	Developer   *string `json:"developer"`
	Publisher   *string `json:"publisher"`
	AgeRating   *string `json:"age_rating"`
	Setting     *string `json:"setting"`
	Perspective *string `json:"perspective"`
	WorldType   *string `json:"world_type"`
	PriceModel  *string `json:"price_model"`
	StoryFocus  *string `json:"story_focus"`

	ReleaseYear   *int     `json:"release_year"`
	PlaytimeHours *float64 `json:"playtime_hours"`
	Rating        *float64 `json:"rating"`

	HasMicrotransactions  *bool `json:"has_microtransactions"`
	IsVR                  *bool `json:"is_vr"`
	HasMods               *bool `json:"has_mods"`
	RequiresOnline        *bool `json:"requires_online"`
	CrossPlatform         *bool `json:"cross_platform"`
	IsRemakeOrRemaster    *bool `json:"is_remake_or_remaster"`
	IsDLC                 *bool `json:"is_dlc"`
	ProcedurallyGenerated *bool `json:"procedurally_generated"`

	// ParentGame is either a game ID or a display/normalized name. Name
	// references resolve by exact normalized name only, never fuzzily.
	ParentGame *string `json:"parent_game"`

	Platforms        []string `json:"platforms"`
	Genres           []string `json:"genre"`
	Tags             []string `json:"tags"`
	MultiplayerModes []string `json:"multiplayer_type"`
	InputMethods     []string `json:"input_methods"`

	Aliases []string `json:"aliases"`
}

// GamePatch is a partial update document. Field semantics are two-state
// (non-nil wins, nil keeps the stored value) plus an explicit Clear list for
// the third state: field names in Clear are nulled out even though their
// pointer is nil.
type GamePatch struct {
	GameDocument
	Clear []string `json:"clear,omitempty"`
}

// ShouldClear reports whether the patch asks for the named field to be
// cleared.
func (p GamePatch) ShouldClear(field string) bool {
	for _, f := range p.Clear {
		if f == field {
			return true
		}
	}
	return false
}

// Alias is an alternate normalized string pointing at a game. The same alias
// string may point at several games, but never twice at the same one.
type Alias struct {
	ID     int64     `json:"id"`
	GameID uuid.UUID `json:"game_id"`
	Alias  string    `json:"alias"`
	Notes  *string   `json:"notes,omitempty"`
}

// UpsertResult reports the outcome of AddGame. Inserted is false when the
// normalized name already existed; ID then carries the existing identity.
type UpsertResult struct {
	ID              uuid.UUID `json:"id"`
	Inserted        bool      `json:"inserted"`
	AliasesAttached int       `json:"aliases_attached,omitempty"`
}

// UpdateResult reports the outcome of UpdateGame. Updated is false when the
// target did not resolve; updates never create. ParentRefused is set when a
// requested parent assignment was dropped because it would create a cycle.
type UpdateResult struct {
	ID            uuid.UUID `json:"id"`
	Updated       bool      `json:"updated"`
	ParentRefused bool      `json:"parent_refused,omitempty"`
}

// AliasResult reports the outcome of UpsertAliases. A nil GameID with zero
// Upserted means the title resolved to nothing and no rows were written.
type AliasResult struct {
	GameID   *uuid.UUID `json:"id,omitempty"`
	Upserted int        `json:"upserted"`
}
