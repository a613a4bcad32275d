package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvickery/gamedex/internal/catalog/catalogtest"
	"github.com/rvickery/gamedex/internal/domain"
)

func strPtr(s string) *string     { return &s }
func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }

func newTestEngine() (*UpsertEngine, *catalogtest.Store) {
	store := catalogtest.New()
	return NewUpsertEngine(store, nil), store
}

func TestAddGame_InsertsWithNormalizedNameAndDecade(t *testing.T) {
	engine, store := newTestEngine()
	ctx := context.Background()

	res, err := engine.AddGame(ctx, domain.GameDocument{
		DisplayName: strPtr("  The Witcher 3  "),
		ReleaseYear: intPtr(2015),
		Tags:        []string{"rpg", "open-world"},
	})
	require.NoError(t, err)
	assert.True(t, res.Inserted)

	game, found, err := store.Games().GetByNormalizedName(ctx, "the witcher 3")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "  The Witcher 3  ", game.DisplayName)
	require.NotNil(t, game.ReleaseDecade)
	assert.Equal(t, 2010, *game.ReleaseDecade)

	rows, err := store.Attributes().ListByGame(ctx, domain.AttributeTag, game.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].ReleaseDecade)
	assert.Equal(t, 2010, *rows[0].ReleaseDecade)
}

func TestAddGame_IdempotentOnNormalizedName(t *testing.T) {
	engine, store := newTestEngine()
	ctx := context.Background()

	first, err := engine.AddGame(ctx, domain.GameDocument{DisplayName: strPtr("Portal 2")})
	require.NoError(t, err)
	require.True(t, first.Inserted)

	second, err := engine.AddGame(ctx, domain.GameDocument{DisplayName: strPtr("portal 2")})
	require.NoError(t, err)
	assert.False(t, second.Inserted)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.GamesByID, 1)
}

func TestAddGame_ExistingStillAttachesAliases(t *testing.T) {
	engine, store := newTestEngine()
	ctx := context.Background()

	first, err := engine.AddGame(ctx, domain.GameDocument{DisplayName: strPtr("Doom")})
	require.NoError(t, err)

	second, err := engine.AddGame(ctx, domain.GameDocument{
		DisplayName: strPtr("DOOM"),
		Aliases:     []string{"Doom 1993", "doom classic"},
	})
	require.NoError(t, err)
	assert.False(t, second.Inserted)
	assert.Equal(t, 2, second.AliasesAttached)

	aliases, err := store.Aliases().ListByGame(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, aliases, 2)
	assert.Equal(t, "doom 1993", aliases[0].Alias)
}

func TestAddGame_AliasAttachmentDeduplicates(t *testing.T) {
	engine, store := newTestEngine()
	ctx := context.Background()

	res, err := engine.AddGame(ctx, domain.GameDocument{
		DisplayName: strPtr("Metal Gear Solid"),
		Aliases:     []string{"MGS", "mgs"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.AliasesAttached)

	_, err = engine.AddGame(ctx, domain.GameDocument{
		DisplayName: strPtr("Metal Gear Solid"),
		Aliases:     []string{"MGS"},
	})
	require.NoError(t, err)

	aliases, err := store.Aliases().ListByGame(ctx, res.ID)
	require.NoError(t, err)
	assert.Len(t, aliases, 1)
}

func TestAddGame_ResolvesParentByExactNameOnly(t *testing.T) {
	engine, store := newTestEngine()
	ctx := context.Background()

	parent, err := engine.AddGame(ctx, domain.GameDocument{DisplayName: strPtr("The Witcher 3")})
	require.NoError(t, err)

	child, err := engine.AddGame(ctx, domain.GameDocument{
		DisplayName: strPtr("Blood and Wine"),
		ParentGame:  strPtr("The Witcher 3"),
	})
	require.NoError(t, err)

	game, _, err := store.Games().GetByID(ctx, child.ID)
	require.NoError(t, err)
	require.NotNil(t, game.ParentGameID)
	assert.Equal(t, parent.ID, *game.ParentGameID)

	// A near-miss must not resolve fuzzily; the parent stays empty.
	orphan, err := engine.AddGame(ctx, domain.GameDocument{
		DisplayName: strPtr("Hearts of Stone"),
		ParentGame:  strPtr("Witcher"),
	})
	require.NoError(t, err)
	game, _, err = store.Games().GetByID(ctx, orphan.ID)
	require.NoError(t, err)
	assert.Nil(t, game.ParentGameID)
}

func TestUpdateGame_MissingTargetIsNoOp(t *testing.T) {
	engine, _ := newTestEngine()

	res, err := engine.UpdateGame(context.Background(), "no such game", domain.GamePatch{
		GameDocument: domain.GameDocument{Rating: floatPtr(9.5)},
	})
	require.NoError(t, err)
	assert.False(t, res.Updated)
}

func TestUpdateGame_ScalarFallbackAndDecadeRecompute(t *testing.T) {
	engine, store := newTestEngine()
	ctx := context.Background()

	created, err := engine.AddGame(ctx, domain.GameDocument{
		DisplayName: strPtr("Portal 2"),
		Developer:   strPtr("Valve"),
	})
	require.NoError(t, err)

	game, _, _ := store.Games().GetByID(ctx, created.ID)
	assert.Nil(t, game.ReleaseDecade)

	res, err := engine.UpdateGame(ctx, "portal 2", domain.GamePatch{
		GameDocument: domain.GameDocument{ReleaseYear: intPtr(2011)},
	})
	require.NoError(t, err)
	require.True(t, res.Updated)

	game, _, _ = store.Games().GetByID(ctx, created.ID)
	require.NotNil(t, game.ReleaseYear)
	assert.Equal(t, 2011, *game.ReleaseYear)
	require.NotNil(t, game.ReleaseDecade)
	assert.Equal(t, 2010, *game.ReleaseDecade)
	// Unsupplied scalar fell back to the stored value.
	require.NotNil(t, game.Developer)
	assert.Equal(t, "Valve", *game.Developer)
}

func TestUpdateGame_ReplaceAllJoinSemantics(t *testing.T) {
	engine, store := newTestEngine()
	ctx := context.Background()

	created, err := engine.AddGame(ctx, domain.GameDocument{
		DisplayName: strPtr("Hades"),
		Tags:        []string{"rpg", "indie"},
	})
	require.NoError(t, err)

	res, err := engine.UpdateGame(ctx, "hades", domain.GamePatch{
		GameDocument: domain.GameDocument{Tags: []string{"roguelike"}},
	})
	require.NoError(t, err)
	require.True(t, res.Updated)

	rows, err := store.Attributes().ListByGame(ctx, domain.AttributeTag, created.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "roguelike", rows[0].Value)

	// Omitting the field leaves the rows untouched.
	_, err = engine.UpdateGame(ctx, "hades", domain.GamePatch{
		GameDocument: domain.GameDocument{Rating: floatPtr(9.0)},
	})
	require.NoError(t, err)

	rows, err = store.Attributes().ListByGame(ctx, domain.AttributeTag, created.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "roguelike", rows[0].Value)

	// An explicitly empty array clears everything.
	_, err = engine.UpdateGame(ctx, "hades", domain.GamePatch{
		GameDocument: domain.GameDocument{Tags: []string{}},
	})
	require.NoError(t, err)

	rows, err = store.Attributes().ListByGame(ctx, domain.AttributeTag, created.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestUpdateGame_PortalTwoScenario(t *testing.T) {
	engine, store := newTestEngine()
	ctx := context.Background()

	created, err := engine.AddGame(ctx, domain.GameDocument{DisplayName: strPtr("Portal 2")})
	require.NoError(t, err)

	_, err = engine.UpdateGame(ctx, "portal 2", domain.GamePatch{
		GameDocument: domain.GameDocument{ReleaseYear: intPtr(2011)},
	})
	require.NoError(t, err)

	_, err = engine.UpdateGame(ctx, "portal 2", domain.GamePatch{
		GameDocument: domain.GameDocument{Tags: []string{"puzzle", "sci-fi"}},
	})
	require.NoError(t, err)

	tags, err := store.Attributes().ListByGame(ctx, domain.AttributeTag, created.ID)
	require.NoError(t, err)
	assert.Len(t, tags, 2)

	// Genre was never supplied, so no genre rows exist.
	genres, err := store.Attributes().ListByGame(ctx, domain.AttributeGenre, created.ID)
	require.NoError(t, err)
	assert.Empty(t, genres)

	// The tag rows picked up the year set by the earlier update.
	require.NotNil(t, tags[0].ReleaseYear)
	assert.Equal(t, 2011, *tags[0].ReleaseYear)
	require.NotNil(t, tags[0].ReleaseDecade)
	assert.Equal(t, 2010, *tags[0].ReleaseDecade)
}

func TestUpdateGame_ClearFields(t *testing.T) {
	engine, store := newTestEngine()
	ctx := context.Background()

	created, err := engine.AddGame(ctx, domain.GameDocument{
		DisplayName: strPtr("Celeste"),
		Developer:   strPtr("Extremely OK Games"),
		ReleaseYear: intPtr(2018),
	})
	require.NoError(t, err)

	res, err := engine.UpdateGame(ctx, "celeste", domain.GamePatch{
		Clear: []string{"developer", "release_year"},
	})
	require.NoError(t, err)
	require.True(t, res.Updated)

	game, _, _ := store.Games().GetByID(ctx, created.ID)
	assert.Nil(t, game.Developer)
	assert.Nil(t, game.ReleaseYear)
	// The derived decade follows the cleared year.
	assert.Nil(t, game.ReleaseDecade)
}

func TestUpdateGame_RefusesParentCycle(t *testing.T) {
	engine, store := newTestEngine()
	ctx := context.Background()

	a, err := engine.AddGame(ctx, domain.GameDocument{DisplayName: strPtr("Base Game")})
	require.NoError(t, err)
	_, err = engine.AddGame(ctx, domain.GameDocument{
		DisplayName: strPtr("Expansion"),
		ParentGame:  strPtr("base game"),
	})
	require.NoError(t, err)

	res, err := engine.UpdateGame(ctx, "base game", domain.GamePatch{
		GameDocument: domain.GameDocument{ParentGame: strPtr("expansion")},
	})
	require.NoError(t, err)
	require.True(t, res.Updated)
	assert.True(t, res.ParentRefused)

	game, _, _ := store.Games().GetByID(ctx, a.ID)
	assert.Nil(t, game.ParentGameID)
}

func TestUpdateGame_RefusesParentBeyondDepthCap(t *testing.T) {
	engine, store := newTestEngine()
	ctx := context.Background()

	// A chain deeper than the ancestor walk allows reads as a cycle.
	_, err := engine.AddGame(ctx, domain.GameDocument{DisplayName: strPtr("Link 0")})
	require.NoError(t, err)
	for i := 1; i <= maxParentDepth; i++ {
		_, err = engine.AddGame(ctx, domain.GameDocument{
			DisplayName: strPtr(fmt.Sprintf("Link %d", i)),
			ParentGame:  strPtr(fmt.Sprintf("link %d", i-1)),
		})
		require.NoError(t, err)
	}

	created, err := engine.AddGame(ctx, domain.GameDocument{DisplayName: strPtr("Standalone")})
	require.NoError(t, err)

	res, err := engine.UpdateGame(ctx, "standalone", domain.GamePatch{
		GameDocument: domain.GameDocument{ParentGame: strPtr(fmt.Sprintf("link %d", maxParentDepth))},
	})
	require.NoError(t, err)
	require.True(t, res.Updated)
	assert.True(t, res.ParentRefused)

	game, _, _ := store.Games().GetByID(ctx, created.ID)
	assert.Nil(t, game.ParentGameID)
}

func TestUpdateGame_AliasReplaceAll(t *testing.T) {
	engine, store := newTestEngine()
	ctx := context.Background()

	created, err := engine.AddGame(ctx, domain.GameDocument{
		DisplayName: strPtr("Final Fantasy VII"),
		Aliases:     []string{"ff7", "ffvii"},
	})
	require.NoError(t, err)

	_, err = engine.UpdateGame(ctx, "final fantasy vii", domain.GamePatch{
		GameDocument: domain.GameDocument{Aliases: []string{"FF7 Remake Original"}},
	})
	require.NoError(t, err)

	aliases, err := store.Aliases().ListByGame(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, aliases, 1)
	assert.Equal(t, "ff7 remake original", aliases[0].Alias)
}

func TestUpsertAliases_UnresolvedTitleWritesNothing(t *testing.T) {
	engine, store := newTestEngine()

	res, err := engine.UpsertAliases(context.Background(), "botw", []string{"breath of the wild"}, nil)
	require.NoError(t, err)
	assert.Nil(t, res.GameID)
	assert.Zero(t, res.Upserted)
	assert.Empty(t, store.AliasRows)
}

func TestUpsertAliases_AttachesAndCountsOnlyNewRows(t *testing.T) {
	engine, _ := newTestEngine()
	ctx := context.Background()

	created, err := engine.AddGame(ctx, domain.GameDocument{
		DisplayName: strPtr("The Legend of Zelda: Breath of the Wild"),
	})
	require.NoError(t, err)

	res, err := engine.UpsertAliases(ctx, "The Legend of Zelda: Breath of the Wild", []string{"botw", "zelda botw"}, nil)
	require.NoError(t, err)
	require.NotNil(t, res.GameID)
	assert.Equal(t, created.ID, *res.GameID)
	assert.Equal(t, 2, res.Upserted)

	// Re-attachment is a silent skip.
	res, err = engine.UpsertAliases(ctx, "the legend of zelda: breath of the wild", []string{"botw"}, nil)
	require.NoError(t, err)
	assert.Zero(t, res.Upserted)
}

func TestUpsertAliases_ResolvesThroughAliasIndex(t *testing.T) {
	engine, _ := newTestEngine()
	ctx := context.Background()

	created, err := engine.AddGame(ctx, domain.GameDocument{
		DisplayName: strPtr("Grand Theft Auto V"),
		Aliases:     []string{"gta 5"},
	})
	require.NoError(t, err)

	res, err := engine.UpsertAliases(ctx, "GTA 5", []string{"gta v"}, nil)
	require.NoError(t, err)
	require.NotNil(t, res.GameID)
	assert.Equal(t, created.ID, *res.GameID)
	assert.Equal(t, 1, res.Upserted)
}
