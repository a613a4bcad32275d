package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rvickery/gamedex/internal/domain"
	"github.com/rvickery/gamedex/internal/repository"
)

// maxParentDepth bounds the ancestor walk during cycle checks. Parent chains
// are expected to be shallow (DLC -> base game); anything deeper is treated
// as a cycle.
const maxParentDepth = 64

// UpsertEngine reconciles incoming documents against the catalog. It is the
// only writer; every operation runs inside a single store transaction so a
// replace-all reconciliation is atomic.
type UpsertEngine struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewUpsertEngine creates the catalog's write path.
func NewUpsertEngine(store repository.Store, logger *zap.Logger) *UpsertEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UpsertEngine{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// AddGame creates a game or reports the existing one. Creation is idempotent
// on normalized name: a second call with the same name is a benign no-op for
// the entity fields, though incoming aliases are still attached to the
// existing record.
func (e *UpsertEngine) AddGame(ctx context.Context, doc domain.GameDocument) (domain.UpsertResult, error) {
	var result domain.UpsertResult

	displayName := ""
	if doc.DisplayName != nil {
		displayName = *doc.DisplayName
	}

	normalizedName := domain.NormalizeNameValue(displayName)
	if doc.NormalizedName != nil {
		normalizedName = domain.NormalizeNameValue(*doc.NormalizedName)
	}

	err := e.store.WithTx(ctx, func(s repository.Store) error {
		existing, found, err := s.Games().GetByNormalizedName(ctx, normalizedName)
		if err != nil {
			return err
		}
		if found {
			attached, err := e.attachAliases(ctx, s, existing.ID, doc.Aliases, nil)
			if err != nil {
				return err
			}
			result = domain.UpsertResult{ID: existing.ID, Inserted: false, AliasesAttached: attached}
			return nil
		}

		parentID, err := e.resolveParent(ctx, s, doc.ParentGame)
		if err != nil {
			return err
		}

		now := e.now()
		decade := domain.DeriveDecade(doc.ReleaseYear)
		game := domain.Game{
			DisplayName:           displayName,
			NormalizedName:        normalizedName,
			Summary:               doc.Summary,
			Franchise:             doc.Franchise,
			Developer:             doc.Developer,
			Publisher:             doc.Publisher,
			AgeRating:             doc.AgeRating,
			Setting:               doc.Setting,
			Perspective:           doc.Perspective,
			WorldType:             doc.WorldType,
			PriceModel:            doc.PriceModel,
			StoryFocus:            doc.StoryFocus,
			ReleaseYear:           doc.ReleaseYear,
			ReleaseDecade:         decade,
			PlaytimeHours:         doc.PlaytimeHours,
			Rating:                doc.Rating,
			HasMicrotransactions:  doc.HasMicrotransactions,
			IsVR:                  doc.IsVR,
			HasMods:               doc.HasMods,
			RequiresOnline:        doc.RequiresOnline,
			CrossPlatform:         doc.CrossPlatform,
			IsRemakeOrRemaster:    doc.IsRemakeOrRemaster,
			IsDLC:                 doc.IsDLC,
			ProcedurallyGenerated: doc.ProcedurallyGenerated,
			ParentGameID:          parentID,
			Platforms:             doc.Platforms,
			Genres:                doc.Genres,
			Tags:                  doc.Tags,
			MultiplayerModes:      doc.MultiplayerModes,
			InputMethods:          doc.InputMethods,
			CreatedAt:             now,
			UpdatedAt:             now,
		}

		created, inserted, err := s.Games().Insert(ctx, game)
		if err != nil {
			return err
		}
		if !inserted {
			// Lost a concurrent create on the same normalized name; the
			// unique constraint picked the winner.
			attached, err := e.attachAliases(ctx, s, created.ID, doc.Aliases, nil)
			if err != nil {
				return err
			}
			result = domain.UpsertResult{ID: created.ID, Inserted: false, AliasesAttached: attached}
			return nil
		}

		for _, attr := range domain.Attributes {
			values := domain.AttributeValues(doc, attr)
			if values == nil {
				continue
			}
			if err := s.Attributes().Insert(ctx, attr, created.ID, values, doc.ReleaseYear, decade); err != nil {
				return err
			}
		}

		attached, err := e.attachAliases(ctx, s, created.ID, doc.Aliases, nil)
		if err != nil {
			return err
		}

		result = domain.UpsertResult{ID: created.ID, Inserted: true, AliasesAttached: attached}
		return nil
	})
	if err != nil {
		return domain.UpsertResult{}, err
	}

	e.logger.Debug("add game",
		zap.String("normalized_name", normalizedName),
		zap.Bool("inserted", result.Inserted))
	return result, nil
}

// UpdateGame patches an existing game. A target that does not resolve is a
// structured no-op, never a create. Scalar fields fall back to the stored
// value unless named in patch.Clear; multi-valued attributes and aliases are
// replaced wholesale only when the patch supplies them.
func (e *UpsertEngine) UpdateGame(ctx context.Context, ref string, patch domain.GamePatch) (domain.UpdateResult, error) {
	var result domain.UpdateResult

	err := e.store.WithTx(ctx, func(s repository.Store) error {
		resolver := NewResolver(s)
		existing, found, err := resolver.Resolve(ctx, ref)
		if err != nil {
			return err
		}
		if !found {
			result = domain.UpdateResult{Updated: false}
			return nil
		}

		merged := existing

		if patch.DisplayName != nil {
			merged.DisplayName = *patch.DisplayName
		}
		merged.NormalizedName = resolveNormalizedName(patch, existing)

		merged.Summary = mergeString(patch, "summary", patch.Summary, existing.Summary)
		merged.Franchise = mergeString(patch, "franchise", patch.Franchise, existing.Franchise)
		merged.Developer = mergeString(patch, "developer", patch.Developer, existing.Developer)
		merged.Publisher = mergeString(patch, "publisher", patch.Publisher, existing.Publisher)
		merged.AgeRating = mergeString(patch, "age_rating", patch.AgeRating, existing.AgeRating)
		merged.Setting = mergeString(patch, "setting", patch.Setting, existing.Setting)
		merged.Perspective = mergeString(patch, "perspective", patch.Perspective, existing.Perspective)
		merged.WorldType = mergeString(patch, "world_type", patch.WorldType, existing.WorldType)
		merged.PriceModel = mergeString(patch, "price_model", patch.PriceModel, existing.PriceModel)
		merged.StoryFocus = mergeString(patch, "story_focus", patch.StoryFocus, existing.StoryFocus)

		merged.ReleaseYear = mergeInt(patch, "release_year", patch.ReleaseYear, existing.ReleaseYear)
		merged.ReleaseDecade = domain.DeriveDecade(merged.ReleaseYear)

		merged.PlaytimeHours = mergeFloat(patch, "playtime_hours", patch.PlaytimeHours, existing.PlaytimeHours)
		merged.Rating = mergeFloat(patch, "rating", patch.Rating, existing.Rating)

		merged.HasMicrotransactions = mergeBool(patch, "has_microtransactions", patch.HasMicrotransactions, existing.HasMicrotransactions)
		merged.IsVR = mergeBool(patch, "is_vr", patch.IsVR, existing.IsVR)
		merged.HasMods = mergeBool(patch, "has_mods", patch.HasMods, existing.HasMods)
		merged.RequiresOnline = mergeBool(patch, "requires_online", patch.RequiresOnline, existing.RequiresOnline)
		merged.CrossPlatform = mergeBool(patch, "cross_platform", patch.CrossPlatform, existing.CrossPlatform)
		merged.IsRemakeOrRemaster = mergeBool(patch, "is_remake_or_remaster", patch.IsRemakeOrRemaster, existing.IsRemakeOrRemaster)
		merged.IsDLC = mergeBool(patch, "is_dlc", patch.IsDLC, existing.IsDLC)
		merged.ProcedurallyGenerated = mergeBool(patch, "procedurally_generated", patch.ProcedurallyGenerated, existing.ProcedurallyGenerated)

		parentRefused := false
		switch {
		case patch.ShouldClear("parent_game"):
			merged.ParentGameID = nil
		case patch.ParentGame != nil:
			parentID, err := e.resolveParent(ctx, s, patch.ParentGame)
			if err != nil {
				return err
			}
			if parentID != nil {
				cyclic, err := e.wouldCycle(ctx, s, existing.ID, *parentID)
				if err != nil {
					return err
				}
				if cyclic {
					parentRefused = true
				} else {
					merged.ParentGameID = parentID
				}
			}
		}

		yearChanged := !intPtrEqual(merged.ReleaseYear, existing.ReleaseYear)

		for _, attr := range domain.Attributes {
			values := domain.AttributeValues(patch.GameDocument, attr)
			if values == nil {
				// Attribute absent from the patch: join rows stay, but the
				// denormalized era copies must track the entity.
				if yearChanged {
					if err := s.Attributes().UpdateEra(ctx, attr, existing.ID, merged.ReleaseYear, merged.ReleaseDecade); err != nil {
						return err
					}
				}
				continue
			}
			if err := s.Attributes().DeleteByGame(ctx, attr, existing.ID); err != nil {
				return err
			}
			if err := s.Attributes().Insert(ctx, attr, existing.ID, values, merged.ReleaseYear, merged.ReleaseDecade); err != nil {
				return err
			}
			setAttributeValues(&merged, attr, values)
		}

		if patch.Aliases != nil {
			if err := s.Aliases().DeleteByGame(ctx, existing.ID); err != nil {
				return err
			}
			if _, err := e.attachAliases(ctx, s, existing.ID, patch.Aliases, nil); err != nil {
				return err
			}
		}

		merged.UpdatedAt = e.now()
		if _, err := s.Games().Update(ctx, merged); err != nil {
			return err
		}

		result = domain.UpdateResult{ID: existing.ID, Updated: true, ParentRefused: parentRefused}
		return nil
	})
	if err != nil {
		return domain.UpdateResult{}, err
	}

	e.logger.Debug("update game",
		zap.String("ref", ref),
		zap.Bool("updated", result.Updated))
	return result, nil
}

// UpsertAliases attaches aliases to the game a title resolves to. A title
// that resolves to nothing reports zero upserts and writes no rows.
func (e *UpsertEngine) UpsertAliases(ctx context.Context, title string, aliases []string, notes *string) (domain.AliasResult, error) {
	var result domain.AliasResult

	err := e.store.WithTx(ctx, func(s repository.Store) error {
		resolver := NewResolver(s)
		game, found, err := resolver.ResolveFuzzy(ctx, title)
		if err != nil {
			return err
		}
		if !found {
			result = domain.AliasResult{}
			return nil
		}

		upserted, err := e.attachAliases(ctx, s, game.ID, aliases, notes)
		if err != nil {
			return err
		}
		id := game.ID
		result = domain.AliasResult{GameID: &id, Upserted: upserted}
		return nil
	})
	if err != nil {
		return domain.AliasResult{}, err
	}

	e.logger.Debug("upsert aliases",
		zap.String("title", title),
		zap.Int("upserted", result.Upserted))
	return result, nil
}

// attachAliases normalizes and inserts aliases, counting only rows actually
// written. The store constraint makes re-attachment a silent skip.
func (e *UpsertEngine) attachAliases(ctx context.Context, s repository.Store, gameID uuid.UUID, aliases []string, notes *string) (int, error) {
	attached := 0
	for _, alias := range aliases {
		normalized := domain.NormalizeNameValue(alias)
		if normalized == "" {
			continue
		}
		inserted, err := s.Aliases().Insert(ctx, gameID, normalized, notes)
		if err != nil {
			return attached, err
		}
		if inserted {
			attached++
		}
	}
	return attached, nil
}

// resolveParent turns a parent reference into an identity. IDs are trusted
// as-is; names resolve by exact normalized name only, never fuzzily. An
// unresolvable reference leaves the parent empty.
func (e *UpsertEngine) resolveParent(ctx context.Context, s repository.Store, ref *string) (*uuid.UUID, error) {
	if ref == nil {
		return nil, nil
	}
	if id, err := uuid.Parse(*ref); err == nil {
		return &id, nil
	}

	normalized := domain.NormalizeNameValue(*ref)
	parent, found, err := s.Games().GetByNormalizedName(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &parent.ID, nil
}

// wouldCycle walks candidate's ancestor chain looking for target.
func (e *UpsertEngine) wouldCycle(ctx context.Context, s repository.Store, target, candidate uuid.UUID) (bool, error) {
	if candidate == target {
		return true, nil
	}

	current := candidate
	for depth := 0; depth < maxParentDepth; depth++ {
		game, found, err := s.Games().GetByID(ctx, current)
		if err != nil {
			return false, err
		}
		if !found || game.ParentGameID == nil {
			return false, nil
		}
		if *game.ParentGameID == target {
			return true, nil
		}
		current = *game.ParentGameID
	}
	// A chain this deep is treated as a cycle and the parent is refused.
	return true, nil
}

func resolveNormalizedName(patch domain.GamePatch, existing domain.Game) string {
	if patch.NormalizedName != nil {
		return domain.NormalizeNameValue(*patch.NormalizedName)
	}
	if patch.DisplayName != nil {
		return domain.NormalizeNameValue(*patch.DisplayName)
	}
	return existing.NormalizedName
}

func mergeString(patch domain.GamePatch, field string, incoming, existing *string) *string {
	if patch.ShouldClear(field) {
		return nil
	}
	if incoming != nil {
		return incoming
	}
	return existing
}

func mergeInt(patch domain.GamePatch, field string, incoming, existing *int) *int {
	if patch.ShouldClear(field) {
		return nil
	}
	if incoming != nil {
		return incoming
	}
	return existing
}

func mergeFloat(patch domain.GamePatch, field string, incoming, existing *float64) *float64 {
	if patch.ShouldClear(field) {
		return nil
	}
	if incoming != nil {
		return incoming
	}
	return existing
}

func mergeBool(patch domain.GamePatch, field string, incoming, existing *bool) *bool {
	if patch.ShouldClear(field) {
		return nil
	}
	if incoming != nil {
		return incoming
	}
	return existing
}

func setAttributeValues(game *domain.Game, attr domain.Attribute, values []string) {
	switch attr {
	case domain.AttributePlatform:
		game.Platforms = values
	case domain.AttributeGenre:
		game.Genres = values
	case domain.AttributeTag:
		game.Tags = values
	case domain.AttributeMultiplayerMode:
		game.MultiplayerModes = values
	case domain.AttributeInputMethod:
		game.InputMethods = values
	}
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
