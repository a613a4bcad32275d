package export

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/rvickery/gamedex/internal/domain"
	"github.com/rvickery/gamedex/internal/repository"
)

// gameHeaders is the column order for the games sheet.
var gameHeaders = []string{
	"id", "display_name", "normalized_name", "summary", "franchise",
	"developer", "publisher", "age_rating", "setting", "perspective",
	"world_type", "price_model", "story_focus", "release_year",
	"release_decade", "playtime_hours", "rating", "has_microtransactions",
	"is_vr", "has_mods", "requires_online", "cross_platform",
	"is_remake_or_remaster", "is_dlc", "procedurally_generated",
	"parent_game_id", "created_at", "updated_at",
}

var joinHeaders = []string{"game_id", "value", "release_year", "release_decade"}

// Service dumps the catalog to CSV or an xlsx workbook. Games are walked in
// keyset pages so an export never holds the whole catalog in memory.
type Service struct {
	store    repository.Store
	logger   *zap.Logger
	pageSize int
}

// Option customizes a Service.
type Option func(*Service)

// WithPageSize sets the keyset page size used while walking the catalog.
func WithPageSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// NewService creates an export service reading from the given store.
func NewService(store repository.Store, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{store: store, logger: logger, pageSize: 1000}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// walkGames pages through every game in identity order.
func (s *Service) walkGames(ctx context.Context, fn func(domain.Game) error) (int, error) {
	exported := 0
	afterID := uuid.Nil
	for {
		if err := ctx.Err(); err != nil {
			return exported, err
		}
		games, err := s.store.Games().ListAll(ctx, afterID, s.pageSize)
		if err != nil {
			return exported, fmt.Errorf("list games: %w", err)
		}
		if len(games) == 0 {
			return exported, nil
		}
		for _, g := range games {
			if err := fn(g); err != nil {
				return exported, err
			}
			exported++
		}
		if len(games) < s.pageSize {
			return exported, nil
		}
		afterID = games[len(games)-1].ID
	}
}

// ExportGamesCSV streams the games table as CSV.
func (s *Service) ExportGamesCSV(ctx context.Context, w io.Writer) (int, error) {
	buffered := bufio.NewWriterSize(w, 1<<20)
	csvWriter := csv.NewWriter(buffered)

	if err := csvWriter.Write(gameHeaders); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	exported, err := s.walkGames(ctx, func(g domain.Game) error {
		if err := csvWriter.Write(gameRow(g)); err != nil {
			return fmt.Errorf("write game row: %w", err)
		}
		return nil
	})
	if err != nil {
		return exported, err
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return exported, fmt.Errorf("flush rows: %w", err)
	}
	if err := buffered.Flush(); err != nil {
		return exported, fmt.Errorf("flush buffered rows: %w", err)
	}

	s.logger.Info("csv export finished", zap.Int("rows", exported))
	return exported, nil
}

// ExportWorkbook writes an xlsx workbook: one games sheet plus one sheet per
// attribute join table.
func (s *Service) ExportWorkbook(ctx context.Context, w io.Writer) (int, error) {
	file := excelize.NewFile()
	defer func() {
		_ = file.Close()
	}()

	const gamesSheet = "games"
	if err := file.SetSheetName(file.GetSheetName(0), gamesSheet); err != nil {
		return 0, fmt.Errorf("rename sheet: %w", err)
	}

	stream, err := file.NewStreamWriter(gamesSheet)
	if err != nil {
		return 0, fmt.Errorf("open stream writer: %w", err)
	}
	if err := writeSheetRow(stream, 1, gameHeaders); err != nil {
		return 0, err
	}

	rowNo := 1
	exported, err := s.walkGames(ctx, func(g domain.Game) error {
		rowNo++
		return writeSheetRow(stream, rowNo, gameRow(g))
	})
	if err != nil {
		return exported, err
	}
	if err := stream.Flush(); err != nil {
		return exported, fmt.Errorf("flush games sheet: %w", err)
	}

	for _, attr := range domain.Attributes {
		if err := s.writeAttributeSheet(ctx, file, attr); err != nil {
			return exported, err
		}
	}

	if err := file.Write(w); err != nil {
		return exported, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("workbook export finished", zap.Int("games", exported))
	return exported, nil
}

func (s *Service) writeAttributeSheet(ctx context.Context, file *excelize.File, attr domain.Attribute) error {
	sheet := string(attr) + "s"
	if _, err := file.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	stream, err := file.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("open stream writer %s: %w", sheet, err)
	}
	if err := writeSheetRow(stream, 1, joinHeaders); err != nil {
		return err
	}

	rowNo := 1
	afterID := int64(0)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rows, err := s.store.Attributes().ListAll(ctx, attr, afterID, s.pageSize)
		if err != nil {
			return fmt.Errorf("list %s rows: %w", attr, err)
		}
		if len(rows) == 0 {
			break
		}
		for _, row := range rows {
			rowNo++
			cells := []string{
				row.GameID.String(),
				row.Value,
				formatIntPtr(row.ReleaseYear),
				formatIntPtr(row.ReleaseDecade),
			}
			if err := writeSheetRow(stream, rowNo, cells); err != nil {
				return err
			}
		}
		if len(rows) < s.pageSize {
			break
		}
		afterID = rows[len(rows)-1].ID
	}

	if err := stream.Flush(); err != nil {
		return fmt.Errorf("flush sheet %s: %w", sheet, err)
	}
	return nil
}

func writeSheetRow(stream *excelize.StreamWriter, rowNo int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNo)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := stream.SetRow(cell, cells); err != nil {
		return fmt.Errorf("write sheet row: %w", err)
	}
	return nil
}

func gameRow(g domain.Game) []string {
	return []string{
		g.ID.String(),
		g.DisplayName,
		g.NormalizedName,
		formatStrPtr(g.Summary),
		formatStrPtr(g.Franchise),
		formatStrPtr(g.Developer),
		formatStrPtr(g.Publisher),
		formatStrPtr(g.AgeRating),
		formatStrPtr(g.Setting),
		formatStrPtr(g.Perspective),
		formatStrPtr(g.WorldType),
		formatStrPtr(g.PriceModel),
		formatStrPtr(g.StoryFocus),
		formatIntPtr(g.ReleaseYear),
		formatIntPtr(g.ReleaseDecade),
		formatFloatPtr(g.PlaytimeHours),
		formatFloatPtr(g.Rating),
		formatBoolPtr(g.HasMicrotransactions),
		formatBoolPtr(g.IsVR),
		formatBoolPtr(g.HasMods),
		formatBoolPtr(g.RequiresOnline),
		formatBoolPtr(g.CrossPlatform),
		formatBoolPtr(g.IsRemakeOrRemaster),
		formatBoolPtr(g.IsDLC),
		formatBoolPtr(g.ProcedurallyGenerated),
		formatUUIDPtr(g.ParentGameID),
		g.CreatedAt.UTC().Format(time.RFC3339),
		g.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func formatStrPtr(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return strings.TrimRight(strings.TrimRight(strconv.FormatFloat(*v, 'f', 4, 64), "0"), ".")
}

func formatBoolPtr(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}

func formatUUIDPtr(v *uuid.UUID) string {
	if v == nil {
		return ""
	}
	return v.String()
}
