package ingestion

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/rvickery/gamedex/internal/catalog"
	"github.com/rvickery/gamedex/internal/domain"
	"github.com/rvickery/gamedex/pkg/validator"
)

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// maxLineBytes bounds a single NDJSON line. Summaries can be long but a line
// past this size is a malformed input, not a game document.
const maxLineBytes = 1 << 20

// Service feeds newline-delimited JSON documents into the upsert engine.
// Each line stands alone: a line that fails to decode, validate or apply is
// counted and skipped, and the batch always runs to the end of the stream.
type Service struct {
	engine    *catalog.UpsertEngine
	validator *validator.DocumentValidator
	logger    *zap.Logger
}

// NewService creates an ingestion service writing through the given engine.
func NewService(engine *catalog.UpsertEngine, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		engine:    engine,
		validator: validator.NewDocumentValidator(),
		logger:    logger,
	}
}

// Summary reports what one ingestion run did.
type Summary struct {
	Lines        int `json:"lines"`
	Inserted     int `json:"inserted"`
	Existing     int `json:"existing"`
	AliasUpserts int `json:"aliasUpserts"`
	Skipped      int `json:"skipped"`
}

// aliasDoc is the shape of an alias-only line. Title names the target game;
// it is never enough to create one.
type aliasDoc struct {
	Title   string   `json:"title"`
	Aliases []string `json:"aliases"`
	Notes   *string  `json:"notes"`
}

// Ingest consumes an NDJSON stream. Lines carrying a title plus aliases and
// no display name are routed to the alias upsert; every other decodable line
// is treated as a full game document.
func (s *Service) Ingest(ctx context.Context, r io.Reader) (Summary, error) {
	var summary Summary

	reader := bufio.NewReaderSize(r, 64*1024)

	lineNo := 0
	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		raw, readErr := readLine(reader)
		if readErr != nil && readErr != io.EOF && readErr != errLineTooLong {
			return summary, readErr
		}
		if readErr == io.EOF && len(raw) == 0 {
			break
		}
		lineNo++

		line := bytes.TrimSpace(bytes.TrimPrefix(raw, byteOrderMark))
		if readErr == errLineTooLong {
			s.logger.Warn("skip oversized line", zap.Int("line", lineNo))
			summary.Lines++
			summary.Skipped++
		} else if len(line) > 0 {
			summary.Lines++
			if done := s.ingestLine(ctx, line, lineNo, &summary); !done {
				summary.Skipped++
			}
		}
		if readErr == io.EOF {
			break
		}
	}

	s.logger.Info("ingestion finished",
		zap.Int("lines", summary.Lines),
		zap.Int("inserted", summary.Inserted),
		zap.Int("alias_upserts", summary.AliasUpserts),
		zap.Int("skipped", summary.Skipped))
	return summary, nil
}

// errLineTooLong marks a line past maxLineBytes. The remainder of the line
// has already been drained when it is returned.
var errLineTooLong = errors.New("line exceeds size limit")

// readLine assembles one logical line regardless of how the reader buffers
// it. An over-limit line is discarded through to its newline so the stream
// stays aligned for the next line.
func readLine(r *bufio.Reader) ([]byte, error) {
	var line []byte
	for {
		chunk, isPrefix, err := r.ReadLine()
		if len(line)+len(chunk) > maxLineBytes {
			for isPrefix && err == nil {
				_, isPrefix, err = r.ReadLine()
			}
			if err != nil && err != io.EOF {
				return nil, err
			}
			return nil, errLineTooLong
		}
		line = append(line, chunk...)
		if err != nil || !isPrefix {
			return line, err
		}
	}
}

func (s *Service) ingestLine(ctx context.Context, line []byte, lineNo int, summary *Summary) bool {
	if isAliasLine(line) {
		var doc aliasDoc
		if err := json.Unmarshal(line, &doc); err != nil {
			s.logger.Warn("skip malformed alias line", zap.Int("line", lineNo), zap.Error(err))
			return false
		}
		res, err := s.engine.UpsertAliases(ctx, doc.Title, doc.Aliases, doc.Notes)
		if err != nil {
			s.logger.Warn("skip alias line", zap.Int("line", lineNo), zap.Error(err))
			return false
		}
		if res.GameID == nil {
			s.logger.Warn("skip alias line for unknown title",
				zap.Int("line", lineNo),
				zap.String("title", doc.Title))
			return false
		}
		summary.AliasUpserts += res.Upserted
		return true
	}

	var doc domain.GameDocument
	if err := json.Unmarshal(line, &doc); err != nil {
		s.logger.Warn("skip malformed line", zap.Int("line", lineNo), zap.Error(err))
		return false
	}
	if result := s.validator.ValidateDocument(doc); !result.IsValid {
		s.logger.Warn("skip invalid document",
			zap.Int("line", lineNo),
			zap.Any("errors", result.Errors))
		return false
	}

	res, err := s.engine.AddGame(ctx, doc)
	if err != nil {
		s.logger.Warn("skip game line", zap.Int("line", lineNo), zap.Error(err))
		return false
	}
	if res.Inserted {
		summary.Inserted++
	} else {
		summary.Existing++
	}
	summary.AliasUpserts += res.AliasesAttached
	return true
}

// isAliasLine detects alias-only documents: a title and aliases with no
// display_name. A document carrying display_name is always a game, even if
// it also carries a stray title key.
func isAliasLine(line []byte) bool {
	var probe struct {
		Title       *string         `json:"title"`
		Aliases     json.RawMessage `json:"aliases"`
		DisplayName *string         `json:"display_name"`
	}
	if err := json.Unmarshal(line, &probe); err != nil {
		return false
	}
	return probe.Title != nil && len(probe.Aliases) > 0 && probe.DisplayName == nil
}
