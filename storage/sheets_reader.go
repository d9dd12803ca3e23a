package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/AlfredvdM/igrow-lms-sub000/config"
	"github.com/AlfredvdM/igrow-lms-sub000/models"
	"github.com/AlfredvdM/igrow-lms-sub000/utils"
)

// fetchFunc reads one A1 range and returns its cell values.
type fetchFunc func(ctx context.Context, a1Range string) ([][]interface{}, error)

// SheetsReader reads the three lead tabs of a Google spreadsheet.
// It is safe for concurrent use.
type SheetsReader struct {
	spreadsheetID string
	ranges        map[models.Source]string
	fetch         fetchFunc
	cache         *RowCache
	cfg           *config.Config
	logger        *utils.Logger
}

// NewSheetsReader builds a Sheets API client. A service account file takes
// precedence over an API key. cache may be nil.
func NewSheetsReader(ctx context.Context, cfg *config.Config, cache *RowCache, logger *utils.Logger) (*SheetsReader, error) {
	if cfg.GoogleSheetsID == "" {
		return nil, errors.New("sheets: GOOGLE_SHEETS_ID is not set")
	}

	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsReadonlyScope)}
	switch {
	case cfg.GoogleCredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.GoogleCredentialsFile))
	case cfg.GoogleAPIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.GoogleAPIKey))
	default:
		return nil, errors.New("sheets: neither GOOGLE_CREDENTIALS_FILE nor GOOGLE_API_KEY is set")
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}

	fetch := func(ctx context.Context, a1Range string) ([][]interface{}, error) {
		resp, err := svc.Spreadsheets.Values.Get(cfg.GoogleSheetsID, a1Range).
			ValueRenderOption("FORMATTED_VALUE").
			Context(ctx).
			Do()
		if err != nil {
			return nil, err
		}
		return resp.Values, nil
	}
	return newSheetsReader(cfg, fetch, cache, logger), nil
}

func newSheetsReader(cfg *config.Config, fetch fetchFunc, cache *RowCache, logger *utils.Logger) *SheetsReader {
	return &SheetsReader{
		spreadsheetID: cfg.GoogleSheetsID,
		ranges: map[models.Source]string{
			models.SourceOverview:       cfg.OverviewRange,
			models.SourceLeadForm:       cfg.LeadFormRange,
			models.SourceAIConversation: cfg.AIConversationRange,
		},
		fetch:  fetch,
		cache:  cache,
		cfg:    cfg,
		logger: logger,
	}
}

// ReadAll reads every tab concurrently. A tab that cannot be read fails the
// whole call so that a dashboard never shows partial data.
func (r *SheetsReader) ReadAll(ctx context.Context) (map[models.Source][]models.RawRow, error) {
	pool := utils.NewWorkerPool(r.cfg.MaxConcurrency, r.cfg.RateLimitMs)
	retry := &utils.RetryConfig{
		MaxAttempts: r.cfg.MaxRetries,
		BaseDelay:   500 * time.Millisecond,
		Logger:      r.logger,
	}

	var (
		mu     sync.Mutex
		result = make(map[models.Source][]models.RawRow, len(models.Sources))
		errs   []error
	)

	for _, source := range models.Sources {
		source := source
		pool.Submit(ctx, func(ctx context.Context) {
			rows, err := r.readTab(ctx, source, retry)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			result[source] = rows
		})
	}
	pool.Wait()

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	// the pool skips jobs whose context ends while they wait for a slot
	if len(result) < len(models.Sources) {
		return nil, fmt.Errorf("sheets: read %d of %d tabs before the context ended",
			len(result), len(models.Sources))
	}
	return result, nil
}

func (r *SheetsReader) readTab(ctx context.Context, source models.Source, retry *utils.RetryConfig) ([]models.RawRow, error) {
	if r.cache != nil {
		rows, ok, err := r.cache.Get(ctx, r.spreadsheetID, source)
		if err != nil {
			r.logger.Warn("[sheets] Cache read failed for %s: %v", source, err)
		} else if ok {
			r.logger.Debug("[sheets] Cache hit for %s (%d rows)", source, len(rows))
			return rows, nil
		}
	}

	a1Range := r.ranges[source]
	var values [][]interface{}
	err := retry.Do(ctx, "sheets read "+a1Range, func(ctx context.Context) error {
		var err error
		values, err = r.fetch(ctx, a1Range)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("sheets: read %s: %w", source, err)
	}

	rows := RowsFromValues(values)
	r.logger.Info("[sheets] Read %d rows from %q", len(rows), a1Range)

	if r.cache != nil {
		if err := r.cache.Set(ctx, r.spreadsheetID, source, rows); err != nil {
			r.logger.Warn("[sheets] Cache write failed for %s: %v", source, err)
		}
	}
	return rows, nil
}

// RowsFromValues turns a values grid whose first row is the header into
// rows keyed by header. Columns without a header and fully blank rows are
// dropped; short rows leave their trailing columns empty.
func RowsFromValues(values [][]interface{}) []models.RawRow {
	if len(values) == 0 {
		return []models.RawRow{}
	}

	header := make([]string, len(values[0]))
	for i, h := range values[0] {
		header[i] = strings.TrimSpace(fmt.Sprint(h))
	}

	rows := make([]models.RawRow, 0, len(values)-1)
	for _, line := range values[1:] {
		row := make(models.RawRow, len(header))
		blank := true
		for i, name := range header {
			if name == "" {
				continue
			}
			cell := ""
			if i < len(line) && line[i] != nil {
				cell = fmt.Sprint(line[i])
			}
			if strings.TrimSpace(cell) != "" {
				blank = false
			}
			if _, dup := row[name]; !dup || cell != "" {
				row[name] = cell
			}
		}
		if !blank {
			rows = append(rows, row)
		}
	}
	return rows
}
