package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/AlfredvdM/igrow-lms-sub000/models"
	"github.com/AlfredvdM/igrow-lms-sub000/storage"
	"github.com/AlfredvdM/igrow-lms-sub000/utils"
)

// SheetLoader reads every tab and normalizes it into one lead collection.
type SheetLoader struct {
	reader     storage.RowReader
	normalizer *Normalizer
	logger     *utils.Logger
}

func NewSheetLoader(reader storage.RowReader, normalizer *Normalizer, logger *utils.Logger) *SheetLoader {
	return &SheetLoader{reader: reader, normalizer: normalizer, logger: logger}
}

// Load returns the normalized leads of all tabs, in tab order.
func (s *SheetLoader) Load(ctx context.Context) ([]*models.Lead, error) {
	tabs, err := s.reader.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load leads: %w", err)
	}

	leads := []*models.Lead{}
	skipped := 0
	for _, source := range models.Sources {
		normalized, n := s.normalizer.Normalize(tabs[source], source)
		leads = append(leads, normalized...)
		skipped += n
	}
	s.logger.Debug("[loader] Loaded %d leads (%d rows skipped)", len(leads), skipped)
	return leads, nil
}

// DedupeByEmail keeps the newest lead per email. The result is ordered
// newest first; equal timestamps keep tab order.
func DedupeByEmail(leads []*models.Lead) []*models.Lead {
	sorted := make([]*models.Lead, len(leads))
	copy(sorted, leads)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	seen := utils.NewKeySet()
	result := make([]*models.Lead, 0, len(sorted))
	for _, l := range sorted {
		if seen.Add(l.Email) {
			result = append(result, l)
		}
	}
	return result
}

// SyncService copies the spreadsheet into the lead store.
type SyncService struct {
	loader *SheetLoader
	writer storage.LeadWriter
	logger *utils.Logger
}

func NewSyncService(loader *SheetLoader, writer storage.LeadWriter, logger *utils.Logger) *SyncService {
	return &SyncService{loader: loader, writer: writer, logger: logger}
}

// Run loads, dedupes and writes every lead and returns how many were written.
func (s *SyncService) Run(ctx context.Context) (int, error) {
	leads, err := s.loader.Load(ctx)
	if err != nil {
		return 0, err
	}

	unique := DedupeByEmail(leads)
	if dropped := len(leads) - len(unique); dropped > 0 {
		s.logger.Info("[sync] Dropped %d duplicate emails", dropped)
	}
	if err := s.writer.Write(ctx, unique); err != nil {
		return 0, fmt.Errorf("sync: %w", err)
	}
	s.logger.Info("[sync] Synced %d leads", len(unique))
	return len(unique), nil
}
