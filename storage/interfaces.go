package storage

import (
	"context"

	"github.com/AlfredvdM/igrow-lms-sub000/models"
)

// RowReader is the interface any raw lead source must satisfy.
type RowReader interface {
	ReadAll(ctx context.Context) (map[models.Source][]models.RawRow, error)
}

// LeadWriter is the interface for persisting normalized leads.
type LeadWriter interface {
	Write(ctx context.Context, leads []*models.Lead) error
	Close() error
}

// LeadLoader returns the full, normalized lead collection.
type LeadLoader interface {
	Load(ctx context.Context) ([]*models.Lead, error)
}
