package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/nyaruka/phonenumbers"

	"github.com/AlfredvdM/igrow-lms-sub000/models"
	"github.com/AlfredvdM/igrow-lms-sub000/utils"
)

const upsertBatchSize = 50

// leadColumns is the insert column order; leadArgs must match it.
var leadColumns = []string{
	"id", "email", "lead_timestamp", "name", "phone", "phone_e164",
	"lead_score", "lead_intent", "lead_status", "lead_source", "original_source",
	"apartment_preferences", "income_range", "employment_status", "pet_preference",
	"move_in_timing", "preferred_contact", "best_time_to_reach", "engagement_level",
	"sentiment_score", "utm_source", "utm_medium", "utm_campaign", "conversation_summary",
}

// PostgresStore persists normalized leads to PostgreSQL (Supabase).
type PostgresStore struct {
	db          *sql.DB
	phoneRegion string
	logger      *utils.Logger
}

// NewPostgresStore opens a connection, waits for the database to answer,
// runs schema migrations and returns a ready-to-use store.
func NewPostgresStore(ctx context.Context, dsn, phoneRegion string, maxRetries int, logger *utils.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{MaxAttempts: maxRetries, BaseDelay: 2 * time.Second, Logger: logger}
	if err := retry.Do(ctx, "postgres ping", db.PingContext); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	ps := &PostgresStore{db: db, phoneRegion: phoneRegion, logger: logger}
	if err := ps.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return ps, nil
}

func (ps *PostgresStore) migrate(ctx context.Context) error {
	_, err := ps.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS leads (
			email                 TEXT             PRIMARY KEY,
			id                    TEXT             NOT NULL,
			lead_timestamp        TIMESTAMPTZ      NOT NULL,
			name                  TEXT             NOT NULL DEFAULT '',
			phone                 TEXT             NOT NULL DEFAULT '',
			phone_e164            TEXT             NOT NULL DEFAULT '',
			lead_score            DOUBLE PRECISION NOT NULL DEFAULT 0,
			lead_intent           TEXT             NOT NULL DEFAULT 'Low',
			lead_status           TEXT             NOT NULL DEFAULT '',
			lead_source           TEXT             NOT NULL DEFAULT '',
			original_source       TEXT             NOT NULL,
			apartment_preferences TEXT[]           NOT NULL DEFAULT '{}',
			income_range          TEXT             NOT NULL DEFAULT '',
			employment_status     TEXT             NOT NULL DEFAULT '',
			pet_preference        TEXT             NOT NULL DEFAULT '',
			move_in_timing        TEXT             NOT NULL DEFAULT '',
			preferred_contact     TEXT             NOT NULL DEFAULT '',
			best_time_to_reach    TEXT             NOT NULL DEFAULT '',
			engagement_level      TEXT             NOT NULL DEFAULT '',
			sentiment_score       DOUBLE PRECISION,
			utm_source            TEXT             NOT NULL DEFAULT '',
			utm_medium            TEXT             NOT NULL DEFAULT '',
			utm_campaign          TEXT             NOT NULL DEFAULT '',
			conversation_summary  TEXT             NOT NULL DEFAULT '',
			synced_at             TIMESTAMPTZ      NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_leads_timestamp ON leads(lead_timestamp);
		CREATE INDEX IF NOT EXISTS idx_leads_intent    ON leads(lead_intent);
		CREATE INDEX IF NOT EXISTS idx_leads_status    ON leads(lead_status);
		CREATE INDEX IF NOT EXISTS idx_leads_source    ON leads(original_source);
	`)
	return err
}

// Write upserts leads by email in batches. Emails must be unique within
// one call; a later sync of the same email replaces the stored row.
func (ps *PostgresStore) Write(ctx context.Context, leads []*models.Lead) error {
	if len(leads) == 0 {
		return nil
	}

	tx, err := ps.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := 0; i < len(leads); i += upsertBatchSize {
		end := i + upsertBatchSize
		if end > len(leads) {
			end = len(leads)
		}
		query, args := buildUpsert(leads[i:end], ps.phoneRegion)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("postgres: upsert batch at %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	ps.logger.Info("[postgres] Upserted %d leads", len(leads))
	return nil
}

func buildUpsert(batch []*models.Lead, phoneRegion string) (string, []interface{}) {
	n := len(leadColumns)
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*n)

	for idx, l := range batch {
		placeholders := make([]string, n)
		for c := range placeholders {
			placeholders[c] = fmt.Sprintf("$%d", idx*n+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs, leadArgs(l, phoneRegion)...)
	}

	updates := make([]string, 0, n)
	for _, col := range leadColumns {
		if col == "email" {
			continue
		}
		updates = append(updates, col+" = EXCLUDED."+col)
	}
	updates = append(updates, "synced_at = NOW()")

	query := fmt.Sprintf(`
		INSERT INTO leads (%s)
		VALUES %s
		ON CONFLICT (email) DO UPDATE SET %s
	`, strings.Join(leadColumns, ", "), strings.Join(valueStrings, ","), strings.Join(updates, ", "))
	return query, valueArgs
}

func leadArgs(l *models.Lead, phoneRegion string) []interface{} {
	var sentiment sql.NullFloat64
	if l.SentimentScore != nil {
		sentiment = sql.NullFloat64{Float64: *l.SentimentScore, Valid: true}
	}
	apartments := l.ApartmentPreferences
	if apartments == nil {
		apartments = []string{}
	}
	return []interface{}{
		l.ID, l.Email, l.Timestamp, l.Name, l.Phone, NormalizeE164(l.Phone, phoneRegion),
		l.LeadScore, string(l.LeadIntent), string(l.LeadStatus), l.LeadSource, string(l.OriginalSource),
		pq.Array(apartments), l.IncomeRange, l.EmploymentStatus, l.PetPreference,
		l.MoveInTiming, l.PreferredContact, l.BestTimeToReach, l.EngagementLevel,
		sentiment, l.UTMSource, l.UTMMedium, l.UTMCampaign, l.ConversationSummary,
	}
}

// NormalizeE164 formats a phone number to E.164, or returns "" when it is
// not a valid number for region.
func NormalizeE164(phone, region string) string {
	if strings.TrimSpace(phone) == "" {
		return ""
	}
	number, err := phonenumbers.Parse(phone, region)
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return ""
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

// Load retrieves every stored lead, newest first.
func (ps *PostgresStore) Load(ctx context.Context) ([]*models.Lead, error) {
	rows, err := ps.db.QueryContext(ctx, `
		SELECT id, email, lead_timestamp, name, phone, lead_score, lead_intent,
		       lead_status, lead_source, original_source, apartment_preferences,
		       income_range, employment_status, pet_preference, move_in_timing,
		       preferred_contact, best_time_to_reach, engagement_level, sentiment_score,
		       utm_source, utm_medium, utm_campaign, conversation_summary
		FROM leads
		ORDER BY lead_timestamp DESC, email
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	leads := []*models.Lead{}
	for rows.Next() {
		var (
			l          models.Lead
			intent     string
			status     string
			source     string
			apartments pq.StringArray
			sentiment  sql.NullFloat64
		)
		if err := rows.Scan(
			&l.ID, &l.Email, &l.Timestamp, &l.Name, &l.Phone, &l.LeadScore, &intent,
			&status, &l.LeadSource, &source, &apartments,
			&l.IncomeRange, &l.EmploymentStatus, &l.PetPreference, &l.MoveInTiming,
			&l.PreferredContact, &l.BestTimeToReach, &l.EngagementLevel, &sentiment,
			&l.UTMSource, &l.UTMMedium, &l.UTMCampaign, &l.ConversationSummary,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		l.LeadIntent = models.Intent(intent)
		l.LeadStatus = models.Status(status)
		l.OriginalSource = models.Source(source)
		if len(apartments) > 0 {
			l.ApartmentPreferences = []string(apartments)
		}
		if sentiment.Valid {
			v := sentiment.Float64
			l.SentimentScore = &v
		}
		leads = append(leads, &l)
	}
	return leads, rows.Err()
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
