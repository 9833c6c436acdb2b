package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"trustharvest/internal/domain"
)

// Repo persists harvested reviews and run summaries in MySQL and
// implements domain.ReviewRepository.
type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// UpsertReviews writes a batch in one statement. Re-harvested reviews
// overwrite their raw payload; indexed columns only move forward (a NULL
// in the new batch never clears an existing value).
func (r *Repo) UpsertReviews(ctx context.Context, site string, rs []domain.Review) error {
	if len(rs) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*9)
	for _, rv := range rs {
		raw, err := json.Marshal(rv)
		if err != nil {
			return fmt.Errorf("marshal review %s: %w", rv.ID, err)
		}
		placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			rv.ID,
			site,
			nullStr(rv.DisplayName),
			nullStr(rv.CountryCode),
			nullStr(rv.Location),
			nullInt(rv.Rating),
			nullStr(rv.Language),
			nullTime(rv.PublishedDate),
			raw,
		)
	}

	query := insertReviewsPrefix + strings.Join(placeholders, ", ") + insertReviewsOnDup
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert reviews for %s: %w", site, err)
	}
	return nil
}

func (r *Repo) LogRun(ctx context.Context, run domain.HarvestRun) error {
	_, err := r.db.ExecContext(ctx, insertRunSQL,
		run.Domain, run.Pages, run.Reviews, run.Terminated,
		run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("log run for %s: %w", run.Domain, err)
	}
	return nil
}

func (r *Repo) ListReviews(ctx context.Context, site string, limit int) ([]domain.Review, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, listReviewsSQL, site, limit)
	if err != nil {
		return nil, fmt.Errorf("list reviews for %s: %w", site, err)
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		var rv domain.Review
		if err := json.Unmarshal(raw, &rv); err != nil {
			log.Warn().Err(err).Str("site", site).Msg("skipping undecodable stored review")
			continue
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews for %s: %w", site, err)
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

func (r *Repo) LocationSummary(ctx context.Context, site string) ([]domain.LocationSummary, error) {
	rows, err := r.db.QueryContext(ctx, locationSummarySQL, site)
	if err != nil {
		return nil, fmt.Errorf("location summary for %s: %w", site, err)
	}
	defer rows.Close()

	var out []domain.LocationSummary
	for rows.Next() {
		var (
			s    domain.LocationSummary
			mean sql.NullFloat64
		)
		if err := rows.Scan(&s.Location, &s.Count, &mean); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		if mean.Valid {
			s.MeanRating = mean.Float64
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summaries for %s: %w", site, err)
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

func nullStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return p.UTC()
}
