package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/target/deckgen/internal/data/pgxutil"
	"github.com/target/deckgen/internal/domain/model"
	apperrors "github.com/target/deckgen/internal/errors"
)

// ErrPresentationNotFound is returned when a catalog row does not exist.
var ErrPresentationNotFound = errors.New("presentation not found")

const presentationColumns = `id, user_id, client_id, topic, slide_count, status,
	storage_key, download_url, created_at, completed_at`

// PresentationRepo stores the presentation catalog in Postgres.
type PresentationRepo struct {
	DB  *sql.DB
	now func() time.Time
}

// NewPresentationRepo creates a PresentationRepo using the system clock.
func NewPresentationRepo(db *sql.DB) *PresentationRepo {
	return &PresentationRepo{DB: db, now: time.Now}
}

// NewPresentationRepoWithClock creates a PresentationRepo that stamps rows with now.
func NewPresentationRepoWithClock(db *sql.DB, now func() time.Time) *PresentationRepo {
	if now == nil {
		now = time.Now
	}
	return &PresentationRepo{DB: db, now: now}
}

// Upsert inserts or updates a catalog row. A completed row is never moved back to
// another status by a late writer.
func (r *PresentationRepo) Upsert(ctx context.Context, p *model.Presentation) error {
	if p == nil || p.ID == "" {
		return ErrPresentationIDRequired
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.now()
	}
	const q = `
		INSERT INTO presentations (` + presentationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			status       = EXCLUDED.status,
			slide_count  = EXCLUDED.slide_count,
			storage_key  = COALESCE(EXCLUDED.storage_key, presentations.storage_key),
			download_url = COALESCE(EXCLUDED.download_url, presentations.download_url),
			completed_at = COALESCE(EXCLUDED.completed_at, presentations.completed_at)
		WHERE presentations.status <> 'completed' OR EXCLUDED.status = 'completed'`

	_, err := r.DB.ExecContext(ctx, q,
		p.ID, p.UserID, p.ClientID, p.Topic, p.SlideCount, string(p.Status),
		p.StorageKey, p.DownloadURL, p.CreatedAt, p.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert presentation: %w", apperrors.MapDBError(err))
	}
	return nil
}

// GetByID returns one catalog row.
func (r *PresentationRepo) GetByID(ctx context.Context, id string) (*model.Presentation, error) {
	if id == "" {
		return nil, ErrPresentationIDRequired
	}
	rows, err := r.query(ctx, `SELECT `+presentationColumns+` FROM presentations WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrPresentationNotFound
	}
	return rows[0], nil
}

// ListByUser returns a user's presentations, newest first.
func (r *PresentationRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*model.Presentation, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return r.query(ctx, `SELECT `+presentationColumns+`
		FROM presentations
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2`, userID, limit)
}

func (r *PresentationRepo) query(ctx context.Context, q string, args ...any) ([]*model.Presentation, error) {
	var out []*model.Presentation
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.Presentation])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("query presentations: %w", apperrors.MapDBError(err))
	}
	return out, nil
}

// Delete removes a catalog row. It reports whether a row existed.
func (r *PresentationRepo) Delete(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, ErrPresentationIDRequired
	}
	var deleted bool
	err := pgxutil.WithTx(ctx, r.DB, nil, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM presentations WHERE id = $1`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		deleted = n > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete presentation: %w", apperrors.MapDBError(err))
	}
	return deleted, nil
}
