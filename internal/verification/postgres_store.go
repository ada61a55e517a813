package verification

import (
	"context"
	"database/sql"
	"fmt"
)

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)

// PostgresStore implements Store backed by PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed verification store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the verification_requests table if it doesn't exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS verification_requests (
			id                   VARCHAR(36) PRIMARY KEY,
			user_id              VARCHAR(36) NOT NULL,
			user_name            VARCHAR(200) NOT NULL,
			user_email           VARCHAR(255) NOT NULL,
			id_card_url          TEXT NOT NULL,
			selfie_url           TEXT NOT NULL,
			address              TEXT NOT NULL,
			status               VARCHAR(20) NOT NULL DEFAULT 'pending',
			reviewed_by_admin_id VARCHAR(36) NOT NULL DEFAULT '',
			reviewed_at          TIMESTAMPTZ,
			created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_verification_user ON verification_requests(user_id);
		CREATE INDEX IF NOT EXISTS idx_verification_status ON verification_requests(status);
	`)
	return err
}

const requestColumns = `id, user_id, user_name, user_email, id_card_url, selfie_url,
	address, status, reviewed_by_admin_id, reviewed_at, created_at`

// Create inserts a new request.
func (p *PostgresStore) Create(ctx context.Context, r *Request) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO verification_requests (`+requestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, r.ID, r.UserID, r.UserName, r.UserEmail, r.IDCardURL, r.SelfieURL,
		r.Address, string(r.Status), r.ReviewedByAdminID, r.ReviewedAt, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert verification request: %w", err)
	}
	return nil
}

// Get returns a request by ID.
func (p *PostgresStore) Get(ctx context.Context, id string) (*Request, error) {
	r, err := scanRequest(p.db.QueryRowContext(ctx, `
		SELECT `+requestColumns+` FROM verification_requests WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return r, err
}

// GetPendingByUser returns the user's pending request, if any.
func (p *PostgresStore) GetPendingByUser(ctx context.Context, userID string) (*Request, error) {
	r, err := scanRequest(p.db.QueryRowContext(ctx, `
		SELECT `+requestColumns+` FROM verification_requests
		WHERE user_id = $1 AND status = 'pending' LIMIT 1
	`, userID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return r, err
}

// GetLatestByUser returns the user's most recent request.
func (p *PostgresStore) GetLatestByUser(ctx context.Context, userID string) (*Request, error) {
	r, err := scanRequest(p.db.QueryRowContext(ctx, `
		SELECT `+requestColumns+` FROM verification_requests
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1
	`, userID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return r, err
}

// Update rewrites an existing request.
func (p *PostgresStore) Update(ctx context.Context, r *Request) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE verification_requests SET
			status = $2, reviewed_by_admin_id = $3, reviewed_at = $4
		WHERE id = $1
	`, r.ID, string(r.Status), r.ReviewedByAdminID, r.ReviewedAt)
	if err != nil {
		return fmt.Errorf("update verification request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByStatus returns requests in a status, newest first.
func (p *PostgresStore) ListByStatus(ctx context.Context, status Status) ([]*Request, error) {
	return p.query(ctx, `
		SELECT `+requestColumns+` FROM verification_requests
		WHERE status = $1 ORDER BY created_at DESC
	`, string(status))
}

// ListAll returns every request, newest first.
func (p *PostgresStore) ListAll(ctx context.Context) ([]*Request, error) {
	return p.query(ctx, `
		SELECT `+requestColumns+` FROM verification_requests ORDER BY created_at DESC
	`)
}

// CountByStatus returns the number of requests in a status.
func (p *PostgresStore) CountByStatus(ctx context.Context, status Status) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM verification_requests WHERE status = $1
	`, string(status)).Scan(&n)
	return n, err
}

func (p *PostgresStore) query(ctx context.Context, q string, args ...interface{}) ([]*Request, error) {
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query verification requests: %w", err)
	}
	defer rows.Close()

	var out []*Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan verification request: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row scannable) (*Request, error) {
	r := &Request{}
	var status string
	var reviewedAt sql.NullTime
	err := row.Scan(&r.ID, &r.UserID, &r.UserName, &r.UserEmail, &r.IDCardURL,
		&r.SelfieURL, &r.Address, &status, &r.ReviewedByAdminID, &reviewedAt, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.Status = Status(status)
	if reviewedAt.Valid {
		t := reviewedAt.Time
		r.ReviewedAt = &t
	}
	return r, nil
}
