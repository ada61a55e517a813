package inspections

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

// NewPostgresStore creates a new PostgreSQL-backed inspection store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the inspections table if it doesn't exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS inspections (
			id                VARCHAR(36) PRIMARY KEY,
			user_id           VARCHAR(36) NOT NULL,
			user_name         VARCHAR(200) NOT NULL,
			user_email        VARCHAR(255) NOT NULL,
			property_id       VARCHAR(36) NOT NULL,
			property_title    VARCHAR(300) NOT NULL,
			agent_id          VARCHAR(36) NOT NULL DEFAULT '',
			agent_name        VARCHAR(200) NOT NULL DEFAULT '',
			inspection_date   TIMESTAMPTZ NOT NULL,
			status            VARCHAR(20) NOT NULL DEFAULT 'pending',
			payment_status    VARCHAR(20) NOT NULL DEFAULT 'pending',
			payment_reference VARCHAR(40) NOT NULL,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_inspections_user ON inspections(user_id);
		CREATE INDEX IF NOT EXISTS idx_inspections_agent ON inspections(agent_id);
		CREATE INDEX IF NOT EXISTS idx_inspections_status ON inspections(status);
	`)
	return err
}

const inspectionColumns = `id, user_id, user_name, user_email, property_id, property_title,
	agent_id, agent_name, inspection_date, status, payment_status, payment_reference, created_at`

// Create inserts a new inspection.
func (p *PostgresStore) Create(ctx context.Context, i *Inspection) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO inspections (`+inspectionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, i.ID, i.UserID, i.UserName, i.UserEmail, i.PropertyID, i.PropertyTitle,
		i.AgentID, i.AgentName, i.InspectionDate, string(i.Status),
		string(i.PaymentStatus), i.PaymentReference, i.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert inspection: %w", err)
	}
	return nil
}

// Get returns an inspection by ID.
func (p *PostgresStore) Get(ctx context.Context, id string) (*Inspection, error) {
	i, err := scanInspection(p.db.QueryRowContext(ctx, `
		SELECT `+inspectionColumns+` FROM inspections WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return i, err
}

// Update rewrites an existing inspection.
func (p *PostgresStore) Update(ctx context.Context, i *Inspection) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE inspections SET
			agent_id = $2, agent_name = $3, inspection_date = $4,
			status = $5, payment_status = $6
		WHERE id = $1
	`, i.ID, i.AgentID, i.AgentName, i.InspectionDate, string(i.Status), string(i.PaymentStatus))
	if err != nil {
		return fmt.Errorf("update inspection: %w", err)
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

// ListByUser returns a user's inspections, newest first.
func (p *PostgresStore) ListByUser(ctx context.Context, userID string) ([]*Inspection, error) {
	return p.query(ctx, `
		SELECT `+inspectionColumns+` FROM inspections
		WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
}

// ListByAgent returns inspections assigned to an agent, newest first.
func (p *PostgresStore) ListByAgent(ctx context.Context, agentID string) ([]*Inspection, error) {
	return p.query(ctx, `
		SELECT `+inspectionColumns+` FROM inspections
		WHERE agent_id = $1 AND agent_id <> '' ORDER BY created_at DESC
	`, agentID)
}

// ListAll returns every inspection, newest first.
func (p *PostgresStore) ListAll(ctx context.Context) ([]*Inspection, error) {
	return p.query(ctx, `
		SELECT `+inspectionColumns+` FROM inspections ORDER BY created_at DESC
	`)
}

// Count returns the total number of inspections.
func (p *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inspections`).Scan(&n)
	return n, err
}

// CountByStatus returns the number of inspections in a status.
func (p *PostgresStore) CountByStatus(ctx context.Context, status Status) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inspections WHERE status = $1`, string(status)).Scan(&n)
	return n, err
}

func (p *PostgresStore) query(ctx context.Context, q string, args ...interface{}) ([]*Inspection, error) {
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query inspections: %w", err)
	}
	defer rows.Close()

	var out []*Inspection
	for rows.Next() {
		i, err := scanInspection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inspection: %w", err)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanInspection(row scannable) (*Inspection, error) {
	i := &Inspection{}
	var status, payStatus string
	err := row.Scan(&i.ID, &i.UserID, &i.UserName, &i.UserEmail, &i.PropertyID,
		&i.PropertyTitle, &i.AgentID, &i.AgentName, &i.InspectionDate,
		&status, &payStatus, &i.PaymentReference, &i.CreatedAt)
	if err != nil {
		return nil, err
	}
	i.Status = Status(status)
	i.PaymentStatus = PaymentStatus(payStatus)
	return i, nil
}
