package listings

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)

// PostgresStore implements Store backed by PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed property store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the properties table if it doesn't exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS properties (
			id                   VARCHAR(36) PRIMARY KEY,
			title                VARCHAR(300) NOT NULL,
			description          TEXT NOT NULL DEFAULT '',
			price                BIGINT NOT NULL,
			location             VARCHAR(300) NOT NULL,
			property_type        VARCHAR(50) NOT NULL,
			images               TEXT[] NOT NULL DEFAULT '{}',
			contact_name         VARCHAR(200) NOT NULL,
			contact_phone        VARCHAR(30) NOT NULL,
			agent_id             VARCHAR(36) NOT NULL,
			agent_name           VARCHAR(200) NOT NULL,
			status               VARCHAR(20) NOT NULL DEFAULT 'pending',
			approved_by_admin_id VARCHAR(36) NOT NULL DEFAULT '',
			created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_properties_status ON properties(status);
		CREATE INDEX IF NOT EXISTS idx_properties_agent ON properties(agent_id);
	`)
	return err
}

const propertyColumns = `id, title, description, price, location, property_type, images,
	contact_name, contact_phone, agent_id, agent_name, status, approved_by_admin_id, created_at`

// Create inserts a new property.
func (p *PostgresStore) Create(ctx context.Context, prop *Property) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO properties (`+propertyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, prop.ID, prop.Title, prop.Description, prop.Price, prop.Location, prop.PropertyType,
		pq.Array(prop.Images), prop.ContactName, prop.ContactPhone, prop.AgentID,
		prop.AgentName, string(prop.Status), prop.ApprovedByAdminID, prop.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert property: %w", err)
	}
	return nil
}

// Get returns a property by ID.
func (p *PostgresStore) Get(ctx context.Context, id string) (*Property, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT `+propertyColumns+` FROM properties WHERE id = $1
	`, id)
	prop, err := scanProperty(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return prop, err
}

// Update rewrites an existing property.
func (p *PostgresStore) Update(ctx context.Context, prop *Property) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE properties SET
			title = $2, description = $3, price = $4, location = $5,
			property_type = $6, images = $7, contact_name = $8, contact_phone = $9,
			agent_name = $10, status = $11, approved_by_admin_id = $12
		WHERE id = $1
	`, prop.ID, prop.Title, prop.Description, prop.Price, prop.Location,
		prop.PropertyType, pq.Array(prop.Images), prop.ContactName, prop.ContactPhone,
		prop.AgentName, string(prop.Status), prop.ApprovedByAdminID)
	if err != nil {
		return fmt.Errorf("update property: %w", err)
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

// Delete removes a property.
func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete property: %w", err)
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

// List returns properties matching the filter, newest first.
func (p *PostgresStore) List(ctx context.Context, filter Filter) ([]*Property, error) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, val interface{}) {
		args = append(args, val)
		conds = append(conds, cond+"$"+strconv.Itoa(len(args)))
	}
	if filter.Status != "" {
		add("status = ", string(filter.Status))
	}
	if filter.PropertyType != "" {
		add("property_type = ", filter.PropertyType)
	}
	if filter.Location != "" {
		add("location = ", filter.Location)
	}
	if filter.MinPrice > 0 {
		add("price >= ", filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		add("price <= ", filter.MaxPrice)
	}

	query := `SELECT ` + propertyColumns + ` FROM properties`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}
	defer rows.Close()
	return scanProperties(rows)
}

// ListByAgent returns an agent's properties, newest first.
func (p *PostgresStore) ListByAgent(ctx context.Context, agentID string) ([]*Property, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+propertyColumns+` FROM properties
		WHERE agent_id = $1 ORDER BY created_at DESC
	`, agentID)
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}
	defer rows.Close()
	return scanProperties(rows)
}

// Count returns the total number of properties.
func (p *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM properties`).Scan(&n)
	return n, err
}

// CountByStatus returns the number of properties in a status.
func (p *PostgresStore) CountByStatus(ctx context.Context, status Status) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM properties WHERE status = $1`, string(status)).Scan(&n)
	return n, err
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanProperty(row scannable) (*Property, error) {
	prop := &Property{}
	var status string
	err := row.Scan(&prop.ID, &prop.Title, &prop.Description, &prop.Price, &prop.Location,
		&prop.PropertyType, pq.Array(&prop.Images), &prop.ContactName, &prop.ContactPhone,
		&prop.AgentID, &prop.AgentName, &status, &prop.ApprovedByAdminID, &prop.CreatedAt)
	if err != nil {
		return nil, err
	}
	prop.Status = Status(status)
	return prop, nil
}

func scanProperties(rows *sql.Rows) ([]*Property, error) {
	var out []*Property
	for rows.Next() {
		prop, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		out = append(out, prop)
	}
	return out, rows.Err()
}
