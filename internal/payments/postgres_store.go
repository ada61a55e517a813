package payments

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

// NewPostgresStore creates a new PostgreSQL-backed payment store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the payment tables if they don't exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS token_purchases (
			id                 VARCHAR(36) PRIMARY KEY,
			user_id            VARCHAR(36) NOT NULL,
			reference          VARCHAR(40) NOT NULL UNIQUE,
			amount             BIGINT NOT NULL,
			tokens_added       BIGINT NOT NULL,
			status             VARCHAR(20) NOT NULL DEFAULT 'pending',
			provider_reference VARCHAR(100) NOT NULL DEFAULT '',
			created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_token_purchases_user ON token_purchases(user_id);

		CREATE TABLE IF NOT EXISTS inspection_payments (
			id                 VARCHAR(36) PRIMARY KEY,
			inspection_id      VARCHAR(36) NOT NULL,
			user_id            VARCHAR(36) NOT NULL,
			reference          VARCHAR(40) NOT NULL UNIQUE,
			amount             BIGINT NOT NULL,
			status             VARCHAR(20) NOT NULL DEFAULT 'pending',
			provider_reference VARCHAR(100) NOT NULL DEFAULT '',
			created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_inspection_payments_user ON inspection_payments(user_id);

		CREATE TABLE IF NOT EXISTS processed_events (
			reference    VARCHAR(40) NOT NULL,
			event_type   VARCHAR(50) NOT NULL,
			processed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (reference, event_type)
		)
	`)
	return err
}

// CreateTokenPurchase inserts a token purchase record.
func (p *PostgresStore) CreateTokenPurchase(ctx context.Context, tp *TokenPurchase) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO token_purchases (id, user_id, reference, amount, tokens_added, status, provider_reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, tp.ID, tp.UserID, tp.Reference, tp.Amount, tp.TokensAdded, string(tp.Status), tp.ProviderReference, tp.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert token purchase: %w", err)
	}
	return nil
}

// GetTokenPurchaseByReference returns a token purchase by reference.
func (p *PostgresStore) GetTokenPurchaseByReference(ctx context.Context, reference string) (*TokenPurchase, error) {
	tp := &TokenPurchase{}
	var status string
	err := p.db.QueryRowContext(ctx, `
		SELECT id, user_id, reference, amount, tokens_added, status, provider_reference, created_at
		FROM token_purchases WHERE reference = $1
	`, reference).Scan(&tp.ID, &tp.UserID, &tp.Reference, &tp.Amount, &tp.TokensAdded, &status, &tp.ProviderReference, &tp.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrReferenceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query token purchase: %w", err)
	}
	tp.Status = Status(status)
	return tp, nil
}

// UpdateTokenPurchase rewrites a token purchase's status fields.
func (p *PostgresStore) UpdateTokenPurchase(ctx context.Context, tp *TokenPurchase) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE token_purchases SET status = $2, provider_reference = $3 WHERE reference = $1
	`, tp.Reference, string(tp.Status), tp.ProviderReference)
	if err != nil {
		return fmt.Errorf("update token purchase: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrReferenceNotFound
	}
	return nil
}

// ListTokenPurchasesByUser returns a user's token purchases, newest first.
func (p *PostgresStore) ListTokenPurchasesByUser(ctx context.Context, userID string) ([]*TokenPurchase, error) {
	return p.queryPurchases(ctx, `
		SELECT id, user_id, reference, amount, tokens_added, status, provider_reference, created_at
		FROM token_purchases WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
}

// ListTokenPurchases returns every token purchase, newest first.
func (p *PostgresStore) ListTokenPurchases(ctx context.Context) ([]*TokenPurchase, error) {
	return p.queryPurchases(ctx, `
		SELECT id, user_id, reference, amount, tokens_added, status, provider_reference, created_at
		FROM token_purchases ORDER BY created_at DESC
	`)
}

// SumCompletedTokenPurchases totals the amounts of completed purchases.
func (p *PostgresStore) SumCompletedTokenPurchases(ctx context.Context) (int64, error) {
	var sum int64
	err := p.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM token_purchases WHERE status = 'completed'
	`).Scan(&sum)
	return sum, err
}

// CreateInspectionPayment inserts an inspection payment record.
func (p *PostgresStore) CreateInspectionPayment(ctx context.Context, ip *InspectionPayment) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO inspection_payments (id, inspection_id, user_id, reference, amount, status, provider_reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, ip.ID, ip.InspectionID, ip.UserID, ip.Reference, ip.Amount, string(ip.Status), ip.ProviderReference, ip.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert inspection payment: %w", err)
	}
	return nil
}

// GetInspectionPaymentByReference returns an inspection payment by reference.
func (p *PostgresStore) GetInspectionPaymentByReference(ctx context.Context, reference string) (*InspectionPayment, error) {
	ip := &InspectionPayment{}
	var status string
	err := p.db.QueryRowContext(ctx, `
		SELECT id, inspection_id, user_id, reference, amount, status, provider_reference, created_at
		FROM inspection_payments WHERE reference = $1
	`, reference).Scan(&ip.ID, &ip.InspectionID, &ip.UserID, &ip.Reference, &ip.Amount, &status, &ip.ProviderReference, &ip.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrReferenceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query inspection payment: %w", err)
	}
	ip.Status = Status(status)
	return ip, nil
}

// UpdateInspectionPayment rewrites an inspection payment's status fields.
func (p *PostgresStore) UpdateInspectionPayment(ctx context.Context, ip *InspectionPayment) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE inspection_payments SET status = $2, provider_reference = $3 WHERE reference = $1
	`, ip.Reference, string(ip.Status), ip.ProviderReference)
	if err != nil {
		return fmt.Errorf("update inspection payment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrReferenceNotFound
	}
	return nil
}

// ListInspectionPaymentsByUser returns a user's inspection payments, newest first.
func (p *PostgresStore) ListInspectionPaymentsByUser(ctx context.Context, userID string) ([]*InspectionPayment, error) {
	return p.queryFees(ctx, `
		SELECT id, inspection_id, user_id, reference, amount, status, provider_reference, created_at
		FROM inspection_payments WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
}

// ListInspectionPayments returns every inspection payment, newest first.
func (p *PostgresStore) ListInspectionPayments(ctx context.Context) ([]*InspectionPayment, error) {
	return p.queryFees(ctx, `
		SELECT id, inspection_id, user_id, reference, amount, status, provider_reference, created_at
		FROM inspection_payments ORDER BY created_at DESC
	`)
}

// SumCompletedInspectionPayments totals the amounts of completed fees.
func (p *PostgresStore) SumCompletedInspectionPayments(ctx context.Context) (int64, error) {
	var sum int64
	err := p.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM inspection_payments WHERE status = 'completed'
	`).Scan(&sum)
	return sum, err
}

// MarkEventProcessed records the idempotency marker, reporting whether
// it already existed. ON CONFLICT DO NOTHING makes the insert the
// atomic arbiter under concurrent deliveries.
func (p *PostgresStore) MarkEventProcessed(ctx context.Context, reference, eventType string) (bool, error) {
	res, err := p.db.ExecContext(ctx, `
		INSERT INTO processed_events (reference, event_type)
		VALUES ($1, $2)
		ON CONFLICT (reference, event_type) DO NOTHING
	`, reference, eventType)
	if err != nil {
		return false, fmt.Errorf("mark event processed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 0, nil
}

func (p *PostgresStore) queryPurchases(ctx context.Context, q string, args ...interface{}) ([]*TokenPurchase, error) {
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query token purchases: %w", err)
	}
	defer rows.Close()

	var out []*TokenPurchase
	for rows.Next() {
		tp := &TokenPurchase{}
		var status string
		if err := rows.Scan(&tp.ID, &tp.UserID, &tp.Reference, &tp.Amount, &tp.TokensAdded, &status, &tp.ProviderReference, &tp.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan token purchase: %w", err)
		}
		tp.Status = Status(status)
		out = append(out, tp)
	}
	return out, rows.Err()
}

func (p *PostgresStore) queryFees(ctx context.Context, q string, args ...interface{}) ([]*InspectionPayment, error) {
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query inspection payments: %w", err)
	}
	defer rows.Close()

	var out []*InspectionPayment
	for rows.Next() {
		ip := &InspectionPayment{}
		var status string
		if err := rows.Scan(&ip.ID, &ip.InspectionID, &ip.UserID, &ip.Reference, &ip.Amount, &status, &ip.ProviderReference, &ip.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan inspection payment: %w", err)
		}
		ip.Status = Status(status)
		out = append(out, ip)
	}
	return out, rows.Err()
}
