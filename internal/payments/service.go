package payments

import (
	"context"
	"errors"
	"time"

	"github.com/ayotona/rentora/internal/idgen"
	"github.com/ayotona/rentora/internal/logging"
	"github.com/ayotona/rentora/internal/metrics"
	"github.com/ayotona/rentora/internal/wallet"
)

// WalletCreditor adds purchased tokens to a wallet.
type WalletCreditor interface {
	Credit(ctx context.Context, userID string, amount int64) (*wallet.Wallet, error)
}

// InspectionCompleter marks a booking paid once its charge settles.
type InspectionCompleter interface {
	CompletePayment(ctx context.Context, inspectionID string) error
}

// Config carries the provider settings the service needs.
type Config struct {
	TokenPrice       int64
	InspectionFee    int64
	CheckoutBaseURL  string
	PublicKey        string
	WebhookSecret    string
	EnableSimulation bool
}

// Checkout is the response to an initiated charge.
type Checkout struct {
	Reference   string `json:"reference"`
	Amount      int64  `json:"amount"`
	CheckoutURL string `json:"checkout_url"`
}

// Verification is the client-facing status of a reference.
type Verification struct {
	Reference string `json:"reference"`
	Type      string `json:"type"`
	Status    Status `json:"status"`
}

// Service reconciles Korapay charges against payment records.
type Service struct {
	store       Store
	wallets     WalletCreditor
	inspections InspectionCompleter
	cfg         Config
}

// NewService creates a new payments service. The inspection completer
// is attached later via SetInspections to break the construction cycle
// with the inspections service.
func NewService(store Store, wallets WalletCreditor, cfg Config) *Service {
	return &Service{store: store, wallets: wallets, cfg: cfg}
}

// SetInspections attaches the inspection completer.
func (s *Service) SetInspections(i InspectionCompleter) {
	s.inspections = i
}

// WebhookSecret returns the configured signing secret. Empty means
// signature verification is skipped (development fallback).
func (s *Service) WebhookSecret() string {
	return s.cfg.WebhookSecret
}

// SimulationEnabled reports whether the dev simulator may run.
func (s *Service) SimulationEnabled() bool {
	return s.cfg.EnableSimulation
}

// InitiatePurchase creates a pending token purchase and returns its
// checkout session.
func (s *Service) InitiatePurchase(ctx context.Context, userID string, quantity int64) (*Checkout, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	tp := &TokenPurchase{
		ID:          idgen.New(),
		UserID:      userID,
		Reference:   NewReference(PrefixToken),
		Amount:      quantity * s.cfg.TokenPrice,
		TokensAdded: quantity,
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateTokenPurchase(ctx, tp); err != nil {
		return nil, err
	}

	logging.L(ctx).Info("token purchase initiated",
		"user_id", userID,
		"reference", tp.Reference,
		"quantity", quantity,
		"amount", tp.Amount)
	return &Checkout{
		Reference:   tp.Reference,
		Amount:      tp.Amount,
		CheckoutURL: CheckoutURL(s.cfg.CheckoutBaseURL, tp.Amount, tp.Reference, s.cfg.PublicKey),
	}, nil
}

// InitiateInspectionPayment creates the pending fee for a new booking.
// Satisfies inspections.PaymentInitiator.
func (s *Service) InitiateInspectionPayment(ctx context.Context, inspectionID, userID string) (string, int64, string, error) {
	ip := &InspectionPayment{
		ID:           idgen.New(),
		InspectionID: inspectionID,
		UserID:       userID,
		Reference:    NewReference(PrefixInspection),
		Amount:       s.cfg.InspectionFee,
		Status:       StatusPending,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateInspectionPayment(ctx, ip); err != nil {
		return "", 0, "", err
	}
	return ip.Reference, ip.Amount, CheckoutURL(s.cfg.CheckoutBaseURL, ip.Amount, ip.Reference, s.cfg.PublicKey), nil
}

// HandleEvent applies one provider event to the matching payment record.
// Unknown event types and unknown references are acknowledged and
// ignored. Duplicate deliveries short-circuit on the processed-event
// marker with no side effects.
func (s *Service) HandleEvent(ctx context.Context, eventType, reference, providerReference string) error {
	log := logging.L(ctx)

	if eventType != EventChargeSuccess && eventType != EventChargeFailed {
		metrics.WebhookEventsTotal.WithLabelValues(eventType, "ignored").Inc()
		log.Info("webhook event ignored", "event", eventType, "reference", reference)
		return nil
	}

	tp, tpErr := s.store.GetTokenPurchaseByReference(ctx, reference)
	if tpErr != nil && !errors.Is(tpErr, ErrReferenceNotFound) {
		return tpErr
	}
	var ip *InspectionPayment
	if tp == nil {
		var ipErr error
		ip, ipErr = s.store.GetInspectionPaymentByReference(ctx, reference)
		if ipErr != nil && !errors.Is(ipErr, ErrReferenceNotFound) {
			return ipErr
		}
	}
	if tp == nil && ip == nil {
		metrics.WebhookEventsTotal.WithLabelValues(eventType, "unknown_reference").Inc()
		log.Warn("webhook for unknown reference", "event", eventType, "reference", reference)
		return nil
	}

	// The marker is the arbiter: the first delivery to claim the
	// (reference, event) pair applies the effects, every later one is a
	// no-op.
	already, err := s.store.MarkEventProcessed(ctx, reference, eventType)
	if err != nil {
		return err
	}
	if already {
		metrics.WebhookEventsTotal.WithLabelValues(eventType, "duplicate").Inc()
		log.Info("duplicate webhook delivery", "event", eventType, "reference", reference)
		return nil
	}

	if tp != nil {
		err = s.settleTokenPurchase(ctx, tp, eventType, providerReference)
	} else {
		err = s.settleInspectionPayment(ctx, ip, eventType, providerReference)
	}
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues(eventType, "error").Inc()
		return err
	}
	metrics.WebhookEventsTotal.WithLabelValues(eventType, "processed").Inc()
	return nil
}

func (s *Service) settleTokenPurchase(ctx context.Context, tp *TokenPurchase, eventType, providerReference string) error {
	tp.ProviderReference = providerReference
	switch eventType {
	case EventChargeSuccess:
		tp.Status = StatusCompleted
	case EventChargeFailed:
		tp.Status = StatusFailed
	}
	if err := s.store.UpdateTokenPurchase(ctx, tp); err != nil {
		return err
	}

	if eventType == EventChargeSuccess {
		if _, err := s.wallets.Credit(ctx, tp.UserID, tp.TokensAdded); err != nil {
			return err
		}
		logging.L(ctx).Info("token purchase settled",
			"reference", tp.Reference,
			"user_id", tp.UserID,
			"tokens", tp.TokensAdded)
	} else {
		logging.L(ctx).Info("token purchase failed", "reference", tp.Reference)
	}
	return nil
}

func (s *Service) settleInspectionPayment(ctx context.Context, ip *InspectionPayment, eventType, providerReference string) error {
	ip.ProviderReference = providerReference
	switch eventType {
	case EventChargeSuccess:
		ip.Status = StatusCompleted
	case EventChargeFailed:
		ip.Status = StatusFailed
	}
	if err := s.store.UpdateInspectionPayment(ctx, ip); err != nil {
		return err
	}

	if eventType == EventChargeSuccess {
		if err := s.inspections.CompletePayment(ctx, ip.InspectionID); err != nil {
			return err
		}
		logging.L(ctx).Info("inspection payment settled",
			"reference", ip.Reference,
			"inspection_id", ip.InspectionID)
	} else {
		logging.L(ctx).Info("inspection payment failed", "reference", ip.Reference)
	}
	return nil
}

// Verify reports the status of a reference for the client.
func (s *Service) Verify(ctx context.Context, reference string) (*Verification, error) {
	if tp, err := s.store.GetTokenPurchaseByReference(ctx, reference); err == nil {
		return &Verification{Reference: reference, Type: "token_purchase", Status: tp.Status}, nil
	} else if !errors.Is(err, ErrReferenceNotFound) {
		return nil, err
	}

	if ip, err := s.store.GetInspectionPaymentByReference(ctx, reference); err == nil {
		return &Verification{Reference: reference, Type: "inspection_payment", Status: ip.Status}, nil
	} else if !errors.Is(err, ErrReferenceNotFound) {
		return nil, err
	}

	return nil, ErrReferenceNotFound
}

// Simulate applies the success effect to a reference without a provider
// signature. Development only; the route is registered behind the
// simulation flag.
func (s *Service) Simulate(ctx context.Context, reference string) error {
	if _, err := s.Verify(ctx, reference); err != nil {
		return err
	}
	return s.HandleEvent(ctx, EventChargeSuccess, reference, "SIMULATED-"+idgen.Hex(6))
}

// Transactions is a user's payment history across both collections.
type Transactions struct {
	TokenPurchases     []*TokenPurchase     `json:"token_purchases"`
	InspectionPayments []*InspectionPayment `json:"inspection_payments"`
}

// ListByUser returns a user's payment history.
func (s *Service) ListByUser(ctx context.Context, userID string) (*Transactions, error) {
	tps, err := s.store.ListTokenPurchasesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ips, err := s.store.ListInspectionPaymentsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Transactions{TokenPurchases: tps, InspectionPayments: ips}, nil
}

// ListAll returns every payment record.
func (s *Service) ListAll(ctx context.Context) (*Transactions, error) {
	tps, err := s.store.ListTokenPurchases(ctx)
	if err != nil {
		return nil, err
	}
	ips, err := s.store.ListInspectionPayments(ctx)
	if err != nil {
		return nil, err
	}
	return &Transactions{TokenPurchases: tps, InspectionPayments: ips}, nil
}

// Revenue sums completed charges per collection.
func (s *Service) Revenue(ctx context.Context) (tokens int64, inspections int64, err error) {
	tokens, err = s.store.SumCompletedTokenPurchases(ctx)
	if err != nil {
		return 0, 0, err
	}
	inspections, err = s.store.SumCompletedInspectionPayments(ctx)
	if err != nil {
		return 0, 0, err
	}
	return tokens, inspections, nil
}
