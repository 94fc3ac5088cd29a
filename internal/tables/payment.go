package tables

import (
	"sync"

	"github.com/mvgarcia/taproom/pkg/brewapi"
	"github.com/mvgarcia/taproom/pkg/enums"
	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
	"github.com/mvgarcia/taproom/pkg/money"
)

// SharePayment records one settled share of a split check.
type SharePayment struct {
	Amount money.Cents
	Method enums.PaymentMethod
}

// PaymentSession tracks a check being split across n payers. The share
// amounts come from money.Split, so they always sum to the check total
// and differ by at most one cent.
type PaymentSession struct {
	mu        sync.Mutex
	tableSlug string
	total     money.Cents
	shares    []money.Cents
	payments  []SharePayment
}

// NewPaymentSession splits the table's open check across people payers.
func NewPaymentSession(table brewapi.Table, people int) (*PaymentSession, error) {
	total := table.Total()
	if total <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "table has no open check")
	}
	shares, err := money.Split(total, people)
	if err != nil {
		return nil, err
	}
	return &PaymentSession{
		tableSlug: table.Slug,
		total:     total,
		shares:    shares,
	}, nil
}

// TableSlug returns the mesa this session settles.
func (p *PaymentSession) TableSlug() string {
	return p.tableSlug
}

// Total returns the check total.
func (p *PaymentSession) Total() money.Cents {
	return p.total
}

// Shares returns the per-payer amounts.
func (p *PaymentSession) Shares() []money.Cents {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]money.Cents, len(p.shares))
	copy(out, p.shares)
	return out
}

// NextShare returns the amount the next payer owes.
func (p *PaymentSession) NextShare() (money.Cents, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.payments) >= len(p.shares) {
		return 0, false
	}
	return p.shares[len(p.payments)], true
}

// ConfirmShare settles the next share with the given method.
func (p *PaymentSession) ConfirmShare(method enums.PaymentMethod) (SharePayment, error) {
	if !method.IsValid() {
		return SharePayment{}, pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.payments) >= len(p.shares) {
		return SharePayment{}, pkgerrors.New(pkgerrors.CodeStateConflict, "check is already fully paid")
	}
	payment := SharePayment{Amount: p.shares[len(p.payments)], Method: method}
	p.payments = append(p.payments, payment)
	return payment, nil
}

// Paid returns how many shares are settled.
func (p *PaymentSession) Paid() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.payments)
}

// AmountPaid sums the settled shares.
func (p *PaymentSession) AmountPaid() money.Cents {
	p.mu.Lock()
	defer p.mu.Unlock()
	var total money.Cents
	for _, payment := range p.payments {
		total += payment.Amount
	}
	return total
}

// Remaining returns what is still owed on the check.
func (p *PaymentSession) Remaining() money.Cents {
	return p.total - p.AmountPaid()
}

// Complete reports whether every share is settled.
func (p *PaymentSession) Complete() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.payments) == len(p.shares)
}
