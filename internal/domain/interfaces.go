package domain

import "context"

// RateSource fetches a spot exchange rate between two fiat currency codes.
// Implementations recover nothing: any network, status or parse problem is
// returned as an error so the caller can fall through to the next source.
type RateSource interface {
	// Name identifies the source in logs and RateResult.Source.
	Name() string
	// GetRate returns the FROM->TO rate. Both codes are fiat (stablecoins
	// are normalized before a source is consulted).
	GetRate(ctx context.Context, fromCurrency, toCurrency string) (float64, error)
}

// TransactionType distinguishes funding direction for margin and fee policy.
type TransactionType string

const (
	// TransactionCashIn converts fiat into a stablecoin at the raw market rate.
	TransactionCashIn TransactionType = "cashin"
	// TransactionCashOut converts a stablecoin back into fiat; carries margin and fee.
	TransactionCashOut TransactionType = "cashout"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionCashIn || t == TransactionCashOut
}
