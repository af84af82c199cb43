package port

import (
	"context"

	"github.com/govalues/decimal"
)

//go:generate mockgen -source=currency.go -destination=mock/currency.go -package=mock
type CurrencyConverter interface {
	// Convert turns an amount in the provider currency into the ledger currency.
	Convert(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error)
	ProviderCurrency() string
	LedgerCurrency() string
}
