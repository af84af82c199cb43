package currency

import (
	"context"
	"fmt"
	"strings"

	"github.com/MikeRez0/smmrefund/internal/adapter/config"
	"github.com/MikeRez0/smmrefund/internal/core/domain"
	"github.com/govalues/decimal"
)

// ledgerScale is the precision balances are kept in.
const ledgerScale = 2

// StaticConverter converts provider amounts using a fixed rate table.
type StaticConverter struct {
	from string
	to   string
	rate decimal.Decimal
}

func NewStaticConverter(cfg *config.Ledger) (*StaticConverter, error) {
	from := strings.ToUpper(strings.TrimSpace(cfg.ProviderCurrency))
	to := strings.ToUpper(strings.TrimSpace(cfg.LedgerCurrency))
	if from == "" || to == "" {
		return nil, fmt.Errorf("currency codes are required")
	}

	c := &StaticConverter{from: from, to: to, rate: decimal.One}
	if from == to {
		return c, nil
	}

	rates, err := ParseRates(cfg.Rates)
	if err != nil {
		return nil, err
	}
	rate, ok := rates[from]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCurrencyRate, from)
	}
	c.rate = rate

	return c, nil
}

// ParseRates reads "USD:92.5,EUR:100" into a rate table.
func ParseRates(s string) (map[string]decimal.Decimal, error) {
	rates := make(map[string]decimal.Decimal)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		code, value, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("bad rate %q", pair)
		}
		rate, err := decimal.Parse(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("bad rate %q: %w", pair, err)
		}
		if !rate.IsPos() {
			return nil, fmt.Errorf("bad rate %q: must be positive", pair)
		}
		rates[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	return rates, nil
}

func (c *StaticConverter) Convert(_ context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	if c.from == c.to {
		return amount, nil
	}
	v, err := amount.Mul(c.rate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("convert %s %s: %w", amount, c.from, err)
	}
	return v.Trunc(ledgerScale), nil
}

func (c *StaticConverter) ProviderCurrency() string {
	return c.from
}

func (c *StaticConverter) LedgerCurrency() string {
	return c.to
}
