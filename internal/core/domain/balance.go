package domain

import "github.com/govalues/decimal"

type Balance struct {
	UserID  int64
	Current decimal.Decimal
}
