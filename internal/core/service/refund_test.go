package service_test

import (
	"testing"

	"github.com/MikeRez0/smmrefund/internal/core/domain"
	"github.com/MikeRez0/smmrefund/internal/core/service"
	"github.com/govalues/decimal"
	"github.com/stretchr/testify/assert"
)

func remains(v int64) *int64 {
	return &v
}

func TestDecideRefund(t *testing.T) {
	type decideRefundTest struct {
		name      string
		in        domain.RefundInput
		expRatio  string
		expAmount string
		expStatus domain.OrderStatus
	}

	tests := []decideRefundTest{
		{
			name: "partial quarter undelivered",
			in: domain.RefundInput{
				PreviousStatus: domain.OrderStatusProcessing, ProviderStatus: domain.OrderStatusPartial,
				Remains: remains(250), Quantity: 1000, Charge: decimal.MustParse("10.00"),
			},
			expRatio: "0.25", expAmount: "2.50", expStatus: domain.OrderStatusPartial,
		},
		{
			name: "canceled ignores remains",
			in: domain.RefundInput{
				PreviousStatus: domain.OrderStatusProcessing, ProviderStatus: domain.OrderStatusCanceled,
				Remains: remains(17), Quantity: 500, Charge: decimal.MustParse("3.75"),
			},
			expRatio: "1", expAmount: "3.75", expStatus: domain.OrderStatusCanceled,
		},
		{
			name: "canceled without remains",
			in: domain.RefundInput{
				PreviousStatus: domain.OrderStatusInProgress, ProviderStatus: domain.OrderStatusCanceled,
				Quantity: 500, Charge: decimal.MustParse("3.75"),
			},
			expRatio: "1", expAmount: "3.75", expStatus: domain.OrderStatusCanceled,
		},
		{
			name: "partial nothing delivered",
			in: domain.RefundInput{
				PreviousStatus: domain.OrderStatusPending, ProviderStatus: domain.OrderStatusPartial,
				Remains: remains(1000), Quantity: 1000, Charge: decimal.MustParse("10.00"),
			},
			expRatio: "1", expAmount: "10.00", expStatus: domain.OrderStatusPartial,
		},
		{
			name: "partial already settled",
			in: domain.RefundInput{
				PreviousStatus: domain.OrderStatusPartial, ProviderStatus: domain.OrderStatusPartial,
				Remains: remains(400), Quantity: 1000, Charge: decimal.MustParse("10.00"),
			},
			expRatio: "0", expAmount: "0", expStatus: domain.OrderStatusPartial,
		},
		{
			name: "canceled after partial",
			in: domain.RefundInput{
				PreviousStatus: domain.OrderStatusPartial, ProviderStatus: domain.OrderStatusCanceled,
				Remains: remains(400), Quantity: 1000, Charge: decimal.MustParse("10.00"),
			},
			expRatio: "0", expAmount: "0", expStatus: domain.OrderStatusCanceled,
		},
		{
			name: "canceled again",
			in: domain.RefundInput{
				PreviousStatus: domain.OrderStatusCanceled, ProviderStatus: domain.OrderStatusCanceled,
				Quantity: 1000, Charge: decimal.MustParse("10.00"),
			},
			expRatio: "0", expAmount: "0", expStatus: domain.OrderStatusCanceled,
		},
		{
			name: "refunded never pays",
			in: domain.RefundInput{
				PreviousStatus: domain.OrderStatusRefunded, ProviderStatus: domain.OrderStatusCanceled,
				Quantity: 1000, Charge: decimal.MustParse("10.00"),
			},
			expRatio: "0", expAmount: "0", expStatus: domain.OrderStatusCanceled,
		},
		{
			name: "partial zero remains",
			in: domain.RefundInput{
				PreviousStatus: domain.OrderStatusInProgress, ProviderStatus: domain.OrderStatusPartial,
				Remains: remains(0), Quantity: 1000, Charge: decimal.MustParse("10.00"),
			},
			expRatio: "0", expAmount: "0", expStatus: domain.OrderStatusPartial,
		},
		{
			name: "partial unknown remains",
			in: domain.RefundInput{
				PreviousStatus: domain.OrderStatusInProgress, ProviderStatus: domain.OrderStatusPartial,
				Quantity: 1000, Charge: decimal.MustParse("10.00"),
			},
			expRatio: "0", expAmount: "0", expStatus: domain.OrderStatusPartial,
		},
		{
			name: "partial remains above quantity clamps",
			in: domain.RefundInput{
				PreviousStatus: domain.OrderStatusInProgress, ProviderStatus: domain.OrderStatusPartial,
				Remains: remains(1500), Quantity: 1000, Charge: decimal.MustParse("10.00"),
			},
			expRatio: "1", expAmount: "10.00", expStatus: domain.OrderStatusPartial,
		},
		{
			name: "partial negative remains",
			in: domain.RefundInput{
				PreviousStatus: domain.OrderStatusInProgress, ProviderStatus: domain.OrderStatusPartial,
				Remains: remains(-5), Quantity: 1000, Charge: decimal.MustParse("10.00"),
			},
			expRatio: "0", expAmount: "0", expStatus: domain.OrderStatusPartial,
		},
		{
			name: "partial amount truncated",
			in: domain.RefundInput{
				PreviousStatus: domain.OrderStatusInProgress, ProviderStatus: domain.OrderStatusPartial,
				Remains: remains(1), Quantity: 8, Charge: decimal.MustParse("1.00"),
			},
			expRatio: "0.125", expAmount: "0.12", expStatus: domain.OrderStatusPartial,
		},
		{
			name: "completed",
			in: domain.RefundInput{
				PreviousStatus: domain.OrderStatusInProgress, ProviderStatus: domain.OrderStatusCompleted,
				Remains: remains(0), Quantity: 1000, Charge: decimal.MustParse("10.00"),
			},
			expRatio: "0", expAmount: "0", expStatus: domain.OrderStatusCompleted,
		},
		{
			name: "in progress",
			in: domain.RefundInput{
				PreviousStatus: domain.OrderStatusPending, ProviderStatus: domain.OrderStatusInProgress,
				Remains: remains(600), Quantity: 1000, Charge: decimal.MustParse("10.00"),
			},
			expRatio: "0", expAmount: "0", expStatus: domain.OrderStatusInProgress,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d := service.DecideRefund(test.in)

			assert.True(t, decimal.MustParse(test.expRatio).Equal(d.Ratio), "ratio %s", d.Ratio)
			assert.True(t, decimal.MustParse(test.expAmount).Equal(d.Amount), "amount %s", d.Amount)
			assert.Equal(t, test.expStatus, d.NewStatus)
			assert.True(t, d.Amount.Cmp(test.in.Charge) <= 0)
			assert.False(t, d.Ratio.IsNeg())
			assert.True(t, d.Ratio.Cmp(decimal.One) <= 0)
			assert.Equal(t, d.Amount.IsPos(), d.Reason != "")
		})
	}
}
