package provider

import (
	"fmt"
	"strings"

	"github.com/MikeRez0/smmrefund/internal/core/domain"
)

var statusMap = map[string]domain.OrderStatus{
	"pending":    domain.OrderStatusPending,
	"processing": domain.OrderStatusProcessing,
	"inprogress": domain.OrderStatusInProgress,
	"completed":  domain.OrderStatusCompleted,
	"partial":    domain.OrderStatusPartial,
	"canceled":   domain.OrderStatusCanceled,
	"cancelled":  domain.OrderStatusCanceled,
	"refunded":   domain.OrderStatusRefunded,
}

// NormalizeStatus maps the panel's free-form status onto the order status set.
func NormalizeStatus(raw string) (domain.OrderStatus, error) {
	key := strings.ToLower(raw)
	key = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(key)
	if s, ok := statusMap[key]; ok {
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownProviderStatus, raw)
}
