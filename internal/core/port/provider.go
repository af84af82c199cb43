package port

import (
	"context"

	"github.com/MikeRez0/smmrefund/internal/core/domain"
)

//go:generate mockgen -source=provider.go -destination=mock/provider.go -package=mock
type ProviderClient interface {
	Status(ctx context.Context, externalID string) (*domain.ProviderReport, error)
	// StatusMany returns an entry for every requested id.
	StatusMany(ctx context.Context, externalIDs []string) map[string]domain.ProviderResult
	Refill(ctx context.Context, externalID string) (string, error)
}
