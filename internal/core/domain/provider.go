package domain

// ProviderReport is the provider's view of one order, already normalized.
type ProviderReport struct {
	ExternalOrderID string
	Status          OrderStatus
	Remains         *int64
	StartCount      *int64
}

// ProviderResult holds either a report or the error for one external id of a
// multi-status request.
type ProviderResult struct {
	Report *ProviderReport
	Err    error
}
