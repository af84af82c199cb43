package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInternal = errors.New("internal error")

	// * Data errors.
	ErrDataNotFound    = errors.New("data not found")
	ErrConflictingData = errors.New("data conflicts with existing data in unique column")

	// * Communication errors.
	ErrBadRequest = errors.New("error parsing request")

	// * Authority errors.
	ErrTokenCreation              = errors.New("error creating token")
	ErrExpiredToken               = errors.New("access token has expired")
	ErrInvalidToken               = errors.New("access token is invalid")
	ErrInvalidCredentials         = errors.New("invalid operator or secret")
	ErrEmptyAuthorizationHeader   = errors.New("authorization header is not provided")
	ErrInvalidAuthorizationHeader = errors.New("authorization header format is invalid")
	ErrInvalidAuthorizationType   = errors.New("authorization type is not supported")

	// * Provider errors. Transient, the order is left unchanged.
	ErrProviderUnavailable   = errors.New("provider unavailable")
	ErrProviderRateLimited   = errors.New("provider rate limit exceeded")
	ErrProviderOrder         = errors.New("provider rejected order")
	ErrUnknownProviderStatus = errors.New("unknown provider status")

	// * Settlement outcomes reported as "already processed".
	ErrAlreadySettled = errors.New("order already settled")
	ErrStatusChanged  = errors.New("order status changed concurrently")

	// * Data invariant violations. Rejected before any settlement.
	ErrDataInvariant       = errors.New("order data invariant violated")
	ErrInvalidRemains      = fmt.Errorf("%w: remains outside [0, quantity]", ErrDataInvariant)
	ErrInvalidCharge       = fmt.Errorf("%w: charge must be positive", ErrDataInvariant)
	ErrInvalidQuantity     = fmt.Errorf("%w: quantity must be positive", ErrDataInvariant)
	ErrMissingExternalID   = fmt.Errorf("%w: order has no external id", ErrDataInvariant)
	ErrRefundExceedsCharge = fmt.Errorf("%w: refund exceeds charge", ErrDataInvariant)
	ErrInvalidAmount       = fmt.Errorf("%w: negative settlement amount", ErrDataInvariant)

	// * Business errors.
	ErrInvalidStatus    = errors.New("order status is not valid")
	ErrOrderNotEligible = errors.New("order is not eligible for reconciliation")
	ErrCurrencyRate     = errors.New("no conversion rate for currency")
)

// AlreadyProcessed reports errors that mean another settlement already won.
func AlreadyProcessed(err error) bool {
	return errors.Is(err, ErrAlreadySettled) || errors.Is(err, ErrStatusChanged)
}
