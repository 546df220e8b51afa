package entity

import "errors"

var (
	// ErrGatewayNotConfigured means no provider or credentials exist for a
	// channel. Permanent: the record fails without retry.
	ErrGatewayNotConfigured = errors.New("gateway not configured for channel")

	// ErrInvalidContact means the recipient cannot be reached on the channel
	// (no address, phone or push token). Permanent.
	ErrInvalidContact = errors.New("recipient contact missing or invalid")
)

// IsPermanent reports whether a delivery error must not be retried.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrGatewayNotConfigured) || errors.Is(err, ErrInvalidContact)
}
