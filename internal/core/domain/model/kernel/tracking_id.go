package kernel

import (
	"crypto/rand"
	"math/big"

	"skycourier/internal/pkg/errs"
)

const (
	trackingIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	trackingIDLength   = 10
)

// NewTrackingID generates a 10-character public tracking identifier drawn
// from A-Z0-9. Uniqueness is enforced at the persistence layer; callers
// retry on collision.
func NewTrackingID() (string, error) {
	buf := make([]byte, trackingIDLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(trackingIDAlphabet))))
		if err != nil {
			return "", errs.NewValueIsInvalidErrorWithCause("tracking id", err)
		}
		buf[i] = trackingIDAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// ValidateTrackingID checks the public tracking identifier shape.
func ValidateTrackingID(id string) error {
	if len(id) != trackingIDLength {
		return errs.NewValueIsInvalidError("tracking id")
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return errs.NewValueIsInvalidError("tracking id")
		}
	}
	return nil
}
