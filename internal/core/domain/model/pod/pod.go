// Package pod contains the proof-of-delivery record attached to a delivered
// order. OTP codes are never stored; only an HMAC-SHA256 hash is kept so a
// presented code can be verified without the record leaking it.
package pod

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/pkg/errs"
)

// ErrProofIsNotConstructed is returned when a Proof instance was not created
// through NewProof or RestoreProof.
var ErrProofIsNotConstructed = errors.New("Proof must be created via NewProof or RestoreProof")

// Method is how delivery was proven.
type Method string

const (
	MethodPhoto           Method = "PHOTO"
	MethodOTP             Method = "OTP"
	MethodOperatorConfirm Method = "OPERATOR_CONFIRM"
)

// MethodFromString parses the wire representation of a proof method.
func MethodFromString(s string) (Method, error) {
	switch Method(s) {
	case MethodPhoto, MethodOTP, MethodOperatorConfirm:
		return Method(s), nil
	}
	return "", errs.NewValueIsInvalidError("method")
}

func (m Method) Validate() error {
	_, err := MethodFromString(string(m))
	return err
}

// Attributes carries the method-specific evidence supplied at creation.
// Exactly one of the evidence fields is required, matching the method.
type Attributes struct {
	PhotoURL    string
	OTPCode     string
	ConfirmedBy string
	Notes       string
}

// Proof is one proof-of-delivery record. Records are immutable once created.
type Proof struct {
	id          kernel.UUID
	orderID     kernel.UUID
	method      Method
	photoURL    string
	otpHash     string
	confirmedBy string
	notes       string
	createdAt   time.Time

	isConstructed bool
}

// HashOTP computes the stored form of an OTP code.
func HashOTP(secret, otpCode string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(otpCode))
	return hex.EncodeToString(mac.Sum(nil))
}

// NewProof creates a proof record for an order, validating that the evidence
// required by the method is present. otpSecret keys the OTP hash.
func NewProof(id, orderID kernel.UUID, method Method, attrs Attributes, otpSecret string) (*Proof, error) {
	if err := id.Validate(); err != nil {
		return nil, errs.NewValueIsRequiredErrorWithCause("id", err)
	}
	if err := orderID.Validate(); err != nil {
		return nil, errs.NewValueIsRequiredErrorWithCause("orderId", err)
	}
	if err := method.Validate(); err != nil {
		return nil, err
	}

	switch method {
	case MethodPhoto:
		if attrs.PhotoURL == "" {
			return nil, errs.NewValueIsRequiredError("photoUrl")
		}
	case MethodOTP:
		if attrs.OTPCode == "" {
			return nil, errs.NewValueIsRequiredError("otpCode")
		}
	case MethodOperatorConfirm:
		if attrs.ConfirmedBy == "" {
			return nil, errs.NewValueIsRequiredError("confirmedBy")
		}
	}

	p := &Proof{
		id:          id,
		orderID:     orderID,
		method:      method,
		photoURL:    attrs.PhotoURL,
		confirmedBy: attrs.ConfirmedBy,
		notes:       attrs.Notes,
		createdAt:   time.Now().UTC(),

		isConstructed: true,
	}
	if attrs.OTPCode != "" {
		p.otpHash = HashOTP(otpSecret, attrs.OTPCode)
	}
	return p, nil
}

// RestoreProof reconstructs a proof record from persisted state.
func RestoreProof(
	id, orderID kernel.UUID,
	method Method,
	photoURL, otpHash, confirmedBy, notes string,
	createdAt time.Time,
) (*Proof, error) {
	if err := method.Validate(); err != nil {
		return nil, err
	}
	return &Proof{
		id:          id,
		orderID:     orderID,
		method:      method,
		photoURL:    photoURL,
		otpHash:     otpHash,
		confirmedBy: confirmedBy,
		notes:       notes,
		createdAt:   createdAt,

		isConstructed: true,
	}, nil
}

func (p *Proof) Validate() error {
	if !p.isConstructed {
		return ErrProofIsNotConstructed
	}
	return nil
}

func (p *Proof) ID() kernel.UUID      { return p.id }
func (p *Proof) OrderID() kernel.UUID { return p.orderID }
func (p *Proof) Method() Method       { return p.method }
func (p *Proof) PhotoURL() string     { return p.photoURL }
func (p *Proof) OTPHash() string      { return p.otpHash }
func (p *Proof) ConfirmedBy() string  { return p.confirmedBy }
func (p *Proof) Notes() string        { return p.notes }
func (p *Proof) CreatedAt() time.Time { return p.createdAt }

// VerifyOTP checks a presented code against the stored hash in constant
// time.
func (p *Proof) VerifyOTP(secret, otpCode string) bool {
	if p.otpHash == "" {
		return false
	}
	return hmac.Equal([]byte(p.otpHash), []byte(HashOTP(secret, otpCode)))
}
