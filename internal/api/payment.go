package api

import (
	"errors"
	"strings"
)

// PaymentReceiptHeader carries the caller's proof of payment for paid
// endpoints. Settlement happens outside this service; we only check the
// receipt's presence or accept everything depending on mode.
const PaymentReceiptHeader = "X-Payment-Receipt"

var ErrPaymentRequired = errors.New("payment receipt required")

// PaymentVerifier decides whether an analysis request is authorized.
// Implementations never settle funds; they only accept or reject receipts.
type PaymentVerifier interface {
	Verify(receipt string) error
}

// openVerifier accepts every request. Default when PAYMENT_MODE is unset.
type openVerifier struct{}

func (openVerifier) Verify(string) error { return nil }

// receiptVerifier requires a non-empty receipt header. It stands in for a
// real settlement integration until one exists.
type receiptVerifier struct{}

func (receiptVerifier) Verify(receipt string) error {
	if strings.TrimSpace(receipt) == "" {
		return ErrPaymentRequired
	}
	return nil
}

// VerifierForMode maps the PAYMENT_MODE setting to a verifier. Unknown
// modes fall back to open access rather than locking the service.
func VerifierForMode(mode string) PaymentVerifier {
	if strings.EqualFold(strings.TrimSpace(mode), "receipt") {
		return receiptVerifier{}
	}
	return openVerifier{}
}
