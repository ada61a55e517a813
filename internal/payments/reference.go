package payments

import (
	"fmt"
	"net/url"
	"time"

	"github.com/ayotona/rentora/internal/idgen"
)

// Reference prefixes keep the two collections in disjoint namespaces.
const (
	PrefixToken      = "TOKEN"
	PrefixInspection = "INSP"
)

// NewReference mints a payment reference of the form
// PREFIX-YYYYMMDD-XXXXXXXX with an 8-char uppercase hex suffix.
func NewReference(prefix string) string {
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().UTC().Format("20060102"), idgen.UpperHex(4))
}

// CheckoutURL builds the hosted checkout link for a pending charge.
func CheckoutURL(base string, amount int64, reference, merchantKey string) string {
	return fmt.Sprintf("%s?amount=%d&currency=NGN&reference=%s&merchant=%s",
		base, amount, url.QueryEscape(reference), url.QueryEscape(merchantKey))
}
