package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

const correlationPrefix = "vpnshop.v1:"

// legacyHiddenMessage matches invoices created before the structured payload
// existed. The whole field must be the label and a single number.
var legacyHiddenMessage = regexp.MustCompile(`^User ID:\s*(\d{1,19})$`)

// Correlation ties an asynchronous gateway callback back to the buyer.
type Correlation struct {
	UserID int64
	Plan   string
}

// Encode renders the token attached to the invoice payload.
func (c Correlation) Encode() string {
	v := url.Values{}
	v.Set("uid", strconv.FormatInt(c.UserID, 10))
	if c.Plan != "" {
		v.Set("plan", c.Plan)
	}
	return correlationPrefix + v.Encode()
}

// HiddenMessage is shown to the buyer by the gateway after payment.
func (c Correlation) HiddenMessage() string {
	return fmt.Sprintf("User ID: %d", c.UserID)
}

// ParseCorrelation decodes a token produced by Encode.
func ParseCorrelation(token string) (Correlation, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(token), correlationPrefix)
	if !ok {
		return Correlation{}, false
	}
	v, err := url.ParseQuery(rest)
	if err != nil {
		return Correlation{}, false
	}
	uid, ok := parseUserID(v.Get("uid"))
	if !ok {
		return Correlation{}, false
	}
	return Correlation{UserID: uid, Plan: v.Get("plan")}, true
}

// ResolveCorrelation prefers the structured payload and falls back to the
// legacy "User ID: <n>" hidden message.
func ResolveCorrelation(inv Invoice) (Correlation, bool) {
	if c, ok := ParseCorrelation(inv.Payload); ok {
		return c, true
	}
	m := legacyHiddenMessage.FindStringSubmatch(strings.TrimSpace(inv.HiddenMessage))
	if m == nil {
		return Correlation{}, false
	}
	uid, ok := parseUserID(m[1])
	if !ok {
		return Correlation{}, false
	}
	return Correlation{UserID: uid}, true
}

func parseUserID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
