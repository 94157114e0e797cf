package initdata

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

// webAppKeyLabel keys the first HMAC of the Web App validation scheme:
// secret_key = HMAC_SHA256(key="WebAppData", msg=bot_token).
const webAppKeyLabel = "WebAppData"

// VerificationResult carries both digests for diagnostics only.
type VerificationResult struct {
	Valid           bool
	Reason          string
	Received        string
	Computed        string
	DataCheckString string
}

// Verifier checks launch data against one bot token.
type Verifier struct {
	secretKey []byte
	maxAge    time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// NewVerifier derives the signing key once. maxAge of zero disables the
// auth_date freshness check.
func NewVerifier(botToken string, maxAge time.Duration, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{
		secretKey: SecretKey(botToken),
		maxAge:    maxAge,
		now:       time.Now,
		logger:    logger,
	}
}

// SecretKey derives the signing key from a bot token.
func SecretKey(botToken string) []byte {
	mac := hmac.New(sha256.New, []byte(webAppKeyLabel))
	mac.Write([]byte(botToken))
	return mac.Sum(nil)
}

// Verify reports whether raw was signed with botToken.
func Verify(raw, botToken string) bool {
	return NewVerifier(botToken, 0, nil).Verify(raw).Valid
}

func (v *Verifier) Verify(raw string) VerificationResult {
	p, err := Parse(raw)
	if err != nil {
		return v.reject(VerificationResult{Reason: err.Error()})
	}
	return v.VerifyPayload(p)
}

// VerifyPayload is Verify for an already parsed payload.
func (v *Verifier) VerifyPayload(p *Payload) VerificationResult {
	res := VerificationResult{
		Received:        strings.ToLower(p.Hash()),
		DataCheckString: p.DataCheckString(),
	}
	if res.Received == "" {
		res.Reason = "missing hash"
		return v.reject(res)
	}

	res.Computed = digest(v.secretKey, res.DataCheckString)

	if _, err := hex.DecodeString(res.Received); err != nil {
		res.Reason = "hash is not hex"
		return v.reject(res)
	}
	if !hmac.Equal([]byte(res.Computed), []byte(res.Received)) {
		res.Reason = "hash mismatch"
		return v.reject(res)
	}

	if v.maxAge > 0 {
		authDate, ok := p.AuthDate()
		if !ok || v.now().Sub(authDate) > v.maxAge {
			res.Reason = "auth_date expired"
			return v.reject(res)
		}
	}

	res.Valid = true
	v.logger.Debug("launch data verified", "received", res.Received)
	return res
}

func (v *Verifier) reject(res VerificationResult) VerificationResult {
	v.logger.Debug("launch data rejected",
		"reason", res.Reason,
		"data_check_string", res.DataCheckString,
		"received", res.Received,
		"computed", res.Computed,
	)
	return res
}

// Sign produces the hash the platform would attach to values. The hash key
// in values, if any, is ignored.
func Sign(values url.Values, botToken string) string {
	return digest(SecretKey(botToken), (&Payload{values: values}).DataCheckString())
}

func digest(key []byte, data string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}
