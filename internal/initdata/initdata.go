// Package initdata parses and authenticates Telegram mini-app launch data.
//
// Launch data arrives as a percent-encoded query string. Every field except
// hash takes part in the signature, so the payload keeps the original
// key/value pairs around until verification is done.
package initdata

import (
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	FieldHash     = "hash"
	FieldUser     = "user"
	FieldQueryID  = "query_id"
	FieldAuthDate = "auth_date"
)

var (
	ErrEmpty       = errors.New("launch data is empty")
	ErrInvalidUTF8 = errors.New("launch data is not valid UTF-8")
)

// Payload is untrusted launch data. Only the first value of a repeated key
// is considered, matching what the platform sends.
type Payload struct {
	values url.Values
}

// User is the subset of the platform's user descriptor we rely on.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

// Parse decodes raw launch data. It never panics; malformed input yields an
// error and a nil payload.
func Parse(raw string) (*Payload, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmpty
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, err
	}
	for k, vs := range values {
		if !utf8.ValidString(k) {
			return nil, ErrInvalidUTF8
		}
		for _, v := range vs {
			if !utf8.ValidString(v) {
				return nil, ErrInvalidUTF8
			}
		}
	}
	return &Payload{values: values}, nil
}

func (p *Payload) Get(key string) string {
	return p.values.Get(key)
}

// Hash is the signature supplied with the payload.
func (p *Payload) Hash() string {
	return p.values.Get(FieldHash)
}

// DataCheckString is the canonical form the signature covers: every field
// but hash as key=value, sorted by key, newline separated.
func (p *Payload) DataCheckString() string {
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		if k == FieldHash {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+p.values.Get(k))
	}
	return strings.Join(lines, "\n")
}

// User decodes the embedded user descriptor.
func (p *Payload) User() (User, bool) {
	raw := p.values.Get(FieldUser)
	if raw == "" {
		return User{}, false
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return User{}, false
	}
	if u.ID <= 0 {
		return User{}, false
	}
	return u, true
}

// UserID extracts the numeric user identifier.
func (p *Payload) UserID() (int64, bool) {
	u, ok := p.User()
	if !ok {
		return 0, false
	}
	return u.ID, true
}

// QueryID returns the correlation token, verbatim.
func (p *Payload) QueryID() (string, bool) {
	q := p.values.Get(FieldQueryID)
	return q, q != ""
}

func (p *Payload) AuthDate() (time.Time, bool) {
	raw := p.values.Get(FieldAuthDate)
	if raw == "" {
		return time.Time{}, false
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || secs <= 0 {
		return time.Time{}, false
	}
	return time.Unix(secs, 0), true
}
