package initdata_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/DanielPopoola/vpnshop-gateway/internal/initdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const botToken = "123456:TEST-token"

func launchValues(userJSON, queryID string, authDate time.Time) url.Values {
	v := url.Values{}
	v.Set("user", userJSON)
	v.Set("auth_date", strconv.FormatInt(authDate.Unix(), 10))
	if queryID != "" {
		v.Set("query_id", queryID)
	}
	return v
}

func signed(v url.Values, token string) string {
	v.Set("hash", initdata.Sign(v, token))
	return v.Encode()
}

func TestVerify_AcceptsSignedPayload(t *testing.T) {
	raw := signed(launchValues(`{"id":42,"first_name":"Ann"}`, "q1", time.Now()), botToken)

	assert.True(t, initdata.Verify(raw, botToken))
}

func TestVerify_MatchesPublishedScheme(t *testing.T) {
	v := url.Values{}
	v.Set("auth_date", "1700000000")
	v.Set("query_id", "AAF")
	v.Set("user", `{"id":42}`)

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte("auth_date=1700000000\nquery_id=AAF\nuser={\"id\":42}"))
	v.Set("hash", hex.EncodeToString(mac.Sum(nil)))

	assert.True(t, initdata.Verify(v.Encode(), botToken))
}

func TestVerify_RejectsWrongToken(t *testing.T) {
	raw := signed(launchValues(`{"id":42}`, "q1", time.Now()), botToken)

	assert.False(t, initdata.Verify(raw, "other:token"))
}

func TestVerify_SingleCharacterFlipInvalidates(t *testing.T) {
	v := launchValues(`{"id":42,"username":"ann"}`, "q1", time.Unix(1700000000, 0))
	hash := initdata.Sign(v, botToken)

	for key := range v {
		original := v.Get(key)
		for i := 0; i < len(original); i++ {
			b := []byte(original)
			if b[i] == 'x' {
				b[i] = 'y'
			} else {
				b[i] = 'x'
			}

			tampered := url.Values{}
			for k := range v {
				tampered.Set(k, v.Get(k))
			}
			tampered.Set(key, string(b))
			tampered.Set("hash", hash)

			assert.False(t, initdata.Verify(tampered.Encode(), botToken), "%s[%d]", key, i)
		}
	}
}

func TestVerify_MalformedInputNeverPasses(t *testing.T) {
	valid := launchValues(`{"id":42}`, "", time.Now())
	noHash := valid.Encode()

	cases := map[string]string{
		"empty":        "",
		"missing hash": noHash,
		"non hex hash": noHash + "&hash=zzzz",
		"bad escape":   "user=%zz&hash=00",
		"invalid utf8": "user=%ff%fe&hash=00",
		"hash only":    "hash=" + initdata.Sign(url.Values{}, botToken) + "&x=%",
	}
	for name, raw := range cases {
		assert.NotPanics(t, func() {
			assert.False(t, initdata.Verify(raw, botToken), name)
		})
	}
}

func TestVerifier_MaxAge(t *testing.T) {
	raw := signed(launchValues(`{"id":42}`, "q1", time.Now().Add(-2*time.Hour)), botToken)

	strict := initdata.NewVerifier(botToken, time.Hour, nil)
	res := strict.Verify(raw)
	assert.False(t, res.Valid)
	assert.Equal(t, "auth_date expired", res.Reason)

	lenient := initdata.NewVerifier(botToken, 0, nil)
	assert.True(t, lenient.Verify(raw).Valid)
}

func TestVerifier_ResultCarriesDigests(t *testing.T) {
	v := launchValues(`{"id":42}`, "q1", time.Unix(1700000000, 0))
	v.Set("hash", "00")

	res := initdata.NewVerifier(botToken, 0, nil).Verify(v.Encode())

	assert.False(t, res.Valid)
	assert.Equal(t, "00", res.Received)
	assert.Len(t, res.Computed, 64)
	assert.Equal(t, "auth_date=1700000000\nquery_id=q1\nuser={\"id\":42}", res.DataCheckString)
}

func TestPayload_Extraction(t *testing.T) {
	t.Run("user id and query id", func(t *testing.T) {
		p, err := initdata.Parse(signed(launchValues(`{"id":42,"language_code":"en"}`, "q1", time.Now()), botToken))
		require.NoError(t, err)

		id, ok := p.UserID()
		assert.True(t, ok)
		assert.Equal(t, int64(42), id)

		q, ok := p.QueryID()
		assert.True(t, ok)
		assert.Equal(t, "q1", q)

		u, ok := p.User()
		assert.True(t, ok)
		assert.Equal(t, "en", u.LanguageCode)
	})

	t.Run("missing query id", func(t *testing.T) {
		p, err := initdata.Parse(launchValues(`{"id":42}`, "", time.Now()).Encode())
		require.NoError(t, err)

		_, ok := p.QueryID()
		assert.False(t, ok)
	})

	t.Run("user descriptor problems are not found", func(t *testing.T) {
		for _, userJSON := range []string{"", "not json", `{"id":"42"}`, `{"id":0}`, `{"id":-1}`, `{"name":"x"}`, `{"id":4.2}`} {
			p, err := initdata.Parse(launchValues(userJSON, "", time.Now()).Encode())
			require.NoError(t, err)

			_, ok := p.UserID()
			assert.False(t, ok, userJSON)
		}
	})
}
