// Package initdata implements verification of the signed payload a Telegram
// Mini App client presents with every request (window.Telegram.WebApp.initData).
//
// The payload is a query-string-encoded multiset of key/value pairs carrying,
// at minimum, `auth_date` (unix seconds), `user` (a JSON-encoded profile) and
// `hash` (a lowercase hex HMAC-SHA256 signature over every other field).
//
// Verification reproduces Telegram's construction exactly:
//
//  1. Remove `hash` from the pair set.
//  2. Sort the remaining keys bytewise ascending and join the decoded pairs
//     as "key=value" lines separated by "\n" (the data-check string).
//  3. Derive secret = HMAC-SHA256(key="WebAppData", msg=botToken).
//  4. Expect hash == hex(HMAC-SHA256(key=secret, msg=dataCheckString)).
//
// Both HMAC layers and the literal "WebAppData" label are fixed by the wire
// protocol; altering either breaks interoperability with real clients.
//
// The package also exposes the signing direction (Sign), used by tests and
// development tooling to fabricate valid tokens.
package initdata

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// secretLabel keys the first HMAC layer. Fixed by Telegram.
const secretLabel = "WebAppData"

// Verification errors. Handlers map these to an unauthorized outcome without
// leaking which stage failed beyond the generic message.
var (
	// ErrHashMissing is returned when the payload carries no `hash` field.
	ErrHashMissing = errors.New("initdata: hash is missing")

	// ErrSignatureInvalid is returned when the recomputed signature does not
	// match the presented `hash`.
	ErrSignatureInvalid = errors.New("initdata: signature mismatch")

	// ErrProfileMalformed is returned when the verified payload has no `user`
	// field or its value is not valid JSON.
	ErrProfileMalformed = errors.New("initdata: user profile missing or malformed")

	// ErrExpired is returned only when an explicit freshness window is
	// configured and auth_date falls outside it.
	ErrExpired = errors.New("initdata: auth_date outside freshness window")
)

// Fields is the verified key/value mapping of a token, hash excluded.
type Fields map[string]string

// User is the profile Telegram embeds in the `user` field.
type User struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	IsPremium    bool   `json:"is_premium,omitempty"`
}

// Principal is the trusted identity derived from a verified token. It exists
// only for the duration of the request that presented the token.
type Principal struct {
	// ID is the numeric Telegram identity (User.ID), the stable key for
	// ownership checks and user records.
	ID int64
	// User is the decoded profile.
	User User
	// AuthDate is the token issuance time as reported by the client payload.
	AuthDate time.Time
	// Raw preserves every signed field exactly as received.
	Raw Fields
}

// Verify checks raw against botToken and returns the signed fields on success.
//
// It fails with ErrHashMissing when no hash is present, ErrSignatureInvalid on
// any mismatch (including a single flipped byte anywhere in the payload), and
// a parse error when raw is not valid query-string encoding. The comparison is
// constant-time.
func Verify(botToken, raw string) (Fields, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("initdata: parse: %w", err)
	}

	presented := values.Get("hash")
	if presented == "" {
		return nil, ErrHashMissing
	}
	values.Del("hash")

	fields := make(Fields, len(values))
	for k, vv := range values {
		// Telegram never repeats keys; if a forged payload does, the first
		// value participates in the check string and the rest are dropped.
		fields[k] = vv[0]
	}

	expected := signFields(botToken, fields)
	if !hmac.Equal([]byte(expected), []byte(presented)) {
		return nil, ErrSignatureInvalid
	}
	return fields, nil
}

// Extract decodes the `user` field of verified fields into a Principal.
//
// It does not reject stale auth_date values; freshness is opt-in via
// CheckFreshness so existing clients keep working unchanged.
func Extract(fields Fields) (*Principal, error) {
	rawUser, ok := fields["user"]
	if !ok || rawUser == "" {
		return nil, ErrProfileMalformed
	}
	var u User
	if err := json.Unmarshal([]byte(rawUser), &u); err != nil {
		return nil, ErrProfileMalformed
	}
	if u.ID == 0 {
		return nil, ErrProfileMalformed
	}

	p := &Principal{ID: u.ID, User: u, Raw: fields}
	if ad, err := strconv.ParseInt(fields["auth_date"], 10, 64); err == nil {
		p.AuthDate = time.Unix(ad, 0).UTC()
	}
	return p, nil
}

// CheckFreshness rejects principals whose auth_date is older than maxAge.
// A maxAge of zero disables the check entirely.
func CheckFreshness(p *Principal, maxAge time.Duration, now time.Time) error {
	if maxAge <= 0 {
		return nil
	}
	if p.AuthDate.IsZero() || now.Sub(p.AuthDate) > maxAge {
		return ErrExpired
	}
	return nil
}

// Sign computes the signature for fields under botToken and returns the full
// query-string-encoded token including the hash. The inverse of Verify:
// Verify(token, Sign(token, f)) always succeeds and yields exactly f.
func Sign(botToken string, fields Fields) string {
	h := signFields(botToken, fields)
	v := url.Values{}
	for k, val := range fields {
		v.Set(k, val)
	}
	v.Set("hash", h)
	return v.Encode()
}

// signFields builds the canonical data-check string and runs the two HMAC
// layers, returning the lowercase hex signature.
func signFields(botToken string, fields Fields) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(fields[k])
	}

	secret := hmac.New(sha256.New, []byte(secretLabel))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(b.String()))
	return hex.EncodeToString(mac.Sum(nil))
}
