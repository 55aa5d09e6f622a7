// Package oauth1 implements HMAC-SHA1 request signing for OAuth 1.0a
// style APIs. Everything here is a pure string transformation so the
// signature can be verified against fixed vectors without any network.
package oauth1

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"
)

// PercentEncode escapes a string per RFC 3986 section 2.1. Unreserved
// characters (ALPHA, DIGIT, "-", ".", "_", "~") pass through; everything
// else becomes an uppercase %XX escape.
func PercentEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
		} else {
			b.WriteByte('%')
			b.WriteString(strings.ToUpper(hex.EncodeToString([]byte{c})))
		}
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') ||
		(c >= '0' && c <= '9') || c == '-' || c == '.' || c == '_' || c == '~'
}

// BaseString builds the canonical signature base string:
// METHOD&enc(url)&enc(sorted-and-joined-params). The URL must not carry a
// query string; query parameters belong in params.
func BaseString(method, rawURL string, params map[string]string) string {
	pairs := make([]string, 0, len(params))
	for k, v := range params {
		pairs = append(pairs, PercentEncode(k)+"="+PercentEncode(v))
	}
	sort.Strings(pairs)
	joined := strings.Join(pairs, "&")

	return strings.ToUpper(method) + "&" + PercentEncode(rawURL) + "&" + PercentEncode(joined)
}

// SigningKey derives the HMAC key from the two secrets. The token secret
// may be empty (two-legged requests); the trailing ampersand stays.
func SigningKey(consumerSecret, tokenSecret string) string {
	return PercentEncode(consumerSecret) + "&" + PercentEncode(tokenSecret)
}

// Sign computes base64(HMAC-SHA1(key, baseString)).
func Sign(key, baseString string) string {
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(baseString))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Signer produces signed parameter sets for a credential pair. Nonce and
// Now are overridable so signatures are deterministic under test; left
// nil, every call gets a fresh random nonce and the current Unix time.
type Signer struct {
	ConsumerKey    string
	ConsumerSecret string
	Token          string
	TokenSecret    string

	Nonce func() string
	Now   func() time.Time
}

// SignedParams returns a copy of params with the oauth_* protocol
// parameters and the computed oauth_signature attached. A new nonce and
// timestamp are generated per call; nonces are single-use.
func (s *Signer) SignedParams(method, rawURL string, params map[string]string) map[string]string {
	all := make(map[string]string, len(params)+7)
	for k, v := range params {
		all[k] = v
	}

	all["oauth_consumer_key"] = s.ConsumerKey
	all["oauth_nonce"] = s.nonce()
	all["oauth_signature_method"] = "HMAC-SHA1"
	all["oauth_timestamp"] = strconv.FormatInt(s.now().Unix(), 10)
	all["oauth_token"] = s.Token
	all["oauth_version"] = "1.0"

	base := BaseString(method, rawURL, all)
	key := SigningKey(s.ConsumerSecret, s.TokenSecret)
	all["oauth_signature"] = Sign(key, base)

	return all
}

func (s *Signer) nonce() string {
	if s.Nonce != nil {
		return s.Nonce()
	}
	buf := make([]byte, 16)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}

func (s *Signer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
