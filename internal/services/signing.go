package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// signingTransport adds the apikey/nonce/timestamp parameters and the request signature
// that Letterboxd requires on every call, including the token exchange.
type signingTransport struct {
	apiKey    string
	apiSecret string
	base      http.RoundTripper
	now       func() time.Time
}

func newSigningTransport(apiKey, apiSecret string, base http.RoundTripper) *signingTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &signingTransport{apiKey: apiKey, apiSecret: apiSecret, base: base, now: time.Now}
}

func (t *signingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	signed := req.Clone(req.Context())

	var body []byte
	if req.Body != nil && req.Body != http.NoBody {
		data, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read request body for signing: %w", err)
		}
		body = data
		signed.Body = io.NopCloser(bytes.NewReader(body))
		signed.ContentLength = int64(len(body))
	}

	q := signed.URL.Query()
	q.Set("apikey", t.apiKey)
	q.Set("nonce", uuid.New().String())
	q.Set("timestamp", strconv.FormatInt(t.now().Unix(), 10))
	signed.URL.RawQuery = q.Encode()

	sig := sign(t.apiSecret, signed.Method, signed.URL.String(), body)
	signed.URL.RawQuery += "&signature=" + sig

	return t.base.RoundTrip(signed)
}

// sign returns the lowercase hex HMAC-SHA256 of "METHOD\x00URL\x00BODY".
func sign(secret, method, url string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(method))
	mac.Write([]byte{0})
	mac.Write([]byte(url))
	mac.Write([]byte{0})
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
