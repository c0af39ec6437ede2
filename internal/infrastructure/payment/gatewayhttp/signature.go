package gatewayhttp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/fundhive/fundhive/internal/shared/errors"
)

// DefaultSignatureTolerance bounds the age of a signed webhook.
const DefaultSignatureTolerance = 5 * time.Minute

// Sign returns a signature header value of the form "t=<unix>,v1=<hex>",
// where v1 is HMAC-SHA256(secret, "<unix>.<body>").
func Sign(secret string, body []byte, ts time.Time) string {
	unix := strconv.FormatInt(ts.Unix(), 10)
	return fmt.Sprintf("t=%s,v1=%s", unix, computeSignature(secret, unix, body))
}

// Verify checks a signature header produced by Sign. Any mismatch, a stale
// timestamp or a missing secret is a webhook_authentication error.
func Verify(secret, header string, body []byte, now time.Time, tolerance time.Duration) error {
	if secret == "" {
		return apperrors.NewWebhookAuthenticationError("webhook secret is not configured")
	}
	if header == "" {
		return apperrors.NewWebhookAuthenticationError("missing webhook signature")
	}

	var unix string
	var candidates []string
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			unix = v
		case "v1":
			candidates = append(candidates, v)
		}
	}
	if unix == "" || len(candidates) == 0 {
		return apperrors.NewWebhookAuthenticationError("malformed webhook signature")
	}

	sec, err := strconv.ParseInt(unix, 10, 64)
	if err != nil {
		return apperrors.NewWebhookAuthenticationError("malformed webhook signature timestamp")
	}
	if tolerance > 0 {
		age := now.Sub(time.Unix(sec, 0))
		if age > tolerance || age < -tolerance {
			return apperrors.NewWebhookAuthenticationError("webhook signature timestamp outside tolerance")
		}
	}

	expected := computeSignature(secret, unix, body)
	for _, sig := range candidates {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return apperrors.NewWebhookAuthenticationError("webhook signature mismatch")
}

func computeSignature(secret, unix string, body []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(unix))
	h.Write([]byte("."))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
