package gatewayhttp

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/fundhive/fundhive/internal/shared/errors"
)

func TestSignVerify_RoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	body := []byte(`{"id":"evt_1"}`)
	header := Sign("whsec", body, now)

	assert.NoError(t, Verify("whsec", header, body, now.Add(time.Minute), DefaultSignatureTolerance))
}

func TestVerify_Rejects(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	body := []byte(`{"id":"evt_1"}`)
	valid := Sign("whsec", body, now)

	tests := []struct {
		name   string
		secret string
		header string
		body   []byte
		at     time.Time
	}{
		{"no secret", "", valid, body, now},
		{"no header", "whsec", "", body, now},
		{"garbage header", "whsec", "sha256=abc", body, now},
		{"bad timestamp", "whsec", "t=soon,v1=abc", body, now},
		{"tampered body", "whsec", valid, []byte(`{"id":"evt_2"}`), now},
		{"wrong secret", "other", valid, body, now},
		{"stale", "whsec", valid, body, now.Add(10 * time.Minute)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Verify(tt.secret, tt.header, tt.body, tt.at, DefaultSignatureTolerance)
			assert.True(t, apperrors.IsWebhookAuthenticationError(err), "got %v", err)
		})
	}
}

func TestVerify_AcceptsAnyMatchingV1(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	body := []byte(`{}`)
	valid := Sign("whsec", body, now)
	header := valid + ",v1=deadbeef"

	assert.NoError(t, Verify("whsec", header, body, now, DefaultSignatureTolerance))
}

func TestClient_PostFormSendsAuthAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/things", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		assert.Equal(t, "order-1", r.Header.Get("Idempotency-Key"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "1250", r.PostForm.Get("amount"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"th_1"}`)
	}))
	defer srv.Close()

	c := NewClient("stripe", srv.URL+"/", "sk_test", srv.Client())
	var out struct {
		ID string `json:"id"`
	}
	err := c.PostForm(context.Background(), "/v1/things", url.Values{"amount": {"1250"}},
		http.Header{"Idempotency-Key": {"order-1"}}, &out)

	require.NoError(t, err)
	assert.Equal(t, "th_1", out.ID)
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		check  func(error) bool
	}{
		{http.StatusBadGateway, apperrors.IsGatewayTransportError},
		{http.StatusNotFound, apperrors.IsNotFoundError},
		{http.StatusPaymentRequired, func(err error) bool { return apperrors.IsType(err, apperrors.ErrorTypeBadRequest) }},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, `{"error":{"message":"nope"}}`)
			}))
			defer srv.Close()

			err := NewClient("wallet", srv.URL, "", srv.Client()).Get(context.Background(), "/x", nil)
			assert.True(t, tt.check(err), "got %v", err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
		})
	}
}

func TestClient_TimeoutIsTransportError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := &http.Client{Timeout: 50 * time.Millisecond}
	err := NewClient("wallet", srv.URL, "", client).Get(context.Background(), "/slow", nil)

	assert.True(t, apperrors.IsGatewayTransportError(err), "got %v", err)
}
