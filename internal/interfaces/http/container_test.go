package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fundhive/fundhive/internal/domain/campaign"
	"github.com/fundhive/fundhive/internal/domain/donation"
	vo "github.com/fundhive/fundhive/internal/domain/payment/valueobjects"
	"github.com/fundhive/fundhive/internal/infrastructure/config"
	"github.com/fundhive/fundhive/internal/infrastructure/migration"
	"github.com/fundhive/fundhive/internal/infrastructure/payment/gatewayhttp"
	"github.com/fundhive/fundhive/internal/infrastructure/payment/offline"
	"github.com/fundhive/fundhive/internal/interfaces/http/handlers/testutil"
	"github.com/fundhive/fundhive/internal/shared/authorization"
	sharedConfig "github.com/fundhive/fundhive/internal/shared/config"
	"github.com/fundhive/fundhive/internal/shared/logger"
)

const offlineSecret = "offline-test-secret"

func newTestContainer(t *testing.T) *Container {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, migration.NewManager(logger.NewNopLogger()).Migrate(conn))

	cfg := &config.Config{
		Server: sharedConfig.ServerConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Auth: sharedConfig.AuthConfig{JWT: sharedConfig.JWTConfig{
			Secret:           "test-secret",
			Issuer:           "fundhive",
			AccessExpMinutes: 15,
		}},
		Email: sharedConfig.EmailConfig{Transport: "log"},
		Payment: sharedConfig.PaymentConfig{
			ManifestDir:       t.TempDir(),
			ReconcileAfter:    30 * time.Minute,
			ReconcileInterval: time.Minute,
			ReconcileBatch:    10,
			LockTTL:           time.Second,
			ExpiryInterval:    time.Minute,
		},
		Gateways: map[string]sharedConfig.GatewayConfig{
			offline.Name: {WebhookSecret: offlineSecret},
		},
		Notifications: sharedConfig.NotificationConfig{
			CoalesceWindow: time.Minute,
			PollInterval:   time.Minute,
			BatchSize:      10,
			MaxAttempts:    3,
			RetryInitial:   time.Second,
			RetryMax:       time.Minute,
		},
	}

	c, err := NewContainer(conn, cfg, logger.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(c.Close)
	c.SetupRoutes()
	return c
}

func publishedCampaign(t *testing.T, c *Container) *campaign.Campaign {
	t.Helper()
	camp, err := campaign.NewCampaign(campaign.NewParams{
		OwnerUserID: 7,
		Title:       "Community garden",
		Goal:        vo.MustMoney("100", "USD"),
	})
	require.NoError(t, err)
	require.NoError(t, camp.ChangeStatus(campaign.StatusPublished))
	require.NoError(t, c.campaignRepo.Create(context.Background(), camp))
	return camp
}

func doJSON(t *testing.T, c *Container, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	return doRaw(c, method, path, raw, headers)
}

func doRaw(c *Container, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	c.Engine().ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	require.NoError(t, json.Unmarshal(resp.Data, out))
}

func TestContainer_OfflineDonationFlow(t *testing.T) {
	c := newTestContainer(t)
	camp := publishedCampaign(t, c)

	w := doJSON(t, c, http.MethodPost, "/api/v1/donations", map[string]any{
		"campaign_id": camp.ID(),
		"kind":        "donation",
		"amount":      "25",
		"currency":    "USD",
		"gateway":     offline.Name,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		OrderID string `json:"order_id"`
		Status  string `json:"status"`
	}
	decodeData(t, w, &created)
	require.NotEmpty(t, created.OrderID)
	assert.Equal(t, "pending", created.Status)

	w = doJSON(t, c, http.MethodPost, "/api/v1/payments/offline/charge", map[string]any{
		"amount":   "25.00",
		"currency": "USD",
		"order_id": created.OrderID,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var charged struct {
		TransactionID string          `json:"transaction_id"`
		PaymentForm   json.RawMessage `json:"payment_form"`
	}
	decodeData(t, w, &charged)
	require.Contains(t, charged.TransactionID, "off_")
	assert.NotEmpty(t, charged.PaymentForm)

	body, err := json.Marshal(map[string]any{
		"type":           "offline.received",
		"transaction_id": charged.TransactionID,
		"order_id":       created.OrderID,
		"amount":         "25",
		"currency":       "USD",
	})
	require.NoError(t, err)
	signed := map[string]string{offline.SignatureHeader: gatewayhttp.Sign(offlineSecret, body, time.Now())}

	w = doRaw(c, http.MethodPost, "/api/v1/payments/offline/webhook", body, signed)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var ack struct {
		Outcome string `json:"outcome"`
	}
	decodeData(t, w, &ack)
	assert.Equal(t, "processed", ack.Outcome)

	w = doRaw(c, http.MethodPost, "/api/v1/payments/offline/webhook", body, signed)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeData(t, w, &ack)
	assert.Equal(t, "already_processed", ack.Outcome)

	stored, err := c.campaignRepo.GetByID(context.Background(), camp.ID())
	require.NoError(t, err)
	assert.Equal(t, "25.00", stored.Raised().Amount().StringFixed(2))

	d, err := c.donationRepo.GetByOrderID(context.Background(), created.OrderID)
	require.NoError(t, err)
	assert.Equal(t, donation.StatusCompleted, d.Status())
}

func TestContainer_WebhookRejections(t *testing.T) {
	c := newTestContainer(t)
	body := []byte(`{"type":"offline.received","transaction_id":"off_abc"}`)

	w := doRaw(c, http.MethodPost, "/api/v1/payments/offline/webhook", body, map[string]string{
		offline.SignatureHeader: gatewayhttp.Sign("wrong-secret", body, time.Now()),
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRaw(c, http.MethodPost, "/api/v1/payments/unknown/webhook", body, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestContainer_CatalogAndHealth(t *testing.T) {
	c := newTestContainer(t)

	w := doJSON(t, c, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, c, http.MethodGet, "/api/v1/gateways?type=manual", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var gateways []struct {
		Name      string `json:"name"`
		IsEnabled bool   `json:"is_enabled"`
	}
	decodeData(t, w, &gateways)
	require.Len(t, gateways, 1)
	assert.Equal(t, offline.Name, gateways[0].Name)
	assert.True(t, gateways[0].IsEnabled)
}

func TestContainer_TransactionStatusRequiresToken(t *testing.T) {
	c := newTestContainer(t)

	w := doJSON(t, c, http.MethodGet, "/api/v1/payments/offline/transactions/off_abc", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := c.jwtService.Generate(7, authorization.RoleUser)
	require.NoError(t, err)
	w = doJSON(t, c, http.MethodGet, "/api/v1/payments/offline/transactions/off_abc", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"pending"`)
}

func TestContainer_UnrecognizedWebhookIsAcknowledged(t *testing.T) {
	c := newTestContainer(t)
	body := []byte(`{"type":"offline.audit"}`)

	w := doRaw(c, http.MethodPost, "/api/v1/payments/offline/webhook", body, map[string]string{
		offline.SignatureHeader: gatewayhttp.Sign(offlineSecret, body, time.Now()),
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var ack struct {
		Outcome string `json:"outcome"`
	}
	decodeData(t, w, &ack)
	assert.Equal(t, "ignored", ack.Outcome)
}
