package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundhive/fundhive/internal/application/payment/paymentgateway"
	vo "github.com/fundhive/fundhive/internal/domain/payment/valueobjects"
	"github.com/fundhive/fundhive/internal/interfaces/http/handlers/testutil"
	"github.com/fundhive/fundhive/internal/shared/errors"
	"github.com/fundhive/fundhive/internal/shared/logger"
)

type fakeCatalog struct {
	manifests []paymentgateway.Manifest
}

func (f *fakeCatalog) List(filter vo.GatewayFilter) []paymentgateway.Manifest {
	var out []paymentgateway.Manifest
	for _, m := range f.manifests {
		if filter.Matches(m.Type) {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeCatalog) Manifest(name string) (paymentgateway.Manifest, bool) {
	for _, m := range f.manifests {
		if m.Name == name {
			return m, true
		}
	}
	return paymentgateway.Manifest{}, false
}

type fakeReloader struct {
	catalog *fakeCatalog
	err     error
	calls   int
}

func (f *fakeReloader) ReloadGateways() error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.catalog.manifests = append(f.catalog.manifests, paymentgateway.Manifest{
		Name: "paypal",
		Type: vo.GatewayTypeOnline,
	})
	return nil
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{manifests: []paymentgateway.Manifest{
		{
			Name:        "offline",
			Type:        vo.GatewayTypeManual,
			Config:      paymentgateway.ManifestConfig{Label: "Bank transfer"},
			IsInstalled: true,
			IsEnabled:   true,
		},
		{
			Name:                   "stripe",
			Type:                   vo.GatewayTypeOnline,
			SupportsFuturePayments: true,
			IsInstalled:            true,
			IsEnabled:              true,
			Fields:                 []paymentgateway.ManifestField{{Name: "api_key", Type: "password"}},
		},
	}}
}

func decodeGateways(t *testing.T, data json.RawMessage) []GatewayResponse {
	t.Helper()
	var out []GatewayResponse
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestGatewayHandler_ListGateways(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantNames []string
	}{
		{"all by default", "", []string{"offline", "stripe"}},
		{"online only", "online", []string{"stripe"}},
		{"manual only", "manual", []string{"offline"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewGatewayHandler(newFakeCatalog(), nil, logger.NewNopLogger())
			c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/gateways", nil)
			if tt.query != "" {
				testutil.SetQueryParams(c, map[string]string{"type": tt.query})
			}

			handler.ListGateways(c)

			require.Equal(t, http.StatusOK, w.Code)
			var resp testutil.APIResponse
			require.NoError(t, testutil.ParseResponse(w, &resp))

			var names []string
			for _, g := range decodeGateways(t, resp.Data) {
				names = append(names, g.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestGatewayHandler_ListGateways_HidesFieldDefinitions(t *testing.T) {
	handler := NewGatewayHandler(newFakeCatalog(), nil, logger.NewNopLogger())
	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/gateways", nil)

	handler.ListGateways(c)

	assert.NotContains(t, w.Body.String(), "api_key")
	assert.Contains(t, w.Body.String(), `"label":"stripe"`)
	assert.Contains(t, w.Body.String(), `"label":"Bank transfer"`)
}

func TestGatewayHandler_ListGateways_BadFilter(t *testing.T) {
	handler := NewGatewayHandler(newFakeCatalog(), nil, logger.NewNopLogger())
	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/gateways", nil)
	testutil.SetQueryParams(c, map[string]string{"type": "crypto"})

	handler.ListGateways(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGatewayHandler_GetGateway(t *testing.T) {
	handler := NewGatewayHandler(newFakeCatalog(), nil, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/gateways/stripe", nil)
	testutil.SetURLParam(c, "gateway", "stripe")
	handler.GetGateway(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"supports_future_payments":true`)

	c, w = testutil.NewTestContext(http.MethodGet, "/api/v1/gateways/paypal", nil)
	testutil.SetURLParam(c, "gateway", "paypal")
	handler.GetGateway(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "gateway_not_found")
}

func TestGatewayHandler_ReloadGateways(t *testing.T) {
	catalog := newFakeCatalog()
	reloader := &fakeReloader{catalog: catalog}
	handler := NewGatewayHandler(catalog, reloader, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/admin/gateways/reload", nil)
	handler.ReloadGateways(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, reloader.calls)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.Len(t, decodeGateways(t, resp.Data), 3)
}

func TestGatewayHandler_ReloadGateways_Error(t *testing.T) {
	catalog := newFakeCatalog()
	reloader := &fakeReloader{catalog: catalog, err: errors.NewInternalError("manifest dir unreadable")}
	handler := NewGatewayHandler(catalog, reloader, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/admin/gateways/reload", nil)
	handler.ReloadGateways(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
