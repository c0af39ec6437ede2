package paymentgateway

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/fundhive/fundhive/internal/domain/payment/valueobjects"
	"github.com/fundhive/fundhive/internal/shared/config"
	apperrors "github.com/fundhive/fundhive/internal/shared/errors"
	"github.com/fundhive/fundhive/internal/shared/logger"
)

func manifest(name string, t vo.GatewayType, enabled bool) Manifest {
	return Manifest{
		Name:      name,
		Type:      t,
		IsEnabled: enabled,
		Config:    ManifestConfig{Label: name},
		Fields: []ManifestField{
			{Name: "api_key", Label: "API key", Type: "password"},
		},
	}
}

func writeManifest(t *testing.T, dir, file, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(body), 0o600))
}

func newTestRegistry(settings map[string]config.GatewayConfig) *Registry {
	return NewRegistry(func(name string) config.GatewayConfig {
		return settings[name]
	}, logger.NewNopLogger())
}

func TestRegistry_Discover_SkipsMalformedManifest(t *testing.T) {
	r := newTestRegistry(nil)
	modules := []Module{
		MockModule(manifest("stripe", vo.GatewayTypeOnline, true), NewMockGateway()),
		MockModule(manifest("offline", vo.GatewayTypeManual, true), NewMockGateway()),
		MockModule(manifest("broken", "", true), NewMockGateway()),
	}

	require.NoError(t, r.Discover(modules, ""))

	list := r.List(vo.GatewayFilterAll)
	require.Len(t, list, 2)
	assert.Equal(t, "offline", list[0].Name)
	assert.Equal(t, "stripe", list[1].Name)

	_, err := r.Resolve("broken")
	assert.True(t, apperrors.IsGatewayNotFoundError(err))
}

func TestRegistry_List_Filter(t *testing.T) {
	r := newTestRegistry(nil)
	require.NoError(t, r.Discover([]Module{
		MockModule(manifest("stripe", vo.GatewayTypeOnline, true), NewMockGateway()),
		MockModule(manifest("wallet", vo.GatewayTypeOnline, true), NewMockGateway()),
		MockModule(manifest("offline", vo.GatewayTypeManual, true), NewMockGateway()),
	}, ""))

	online := r.List(vo.GatewayFilterOnline)
	require.Len(t, online, 2)
	assert.Equal(t, []string{"stripe", "wallet"}, []string{online[0].Name, online[1].Name})

	manual := r.List(vo.GatewayFilterManual)
	require.Len(t, manual, 1)
	assert.Equal(t, "offline", manual[0].Name)
	assert.True(t, manual[0].IsInstalled)
}

func TestRegistry_Resolve(t *testing.T) {
	stripe := NewMockGateway()
	r := newTestRegistry(nil)
	require.NoError(t, r.Discover([]Module{
		MockModule(manifest("stripe", vo.GatewayTypeOnline, true), stripe),
		MockModule(manifest("paypal", vo.GatewayTypeOnline, false), NewMockGateway()),
	}, ""))

	t.Run("enabled gateway", func(t *testing.T) {
		gw, err := r.Resolve("stripe")
		require.NoError(t, err)
		assert.Same(t, stripe, gw)
		assert.True(t, r.IsEnabled("stripe"))
	})

	t.Run("unknown gateway", func(t *testing.T) {
		_, err := r.Resolve("bitcoin")
		require.Error(t, err)
		assert.True(t, apperrors.IsGatewayNotFoundError(err))
		assert.Equal(t, 404, apperrors.GetAppError(err).Code)
	})

	t.Run("disabled gateway", func(t *testing.T) {
		_, err := r.Resolve("paypal")
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeGatewayDisabled))
		assert.False(t, r.IsEnabled("paypal"))
	})
}

func TestRegistry_ConfigOverridesEnabled(t *testing.T) {
	off := false
	on := true
	r := newTestRegistry(map[string]config.GatewayConfig{
		"stripe": {Enabled: &off},
		"paypal": {Enabled: &on},
	})
	require.NoError(t, r.Discover([]Module{
		MockModule(manifest("stripe", vo.GatewayTypeOnline, true), NewMockGateway()),
		MockModule(manifest("paypal", vo.GatewayTypeOnline, false), NewMockGateway()),
	}, ""))

	assert.False(t, r.IsEnabled("stripe"))
	assert.True(t, r.IsEnabled("paypal"))
}

func TestRegistry_ConstructorFailureDisablesGateway(t *testing.T) {
	r := newTestRegistry(nil)
	require.NoError(t, r.Discover([]Module{{
		Manifest: manifest("stripe", vo.GatewayTypeOnline, true),
		New: func(ModuleConfig) (Gateway, error) {
			return nil, errors.New("missing api key")
		},
	}}, ""))

	m, ok := r.Manifest("stripe")
	require.True(t, ok)
	assert.True(t, m.IsInstalled)
	assert.False(t, m.IsEnabled)

	_, err := r.Resolve("stripe")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeGatewayDisabled))
}

func TestRegistry_ManifestDirectory(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "stripe.yaml", `
name: stripe
type: online-payment
is_enabled: false
config:
  label: Credit card
fields:
  - name: secret_key
    type: password
`)
	writeManifest(t, dir, "razorpay.json", `{"name": "razorpay", "type": "online-payment", "is_enabled": true}`)
	writeManifest(t, dir, "bad.yml", "name: bad\nfields:\n  - name: x\n")
	writeManifest(t, dir, "notes.txt", "ignored")

	r := newTestRegistry(nil)
	require.NoError(t, r.Discover([]Module{
		MockModule(manifest("stripe", vo.GatewayTypeOnline, true), NewMockGateway()),
	}, dir))

	list := r.List(vo.GatewayFilterAll)
	require.Len(t, list, 2)

	stripe, ok := r.Manifest("stripe")
	require.True(t, ok)
	assert.Equal(t, "Credit card", stripe.Config.Label)
	assert.False(t, stripe.IsEnabled)
	require.Len(t, stripe.Fields, 1)
	assert.Equal(t, "secret_key", stripe.Fields[0].Name)

	razorpay, ok := r.Manifest("razorpay")
	require.True(t, ok)
	assert.False(t, razorpay.IsInstalled)
	assert.False(t, razorpay.IsEnabled)

	_, err := r.Resolve("razorpay")
	assert.True(t, apperrors.IsGatewayNotFoundError(err))

	_, ok = r.Manifest("bad")
	assert.False(t, ok)
}

func TestRegistry_Reload_SwapsCatalog(t *testing.T) {
	r := newTestRegistry(nil)
	require.NoError(t, r.Discover([]Module{
		MockModule(manifest("stripe", vo.GatewayTypeOnline, true), NewMockGateway()),
	}, ""))
	before := r.List(vo.GatewayFilterAll)

	require.NoError(t, r.Reload([]Module{
		MockModule(manifest("stripe", vo.GatewayTypeOnline, true), NewMockGateway()),
		MockModule(manifest("offline", vo.GatewayTypeManual, true), NewMockGateway()),
	}, ""))

	assert.Len(t, before, 1)
	assert.Len(t, r.List(vo.GatewayFilterAll), 2)
}

func TestRegistry_ListReturnsCopies(t *testing.T) {
	r := newTestRegistry(nil)
	require.NoError(t, r.Discover([]Module{
		MockModule(manifest("stripe", vo.GatewayTypeOnline, true), NewMockGateway()),
	}, ""))

	list := r.List(vo.GatewayFilterAll)
	list[0].Fields[0].Name = "mutated"
	list[0].IsEnabled = false

	m, _ := r.Manifest("stripe")
	assert.Equal(t, "api_key", m.Fields[0].Name)
	assert.True(t, m.IsEnabled)
}

func TestParseManifest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", "name: a\ntype: manual-payment\n", false},
		{"missing name", "type: manual-payment\n", true},
		{"unknown type", "name: a\ntype: crypto\n", true},
		{"field without type", "name: a\ntype: manual-payment\nfields:\n  - name: x\n", true},
		{"duplicate field", "name: a\ntype: manual-payment\nfields:\n  - {name: x, type: text}\n  - {name: x, type: text}\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseManifest([]byte(tt.body))
			require.NoError(t, err)
			err = m.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
