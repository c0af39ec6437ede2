package payment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundhive/fundhive/internal/application/payment/paymentgateway"
	vo "github.com/fundhive/fundhive/internal/domain/payment/valueobjects"
	"github.com/fundhive/fundhive/internal/shared/config"
	apperrors "github.com/fundhive/fundhive/internal/shared/errors"
	"github.com/fundhive/fundhive/internal/shared/logger"
)

func enabled(v bool) *bool { return &v }

func TestBuiltinModules_Discover(t *testing.T) {
	settings := map[string]config.GatewayConfig{
		"stripe": {Enabled: enabled(true), APIKey: "sk", WebhookSecret: "whsec"},
		"wallet": {Enabled: enabled(true)},
	}
	reg := paymentgateway.NewRegistry(func(name string) config.GatewayConfig {
		return settings[name]
	}, logger.NewNopLogger())

	require.NoError(t, reg.Discover(BuiltinModules(), ""))

	names := func(filter vo.GatewayFilter) []string {
		var out []string
		for _, m := range reg.List(filter) {
			out = append(out, m.Name)
		}
		return out
	}
	assert.Equal(t, []string{"offline", "stripe", "wallet"}, names(vo.GatewayFilterAll))
	assert.Equal(t, []string{"offline"}, names(vo.GatewayFilterManual))

	_, err := reg.Resolve("stripe")
	assert.NoError(t, err)
	_, err = reg.Resolve("offline")
	assert.NoError(t, err)

	// wallet is switched on but has no credentials, so it fails to start.
	_, err = reg.Resolve("wallet")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeGatewayDisabled), "got %v", err)
}

func TestBuiltinModules_ManifestOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "offline.yaml"), []byte(`
name: offline
type: manual-payment
class: offline
is_enabled: false
config:
  label: Cheque or bank transfer
fields:
  - name: account_number
    label: IBAN
    type: text
`), 0o644))

	reg := paymentgateway.NewRegistry(nil, logger.NewNopLogger())
	require.NoError(t, reg.Discover(BuiltinModules(), dir))

	m, ok := reg.Manifest("offline")
	require.True(t, ok)
	assert.Equal(t, "Cheque or bank transfer", m.Config.Label)
	assert.False(t, m.IsEnabled)
	assert.False(t, reg.IsEnabled("offline"))
}
