package paymentgateway

import (
	"context"
	"net/http"
	"sync"

	"github.com/fundhive/fundhive/internal/application/payment/dto"
)

// MockGateway is an in-memory Gateway for tests and local development.
// Unset funcs fall back to ErrUnsupported.
type MockGateway struct {
	ChargeFunc            func(ctx context.Context, payload dto.PaymentPayload) (*dto.PaymentResponse, error)
	SavePaymentMethodFunc func(ctx context.Context, payload dto.SavePaymentMethodPayload) (*dto.PaymentResponse, error)
	GetStatusFunc         func(ctx context.Context, transactionID string) (*dto.PaymentStatus, error)
	ParseWebhookFunc      func(ctx context.Context, body []byte, headers http.Header) (*dto.WebhookResponse, error)
	Redirect              bool

	mu    sync.Mutex
	calls map[string]int
}

func NewMockGateway() *MockGateway {
	return &MockGateway{calls: make(map[string]int)}
}

func (m *MockGateway) record(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[op]++
}

// Calls returns how many times op was invoked.
func (m *MockGateway) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *MockGateway) RequiresRedirect() bool { return m.Redirect }

func (m *MockGateway) Charge(ctx context.Context, payload dto.PaymentPayload) (*dto.PaymentResponse, error) {
	m.record("Charge")
	if m.ChargeFunc == nil {
		return nil, ErrUnsupported
	}
	return m.ChargeFunc(ctx, payload)
}

func (m *MockGateway) SavePaymentMethod(ctx context.Context, payload dto.SavePaymentMethodPayload) (*dto.PaymentResponse, error) {
	m.record("SavePaymentMethod")
	if m.SavePaymentMethodFunc == nil {
		return nil, ErrUnsupported
	}
	return m.SavePaymentMethodFunc(ctx, payload)
}

func (m *MockGateway) GetStatus(ctx context.Context, transactionID string) (*dto.PaymentStatus, error) {
	m.record("GetStatus")
	if m.GetStatusFunc == nil {
		return nil, ErrUnsupported
	}
	return m.GetStatusFunc(ctx, transactionID)
}

func (m *MockGateway) ParseWebhook(ctx context.Context, body []byte, headers http.Header) (*dto.WebhookResponse, error) {
	m.record("ParseWebhook")
	if m.ParseWebhookFunc == nil {
		return nil, ErrUnsupported
	}
	return m.ParseWebhookFunc(ctx, body, headers)
}

// MockModule wraps gw in a Module using manifest.
func MockModule(manifest Manifest, gw Gateway) Module {
	return Module{
		Manifest: manifest,
		New: func(ModuleConfig) (Gateway, error) {
			return gw, nil
		},
	}
}
