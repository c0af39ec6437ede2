package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundhive/fundhive/internal/application/payment/usecases"
	"github.com/fundhive/fundhive/internal/domain/donation"
	vo "github.com/fundhive/fundhive/internal/domain/payment/valueobjects"
	"github.com/fundhive/fundhive/internal/interfaces/http/handlers/testutil"
	"github.com/fundhive/fundhive/internal/shared/errors"
	"github.com/fundhive/fundhive/internal/shared/logger"
)

type mockCreateDonationUC struct {
	got    usecases.CreateDonationCommand
	result *donation.Donation
	err    error
}

func (m *mockCreateDonationUC) Execute(ctx context.Context, cmd usecases.CreateDonationCommand) (*donation.Donation, error) {
	m.got = cmd
	return m.result, m.err
}

func createTestDonation(t *testing.T, userID uint) *donation.Donation {
	t.Helper()
	d, err := donation.NewDonation(donation.NewParams{
		OrderID:    "D-000000000001",
		Kind:       donation.KindPledge,
		CampaignID: 7,
		UserID:     userID,
		Amount:     vo.MustMoney("40", "JPY"),
		Gateway:    "stripe",
		HasReward:  true,
	})
	require.NoError(t, err)
	return d
}

func donationRequest() map[string]any {
	return map[string]any{
		"campaign_id": 7,
		"kind":        "pledge",
		"amount":      "40",
		"currency":    "JPY",
		"gateway":     "stripe",
		"has_reward":  true,
	}
}

func TestDonationHandler_CreateDonation_Authenticated(t *testing.T) {
	uc := &mockCreateDonationUC{result: createTestDonation(t, 42)}
	handler := NewDonationHandler(uc, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/donations", donationRequest())
	testutil.SetAuthContext(c, 42)

	handler.CreateDonation(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, uint(42), uc.got.UserID)
	assert.Equal(t, donation.KindPledge, uc.got.Kind)
	assert.True(t, uc.got.HasReward)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var out DonationResponse
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	assert.Equal(t, "D-000000000001", out.OrderID)
	assert.Equal(t, "pending", out.Status)
	// JPY has no minor unit
	assert.Equal(t, "40", out.Amount)
}

func TestDonationHandler_CreateDonation_Guest(t *testing.T) {
	uc := &mockCreateDonationUC{result: createTestDonation(t, 0)}
	handler := NewDonationHandler(uc, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/donations", donationRequest())

	handler.CreateDonation(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Zero(t, uc.got.UserID)
}

func TestDonationHandler_CreateDonation_IgnoresUserIDInBody(t *testing.T) {
	uc := &mockCreateDonationUC{result: createTestDonation(t, 0)}
	handler := NewDonationHandler(uc, logger.NewNopLogger())

	req := donationRequest()
	req["UserID"] = 99
	c, _ := testutil.NewTestContext(http.MethodPost, "/api/v1/donations", req)

	handler.CreateDonation(c)

	assert.Zero(t, uc.got.UserID)
}

func TestDonationHandler_CreateDonation_CampaignClosed(t *testing.T) {
	uc := &mockCreateDonationUC{err: errors.NewConflictError("campaign is not accepting donations", "ended")}
	handler := NewDonationHandler(uc, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/donations", donationRequest())

	handler.CreateDonation(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}
