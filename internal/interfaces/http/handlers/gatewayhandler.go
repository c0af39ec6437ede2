package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fundhive/fundhive/internal/application/payment/paymentgateway"
	vo "github.com/fundhive/fundhive/internal/domain/payment/valueobjects"
	"github.com/fundhive/fundhive/internal/shared/errors"
	"github.com/fundhive/fundhive/internal/shared/logger"
	"github.com/fundhive/fundhive/internal/shared/utils"
)

type GatewayHandler struct {
	catalog  gatewayCatalog
	reloader gatewayReloader
	logger   logger.Interface
}

func NewGatewayHandler(catalog gatewayCatalog, reloader gatewayReloader, logger logger.Interface) *GatewayHandler {
	return &GatewayHandler{
		catalog:  catalog,
		reloader: reloader,
		logger:   logger,
	}
}

// GatewayResponse is the public view of a manifest. Admin field definitions
// are left out.
type GatewayResponse struct {
	Name                   string         `json:"name"`
	Type                   vo.GatewayType `json:"type"`
	Label                  string         `json:"label"`
	Logo                   string         `json:"logo,omitempty"`
	SupportsFuturePayments bool           `json:"supports_future_payments"`
	FrontendScript         string         `json:"frontend_script,omitempty"`
	IsInstalled            bool           `json:"is_installed"`
	IsEnabled              bool           `json:"is_enabled"`
}

func toGatewayResponse(m paymentgateway.Manifest) GatewayResponse {
	label := m.Config.Label
	if label == "" {
		label = m.Name
	}
	return GatewayResponse{
		Name:                   m.Name,
		Type:                   m.Type,
		Label:                  label,
		Logo:                   m.Config.Logo,
		SupportsFuturePayments: m.SupportsFuturePayments,
		FrontendScript:         m.FrontendScript,
		IsInstalled:            m.IsInstalled,
		IsEnabled:              m.IsEnabled,
	}
}

// ListGateways returns the catalog, optionally narrowed with ?type=online|manual|all.
func (h *GatewayHandler) ListGateways(c *gin.Context) {
	filter, err := vo.ParseGatewayFilter(c.Query("type"))
	if err != nil {
		utils.ErrorResponseWithError(c, errors.NewFieldValidationError("Invalid request", errors.FieldError{
			Field:   "type",
			Message: "type must be one of [all online manual]",
		}))
		return
	}

	manifests := h.catalog.List(filter)
	out := make([]GatewayResponse, 0, len(manifests))
	for _, m := range manifests {
		out = append(out, toGatewayResponse(m))
	}

	utils.SuccessResponse(c, http.StatusOK, "", out)
}

// GetGateway returns one gateway by name, installed or not.
func (h *GatewayHandler) GetGateway(c *gin.Context) {
	name := c.Param("gateway")
	m, ok := h.catalog.Manifest(name)
	if !ok {
		utils.ErrorResponseWithError(c, errors.NewGatewayNotFoundError(name))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", toGatewayResponse(m))
}

// ReloadGateways rediscovers modules and manifest files and swaps the catalog.
// Requests already holding a gateway finish against the old catalog.
func (h *GatewayHandler) ReloadGateways(c *gin.Context) {
	if err := h.reloader.ReloadGateways(); err != nil {
		h.logger.Errorw("failed to reload gateway catalog", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	manifests := h.catalog.List(vo.GatewayFilterAll)
	out := make([]GatewayResponse, 0, len(manifests))
	for _, m := range manifests {
		out = append(out, toGatewayResponse(m))
	}

	h.logger.Infow("gateway catalog reloaded", "gateways", len(out))
	utils.SuccessResponse(c, http.StatusOK, "gateway catalog reloaded", out)
}
