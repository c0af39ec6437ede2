package handlers

import (
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fundhive/fundhive/internal/application/payment/dto"
	"github.com/fundhive/fundhive/internal/application/payment/usecases"
	"github.com/fundhive/fundhive/internal/shared/constants"
	"github.com/fundhive/fundhive/internal/shared/logger"
	"github.com/fundhive/fundhive/internal/shared/utils"
)

type PaymentHandler struct {
	handleWebhookUC handleWebhookUseCase
	chargeUC        chargeUseCase
	getStatusUC     getPaymentStatusUseCase
	logger          logger.Interface
}

func NewPaymentHandler(
	handleWebhookUC handleWebhookUseCase,
	chargeUC chargeUseCase,
	getStatusUC getPaymentStatusUseCase,
	logger logger.Interface,
) *PaymentHandler {
	return &PaymentHandler{
		handleWebhookUC: handleWebhookUC,
		chargeUC:        chargeUC,
		getStatusUC:     getStatusUC,
		logger:          logger,
	}
}

type WebhookAckResponse struct {
	Outcome       string `json:"outcome"`
	EventType     string `json:"event_type"`
	TransactionID string `json:"transaction_id"`
}

// HandleWebhook accepts a processor delivery for the gateway in the path.
// Re-deliveries and unrecognised events are acknowledged with 200 so the
// processor stops retrying; authentication failures return 401.
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	gateway := c.Param("gateway")

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, constants.MaxWebhookBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "webhook body too large")
			return
		}
		utils.ErrorResponse(c, http.StatusBadRequest, "failed to read webhook body")
		return
	}

	result, err := h.handleWebhookUC.Execute(c.Request.Context(), usecases.HandleWebhookCommand{
		Gateway: gateway,
		Body:    body,
		Headers: c.Request.Header.Clone(),
	})
	if err != nil {
		h.logger.Warnw("webhook rejected", "gateway", gateway, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "webhook accepted", WebhookAckResponse{
		Outcome:       string(result.Outcome),
		EventType:     result.EventType,
		TransactionID: result.TransactionID,
	})
}

// Charge starts a payment for a pending donation through the gateway in the path.
func (h *PaymentHandler) Charge(c *gin.Context) {
	gateway := c.Param("gateway")

	var req dto.PaymentPayloadParams
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("failed to bind charge request", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	resp, err := h.chargeUC.Execute(c.Request.Context(), usecases.ChargeCommand{
		Gateway: gateway,
		Payment: req,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "payment initiated", resp)
}

// GetStatus asks the gateway for the current state of a transaction.
func (h *PaymentHandler) GetStatus(c *gin.Context) {
	gateway := c.Param("gateway")
	transactionID := c.Param("transaction_id")

	status, err := h.getStatusUC.Execute(c.Request.Context(), gateway, transactionID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", status)
}
