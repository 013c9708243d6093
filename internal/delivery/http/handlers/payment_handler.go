package handlers

import (
	"net/http"
	"time"

	"github.com/FENGsir1992/mall-payment-service/internal/delivery/http/middleware"
	"github.com/FENGsir1992/mall-payment-service/internal/domain"
	payment "github.com/FENGsir1992/mall-payment-service/internal/usecase/payment"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PaymentHandler handles the authenticated payment endpoints.
type PaymentHandler struct {
	usecase payment.PaymentUsecase
}

func NewPaymentHandler(usecase payment.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{usecase: usecase}
}

// CreatePaymentRequest is the HTTP request body for creating a payment.
type CreatePaymentRequest struct {
	OrderID string `json:"order_id"`
	Method  string `json:"method"`
	Scene   string `json:"scene"`
}

// CreatePaymentResponse carries the payer-facing credential for the
// requested scene.
type CreatePaymentResponse struct {
	PaymentID  string `json:"payment_id"`
	OutTradeNo string `json:"out_trade_no"`
	Scene      string `json:"scene,omitempty"`
	Credential string `json:"credential,omitempty"`
}

// CreatePayment handles POST /v1/payments
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.OrderID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "order_id is required"})
		return
	}

	output, err := h.usecase.CreatePayment(c.Request.Context(), &payment.CreatePaymentInput{
		UserID:  middleware.UserID(c),
		OrderID: req.OrderID,
		Method:  domain.PaymentMethod(req.Method),
		Scene:   domain.Scene(req.Scene),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreatePaymentResponse{
		PaymentID:  output.PaymentID,
		OutTradeNo: output.OutTradeNo,
		Scene:      string(output.Scene),
		Credential: output.Credential,
	})
}

type SyncPaymentResponse struct {
	OrderStatus string              `json:"order_status"`
	Payments    []SyncPaymentDetail `json:"payments"`
}

type SyncPaymentDetail struct {
	PaymentID string `json:"payment_id"`
	Method    string `json:"method"`
	Status    string `json:"status"`
}

// SyncPayment handles POST /v1/orders/:id/sync
func (h *PaymentHandler) SyncPayment(c *gin.Context) {
	output, err := h.usecase.SyncPayment(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := SyncPaymentResponse{OrderStatus: string(output.OrderStatus)}
	for _, p := range output.Payments {
		resp.Payments = append(resp.Payments, SyncPaymentDetail{
			PaymentID: p.PaymentID,
			Method:    string(p.Method),
			Status:    string(p.Status),
		})
	}
	c.JSON(http.StatusOK, resp)
}

type RefundRequest struct {
	OrderID string `json:"order_id"`
	Amount  string `json:"amount"` // decimal string, empty means full refund
}

// Refund handles POST /v1/payments/refund
func (h *PaymentHandler) Refund(c *gin.Context) {
	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.OrderID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "order_id is required"})
		return
	}

	amount := decimal.Zero
	if req.Amount != "" {
		var err error
		amount, err = decimal.NewFromString(req.Amount)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid amount"})
			return
		}
	}

	err := h.usecase.RefundPayment(c.Request.Context(), &payment.RefundInput{
		UserID:  middleware.UserID(c),
		OrderID: req.OrderID,
		Amount:  amount,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "refunded"})
}

type SweepRequest struct {
	OlderThanMs int64 `json:"older_than_ms"`
	Limit       int   `json:"limit"`
}

type SweepResponse struct {
	ClosedOrders     int `json:"closed_orders"`
	AffectedPayments int `json:"affected_payments"`
}

// TriggerSweep handles POST /v1/admin/sweeps — one synchronous
// reconciliation pass.
func (h *PaymentHandler) TriggerSweep(c *gin.Context) {
	var req SweepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.OlderThanMs <= 0 || req.Limit <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "older_than_ms and limit must be positive"})
		return
	}

	result, err := h.usecase.SweepOverdueOrders(c.Request.Context(), time.Duration(req.OlderThanMs)*time.Millisecond, req.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SweepResponse{
		ClosedOrders:     result.ClosedOrders,
		AffectedPayments: result.AffectedPayments,
	})
}
