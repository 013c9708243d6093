package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/FENGsir1992/mall-payment-service/internal/domain"
	"github.com/FENGsir1992/mall-payment-service/internal/gateway/alipay"
	"github.com/FENGsir1992/mall-payment-service/internal/gateway/wechat"
	payment "github.com/FENGsir1992/mall-payment-service/internal/usecase/payment"
	"github.com/gin-gonic/gin"
)

// CallbackHandler terminates provider webhooks. Each provider's
// acknowledgment contract is honored exactly: a malformed ack would
// trigger provider-side retries.
type CallbackHandler struct {
	wechatClient *wechat.Client
	alipayClient *alipay.Client
	usecase      payment.PaymentUsecase
}

func NewCallbackHandler(wechatClient *wechat.Client, alipayClient *alipay.Client, usecase payment.PaymentUsecase) *CallbackHandler {
	return &CallbackHandler{
		wechatClient: wechatClient,
		alipayClient: alipayClient,
		usecase:      usecase,
	}
}

// WechatNotify handles POST /callbacks/wechat. The body is consumed
// raw: signature verification runs over the exact bytes received, any
// re-encoding would invalidate it.
func (h *CallbackHandler) WechatNotify(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "FAIL", "message": "unreadable body"})
		return
	}

	result, err := h.wechatClient.ParseNotification(
		c.GetHeader("Wechatpay-Timestamp"),
		c.GetHeader("Wechatpay-Nonce"),
		c.GetHeader("Wechatpay-Signature"),
		body,
	)
	if err != nil {
		// no state change; the provider's own retry mechanism applies
		c.JSON(http.StatusUnauthorized, gin.H{"code": "FAIL", "message": "signature verification failed"})
		return
	}

	if err := h.usecase.ProcessNotification(c.Request.Context(), domain.MethodWechat, result); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "FAIL", "message": "processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": "SUCCESS", "message": "OK"})
}

// AlipayNotify handles POST /callbacks/alipay. The provider expects a
// plain-text body: "success" stops retries, anything else re-queues.
func (h *CallbackHandler) AlipayNotify(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.String(http.StatusBadRequest, "fail")
		return
	}

	result, err := h.alipayClient.ParseNotification(c.Request.PostForm)
	if err != nil {
		if errors.Is(err, domain.ErrSignatureInvalid) {
			c.String(http.StatusUnauthorized, "fail")
			return
		}
		c.String(http.StatusBadRequest, "fail")
		return
	}

	if err := h.usecase.ProcessNotification(c.Request.Context(), domain.MethodAlipay, result); err != nil {
		c.String(http.StatusInternalServerError, "fail")
		return
	}

	c.String(http.StatusOK, "success")
}
