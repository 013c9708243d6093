package alipay

import (
	"fmt"

	"github.com/FENGsir1992/mall-payment-service/internal/domain"
)

const codeOK = "10000"

type bizCreate struct {
	OutTradeNo  string `json:"out_trade_no"`
	TotalAmount string `json:"total_amount"`
	Subject     string `json:"subject"`
	ProductCode string `json:"product_code,omitempty"`
	Body        string `json:"body,omitempty"`
}

type bizOutTradeNo struct {
	OutTradeNo string `json:"out_trade_no"`
}

type bizRefund struct {
	OutTradeNo   string `json:"out_trade_no"`
	RefundAmount string `json:"refund_amount"`
	OutRequestNo string `json:"out_request_no"`
	RefundReason string `json:"refund_reason,omitempty"`
}

type apiResponse struct {
	Code        string `json:"code"`
	Msg         string `json:"msg"`
	SubCode     string `json:"sub_code"`
	SubMsg      string `json:"sub_msg"`
	OutTradeNo  string `json:"out_trade_no"`
	TradeNo     string `json:"trade_no"`
	TradeStatus string `json:"trade_status"`
	QRCode      string `json:"qr_code"`
}

// yuanString renders integer minor units as a two-decimal yuan amount.
// No floating point is involved at any step.
func yuanString(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}

// mapTradeStatus folds the provider's trade_status vocabulary into the
// canonical status.
func mapTradeStatus(status string) domain.TradeStatus {
	switch status {
	case "TRADE_SUCCESS", "TRADE_FINISHED":
		return domain.TradeSuccess
	case "WAIT_BUYER_PAY":
		return domain.TradePending
	default:
		return domain.TradeFailed
	}
}
