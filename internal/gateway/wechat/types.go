package wechat

import "github.com/FENGsir1992/mall-payment-service/internal/domain"

type amount struct {
	Total    int64  `json:"total"`
	Currency string `json:"currency,omitempty"`
}

type refundAmount struct {
	Refund   int64  `json:"refund"`
	Total    int64  `json:"total"`
	Currency string `json:"currency"`
}

type sceneInfo struct {
	PayerClientIP string `json:"payer_client_ip"`
	H5Info        *struct {
		Type string `json:"type"`
	} `json:"h5_info,omitempty"`
}

type createRequest struct {
	AppID       string     `json:"appid"`
	MchID       string     `json:"mchid"`
	Description string     `json:"description"`
	OutTradeNo  string     `json:"out_trade_no"`
	NotifyURL   string     `json:"notify_url"`
	Attach      string     `json:"attach,omitempty"`
	Amount      amount     `json:"amount"`
	SceneInfo   *sceneInfo `json:"scene_info,omitempty"`
}

type createResponse struct {
	CodeURL  string `json:"code_url,omitempty"`
	H5URL    string `json:"h5_url,omitempty"`
	PrepayID string `json:"prepay_id,omitempty"`
}

type closeRequest struct {
	MchID string `json:"mchid"`
}

type refundRequest struct {
	OutTradeNo  string       `json:"out_trade_no"`
	OutRefundNo string       `json:"out_refund_no"`
	Reason      string       `json:"reason,omitempty"`
	Amount      refundAmount `json:"amount"`
}

type queryResponse struct {
	OutTradeNo    string `json:"out_trade_no"`
	TransactionID string `json:"transaction_id"`
	TradeState    string `json:"trade_state"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// notifyEnvelope is the outer callback document; the payload itself is
// AEAD-sealed inside resource.
type notifyEnvelope struct {
	ID           string `json:"id"`
	EventType    string `json:"event_type"`
	ResourceType string `json:"resource_type"`
	Resource     struct {
		Algorithm      string `json:"algorithm"`
		Ciphertext     string `json:"ciphertext"`
		AssociatedData string `json:"associated_data"`
		Nonce          string `json:"nonce"`
		OriginalType   string `json:"original_type"`
	} `json:"resource"`
}

type notifyResource struct {
	OutTradeNo    string `json:"out_trade_no"`
	TransactionID string `json:"transaction_id"`
	TradeState    string `json:"trade_state"`
}

// mapTradeState folds the provider's trade_state vocabulary into the
// canonical status: settled states map to success, states still waiting
// on the payer stay pending, everything else is failed.
func mapTradeState(state string) domain.TradeStatus {
	switch state {
	case "SUCCESS":
		return domain.TradeSuccess
	case "NOTPAY", "USERPAYING":
		return domain.TradePending
	default:
		return domain.TradeFailed
	}
}
