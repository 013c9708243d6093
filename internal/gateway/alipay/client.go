package alipay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/FENGsir1992/mall-payment-service/internal/config"
	"github.com/FENGsir1992/mall-payment-service/internal/domain"
)

// maxOutTradeNoLen is the provider's documented out_trade_no ceiling.
const maxOutTradeNoLen = 64

// Client talks to the open-platform gateway: every call is a signed
// form POST against a single endpoint, dispatched by method name.
type Client struct {
	appID      string
	notifyURL  string
	gatewayURL string

	signer     *Signer
	httpClient *http.Client
}

func NewClient(cfg *config.Alipay, timeout time.Duration) (*Client, error) {
	signer, err := NewSigner(cfg.PrivateKeyPath, cfg.PublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("alipay signer: %w", err)
	}
	return &Client{
		appID:      cfg.AppID,
		notifyURL:  cfg.NotifyURL,
		gatewayURL: cfg.GatewayURL,
		signer:     signer,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) MaxOutTradeNoLen() int {
	return maxOutTradeNoLen
}

func (c *Client) CreateTransaction(ctx context.Context, req *domain.CreateTransactionRequest) (*domain.CreateTransactionResult, error) {
	biz := bizCreate{
		OutTradeNo:  req.OutTradeNo,
		TotalAmount: yuanString(req.AmountMinor),
		Subject:     req.Description,
		Body:        req.Attach,
	}

	switch req.Scene {
	case domain.SceneQR:
		biz.ProductCode = "FACE_TO_FACE_PAYMENT"
		resp, err := c.execute(ctx, "alipay.trade.precreate", biz)
		if err != nil {
			return nil, err
		}
		return &domain.CreateTransactionResult{Scene: req.Scene, Credential: resp.QRCode}, nil

	case domain.SceneApp:
		biz.ProductCode = "QUICK_MSECURITY_PAY"
		params, err := c.signedParams("alipay.trade.app.pay", biz)
		if err != nil {
			return nil, err
		}
		// the in-app SDK consumes the signed order string directly
		return &domain.CreateTransactionResult{Scene: req.Scene, Credential: params.Encode()}, nil

	case domain.SceneWap:
		biz.ProductCode = "QUICK_WAP_WAY"
		return c.redirectResult(req.Scene, "alipay.trade.wap.pay", biz)

	default:
		biz.ProductCode = "FAST_INSTANT_TRADE_PAY"
		return c.redirectResult(req.Scene, "alipay.trade.page.pay", biz)
	}
}

func (c *Client) QueryTransaction(ctx context.Context, outTradeNo string) (*domain.TradeInfo, error) {
	resp, err := c.execute(ctx, "alipay.trade.query", bizOutTradeNo{OutTradeNo: outTradeNo})
	if err != nil {
		return nil, err
	}
	return &domain.TradeInfo{
		OutTradeNo:    resp.OutTradeNo,
		TransactionID: resp.TradeNo,
		Status:        mapTradeStatus(resp.TradeStatus),
	}, nil
}

func (c *Client) CloseTransaction(ctx context.Context, outTradeNo string) error {
	_, err := c.execute(ctx, "alipay.trade.close", bizOutTradeNo{OutTradeNo: outTradeNo})
	return err
}

func (c *Client) RefundTransaction(ctx context.Context, req *domain.RefundTransactionRequest) error {
	_, err := c.execute(ctx, "alipay.trade.refund", bizRefund{
		OutTradeNo:   req.OutTradeNo,
		RefundAmount: yuanString(req.AmountMinor),
		OutRequestNo: req.OutRefundNo,
		RefundReason: req.Reason,
	})
	return err
}

// ParseNotification authenticates one async notify (form-encoded).
// Any verification failure is ErrSignatureInvalid and must not mutate
// state.
func (c *Client) ParseNotification(params url.Values) (*domain.NotifyResult, error) {
	if !c.signer.VerifyNotify(params) {
		return nil, domain.ErrSignatureInvalid
	}
	return &domain.NotifyResult{
		OutTradeNo:    params.Get("out_trade_no"),
		TransactionID: params.Get("trade_no"),
		Status:        mapTradeStatus(params.Get("trade_status")),
	}, nil
}

func (c *Client) signedParams(method string, biz any) (url.Values, error) {
	bizJSON, err := json.Marshal(biz)
	if err != nil {
		return nil, fmt.Errorf("encoding biz_content: %w", err)
	}

	params := url.Values{}
	params.Set("app_id", c.appID)
	params.Set("method", method)
	params.Set("format", "JSON")
	params.Set("charset", "utf-8")
	params.Set("sign_type", "RSA2")
	params.Set("timestamp", time.Now().Format("2006-01-02 15:04:05"))
	params.Set("version", "1.0")
	params.Set("notify_url", c.notifyURL)
	params.Set("biz_content", string(bizJSON))

	signature, err := c.signer.Sign(params)
	if err != nil {
		return nil, err
	}
	params.Set("sign", signature)
	return params, nil
}

func (c *Client) redirectResult(scene domain.Scene, method string, biz bizCreate) (*domain.CreateTransactionResult, error) {
	params, err := c.signedParams(method, biz)
	if err != nil {
		return nil, err
	}
	return &domain.CreateTransactionResult{
		Scene:      scene,
		Credential: c.gatewayURL + "?" + params.Encode(),
	}, nil
}

// execute posts one signed call and unwraps the per-method response
// document. Transport and provider-side failures both surface as
// ErrGatewayUnavailable.
func (c *Client) execute(ctx context.Context, method string, biz any) (*apiResponse, error) {
	params, err := c.signedParams(method, biz)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", domain.ErrGatewayUnavailable, err)
	}

	// response document key is the method name with dots replaced
	var document map[string]json.RawMessage
	if err := json.Unmarshal(respBody, &document); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", domain.ErrGatewayUnavailable, err)
	}
	raw, ok := document[strings.ReplaceAll(method, ".", "_")+"_response"]
	if !ok {
		return nil, fmt.Errorf("%w: response document missing for %s", domain.ErrGatewayUnavailable, method)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", domain.ErrGatewayUnavailable, err)
	}
	if apiResp.Code != codeOK {
		return nil, fmt.Errorf("%w: %s %s: %s %s", domain.ErrGatewayUnavailable, method, apiResp.Code, apiResp.SubCode, apiResp.SubMsg)
	}
	return &apiResp, nil
}
