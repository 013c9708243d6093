package wechat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/FENGsir1992/mall-payment-service/internal/config"
	"github.com/FENGsir1992/mall-payment-service/internal/domain"
)

// maxOutTradeNoLen is the provider's documented out_trade_no ceiling.
const maxOutTradeNoLen = 32

// Client talks to the WeChat Pay v3 JSON API. Built once at startup
// and shared; it holds no per-request state.
type Client struct {
	appID     string
	mchID     string
	apiV3Key  string
	notifyURL string
	baseURL   string

	signer     *Signer
	verifier   *Verifier
	httpClient *http.Client
}

func NewClient(cfg *config.Wechat, timeout time.Duration) (*Client, error) {
	signer, err := NewSigner(cfg.MchID, cfg.SerialNo, cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("wechat signer: %w", err)
	}
	verifier, err := NewVerifier(cfg.PlatformCertPath)
	if err != nil {
		return nil, fmt.Errorf("wechat verifier: %w", err)
	}
	return &Client{
		appID:      cfg.AppID,
		mchID:      cfg.MchID,
		apiV3Key:   cfg.APIv3Key,
		notifyURL:  cfg.NotifyURL,
		baseURL:    cfg.BaseURL,
		signer:     signer,
		verifier:   verifier,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) MaxOutTradeNoLen() int {
	return maxOutTradeNoLen
}

func (c *Client) CreateTransaction(ctx context.Context, req *domain.CreateTransactionRequest) (*domain.CreateTransactionResult, error) {
	path := "/v3/pay/transactions/" + sceneEndpoint(req.Scene)
	body := createRequest{
		AppID:       c.appID,
		MchID:       c.mchID,
		Description: req.Description,
		OutTradeNo:  req.OutTradeNo,
		NotifyURL:   c.notifyURL,
		Attach:      req.Attach,
		Amount:      amount{Total: req.AmountMinor, Currency: "CNY"},
	}
	if req.Scene == domain.SceneWap {
		body.SceneInfo = &sceneInfo{PayerClientIP: "127.0.0.1"}
	}

	respBody, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}

	var resp createResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding create response: %v", domain.ErrGatewayUnavailable, err)
	}
	return &domain.CreateTransactionResult{
		Scene:      req.Scene,
		Credential: sceneCredential(req.Scene, &resp),
	}, nil
}

func (c *Client) QueryTransaction(ctx context.Context, outTradeNo string) (*domain.TradeInfo, error) {
	path := fmt.Sprintf("/v3/pay/transactions/out-trade-no/%s?mchid=%s", url.PathEscape(outTradeNo), c.mchID)

	respBody, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp queryResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding query response: %v", domain.ErrGatewayUnavailable, err)
	}
	return &domain.TradeInfo{
		OutTradeNo:    resp.OutTradeNo,
		TransactionID: resp.TransactionID,
		Status:        mapTradeState(resp.TradeState),
	}, nil
}

func (c *Client) CloseTransaction(ctx context.Context, outTradeNo string) error {
	path := fmt.Sprintf("/v3/pay/transactions/out-trade-no/%s/close", url.PathEscape(outTradeNo))
	_, err := c.do(ctx, http.MethodPost, path, closeRequest{MchID: c.mchID})
	return err
}

func (c *Client) RefundTransaction(ctx context.Context, req *domain.RefundTransactionRequest) error {
	body := refundRequest{
		OutTradeNo:  req.OutTradeNo,
		OutRefundNo: req.OutRefundNo,
		Reason:      req.Reason,
		Amount: refundAmount{
			Refund:   req.AmountMinor,
			Total:    req.TotalMinor,
			Currency: "CNY",
		},
	}
	_, err := c.do(ctx, http.MethodPost, "/v3/refund/domestic/refunds", body)
	return err
}

// ParseNotification authenticates and opens one callback. The body must
// be the exact raw bytes received. Any authentication, decryption or
// decoding failure is reported as ErrSignatureInvalid: such requests
// never mutate state.
func (c *Client) ParseNotification(timestamp, nonce, signature string, body []byte) (*domain.NotifyResult, error) {
	if !c.verifier.Verify(timestamp, nonce, body, signature) {
		return nil, domain.ErrSignatureInvalid
	}

	var envelope notifyEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, domain.ErrSignatureInvalid
	}
	plaintext, err := DecryptResource(c.apiV3Key, envelope.Resource.AssociatedData, envelope.Resource.Nonce, envelope.Resource.Ciphertext)
	if err != nil {
		return nil, domain.ErrSignatureInvalid
	}
	var resource notifyResource
	if err := json.Unmarshal(plaintext, &resource); err != nil {
		return nil, domain.ErrSignatureInvalid
	}

	return &domain.NotifyResult{
		OutTradeNo:    resource.OutTradeNo,
		TransactionID: resource.TransactionID,
		Status:        mapTradeState(resource.TradeState),
	}, nil
}

func sceneEndpoint(scene domain.Scene) string {
	switch scene {
	case domain.SceneWap:
		return "h5"
	case domain.SceneApp:
		return "app"
	default:
		// desktop web is presented as a QR to scan
		return "native"
	}
}

func sceneCredential(scene domain.Scene, resp *createResponse) string {
	switch scene {
	case domain.SceneWap:
		return resp.H5URL
	case domain.SceneApp:
		return resp.PrepayID
	default:
		return resp.CodeURL
	}
}

// do signs and executes one API round-trip. Transport failures and
// provider-side errors both surface as ErrGatewayUnavailable: the
// caller cannot assume the provider side did not partially succeed.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
	}

	authorization, err := c.signer.Authorization(method, path, payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", authorization)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", domain.ErrGatewayUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr errorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Code != "" {
			return nil, fmt.Errorf("%w: %s: %s", domain.ErrGatewayUnavailable, apiErr.Code, apiErr.Message)
		}
		return nil, fmt.Errorf("%w: status %d", domain.ErrGatewayUnavailable, resp.StatusCode)
	}

	return respBody, nil
}
