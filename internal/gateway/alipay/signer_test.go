package alipay

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"net/url"
	"os"
	"path/filepath"
	"testing"
)

// testKeys writes a throwaway app key plus a "platform" public key
// derived from the same pair, so test notifications can be signed the
// way the provider signs them.
func testKeys(t *testing.T) (key *rsa.PrivateKey, privPath, pubPath string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating test key: %v", err)
	}

	dir := t.TempDir()

	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshalling private key: %v", err)
	}
	privPath = filepath.Join(dir, "app_key.pem")
	if err := os.WriteFile(privPath, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER}), 0o600); err != nil {
		t.Fatalf("writing private key: %v", err)
	}

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshalling public key: %v", err)
	}
	pubPath = filepath.Join(dir, "alipay_public.pem")
	if err := os.WriteFile(pubPath, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}), 0o600); err != nil {
		t.Fatalf("writing public key: %v", err)
	}

	return key, privPath, pubPath
}

// signNotify signs a form the way the platform does: sign and sign_type
// excluded, remaining params sorted and joined.
func signNotify(t *testing.T, key *rsa.PrivateKey, params url.Values) string {
	t.Helper()

	filtered := url.Values{}
	for k := range params {
		if k == "sign" || k == "sign_type" {
			continue
		}
		filtered.Set(k, params.Get(k))
	}
	digest := sha256.Sum256([]byte(SignContent(filtered)))
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	if err != nil {
		t.Fatalf("signing test notify: %v", err)
	}
	return base64.StdEncoding.EncodeToString(sig)
}

func TestSignContent(t *testing.T) {
	t.Parallel()

	params := url.Values{}
	params.Set("method", "alipay.trade.query")
	params.Set("app_id", "2021000000000001")
	params.Set("biz_content", `{"out_trade_no":"abc"}`)
	params.Set("sign", "must-be-excluded")
	params.Set("empty_value", "")

	got := SignContent(params)
	want := `app_id=2021000000000001&biz_content={"out_trade_no":"abc"}&method=alipay.trade.query`
	if got != want {
		t.Errorf("SignContent =\n%s\nwant\n%s", got, want)
	}
}

func TestSignAndVerifyNotify(t *testing.T) {
	t.Parallel()

	key, privPath, pubPath := testKeys(t)
	signer, err := NewSigner(privPath, pubPath)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}

	params := url.Values{}
	params.Set("notify_id", "n-1")
	params.Set("out_trade_no", "trade123")
	params.Set("trade_no", "2026082922001")
	params.Set("trade_status", "TRADE_SUCCESS")
	params.Set("total_amount", "99.00")
	params.Set("sign_type", "RSA2")
	params.Set("sign", signNotify(t, key, params))

	if !signer.VerifyNotify(params) {
		t.Errorf("genuine notification rejected")
	}

	tampered := url.Values{}
	for k := range params {
		tampered.Set(k, params.Get(k))
	}
	tampered.Set("total_amount", "0.01")
	if signer.VerifyNotify(tampered) {
		t.Errorf("tampered notification accepted")
	}

	unsigned := url.Values{}
	unsigned.Set("out_trade_no", "trade123")
	if signer.VerifyNotify(unsigned) {
		t.Errorf("unsigned notification accepted")
	}
}

func TestYuanString(t *testing.T) {
	t.Parallel()

	cases := []struct {
		minor int64
		want  string
	}{
		{9900, "99.00"},
		{1, "0.01"},
		{10, "0.10"},
		{100, "1.00"},
		{123456, "1234.56"},
		{105, "1.05"},
	}
	for _, tc := range cases {
		if got := yuanString(tc.minor); got != tc.want {
			t.Errorf("yuanString(%d) = %s, want %s", tc.minor, got, tc.want)
		}
	}
}
