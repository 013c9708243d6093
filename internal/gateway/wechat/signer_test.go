package wechat

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testAPIv3Key = "0123456789abcdef0123456789abcdef"

// testCredentials writes a throwaway merchant key and a matching
// self-signed platform certificate into dir, so the same key pair
// drives both sides of the handshake in tests.
func testCredentials(t *testing.T) (key *rsa.PrivateKey, keyPath, certPath string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating test key: %v", err)
	}

	dir := t.TempDir()

	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshalling test key: %v", err)
	}
	keyPath = filepath.Join(dir, "merchant_key.pem")
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER})
	if err := os.WriteFile(keyPath, keyPEM, 0o600); err != nil {
		t.Fatalf("writing test key: %v", err)
	}

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "test platform cert"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("creating test certificate: %v", err)
	}
	certPath = filepath.Join(dir, "platform_cert.pem")
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	if err := os.WriteFile(certPath, certPEM, 0o600); err != nil {
		t.Fatalf("writing test certificate: %v", err)
	}

	return key, keyPath, certPath
}

// signCallback produces a platform-side callback signature the way the
// provider does: RSA-SHA256 over timestamp, nonce and raw body joined
// by newlines.
func signCallback(t *testing.T, key *rsa.PrivateKey, timestamp, nonce string, body []byte) string {
	t.Helper()

	message := fmt.Sprintf("%s\n%s\n%s\n", timestamp, nonce, body)
	digest := sha256.Sum256([]byte(message))
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	if err != nil {
		t.Fatalf("signing test callback: %v", err)
	}
	return base64.StdEncoding.EncodeToString(sig)
}

func TestSignerAuthorizationFormat(t *testing.T) {
	t.Parallel()

	_, keyPath, _ := testCredentials(t)
	signer, err := NewSigner("1900000001", "SERIAL123", keyPath)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}

	auth, err := signer.Authorization("POST", "/v3/pay/transactions/native", []byte(`{"total":100}`))
	if err != nil {
		t.Fatalf("Authorization: %v", err)
	}

	if !strings.HasPrefix(auth, "WECHATPAY2-SHA256-RSA2048 ") {
		t.Errorf("authorization lacks schema prefix: %q", auth)
	}
	for _, field := range []string{`mchid="1900000001"`, `serial_no="SERIAL123"`, "nonce_str=", "signature=", "timestamp="} {
		if !strings.Contains(auth, field) {
			t.Errorf("authorization missing %s: %q", field, auth)
		}
	}
}

func TestVerifierRoundTrip(t *testing.T) {
	t.Parallel()

	key, _, certPath := testCredentials(t)
	verifier, err := NewVerifier(certPath)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	body := []byte(`{"id":"evt-1"}`)
	timestamp := "1756400000"
	nonce := "abc123"
	signature := signCallback(t, key, timestamp, nonce, body)

	if !verifier.Verify(timestamp, nonce, body, signature) {
		t.Errorf("genuine signature rejected")
	}

	cases := []struct {
		name                  string
		timestamp, nonce, sig string
		body                  []byte
	}{
		{"tampered body", timestamp, nonce, signature, []byte(`{"id":"evt-2"}`)},
		{"tampered timestamp", "1756400001", nonce, signature, body},
		{"tampered nonce", timestamp, "zzz", signature, body},
		{"empty signature", timestamp, nonce, "", body},
		{"garbage signature", timestamp, nonce, "not-base64!!", body},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if verifier.Verify(tc.timestamp, tc.nonce, tc.body, tc.sig) {
				t.Errorf("forged callback accepted")
			}
		})
	}
}

func TestNewSignerRejectsBadKey(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	badPath := filepath.Join(dir, "bad.pem")
	if err := os.WriteFile(badPath, []byte("not a key"), 0o600); err != nil {
		t.Fatalf("writing bad key: %v", err)
	}

	if _, err := NewSigner("mch", "serial", badPath); err == nil {
		t.Errorf("expected an error for a malformed key file")
	}
	if _, err := NewSigner("mch", "serial", filepath.Join(dir, "missing.pem")); err == nil {
		t.Errorf("expected an error for a missing key file")
	}
}
