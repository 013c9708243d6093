package wechat

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"
)

// Verifier checks inbound callback signatures against the platform
// certificate. Verification runs over the exact raw bytes received;
// any re-serialization before this point breaks the signature.
type Verifier struct {
	publicKey *rsa.PublicKey
}

func NewVerifier(platformCertPath string) (*Verifier, error) {
	certPEM, err := os.ReadFile(platformCertPath)
	if err != nil {
		return nil, fmt.Errorf("reading platform certificate: %w", err)
	}
	publicKey, err := parseCertPublicKey(certPEM)
	if err != nil {
		return nil, err
	}
	return &Verifier{publicKey: publicKey}, nil
}

func parseCertPublicKey(certPEM []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(certPEM)
	if block == nil {
		return nil, fmt.Errorf("platform certificate is not valid PEM")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parsing platform certificate: %w", err)
	}
	publicKey, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("platform certificate key is not RSA")
	}
	return publicKey, nil
}

// Verify reconstructs the callback message (timestamp, nonce, raw body
// joined by newlines) and checks the RSA-SHA256 signature. Malformed
// input is simply not verified; this never errors.
func (v *Verifier) Verify(timestamp, nonce string, body []byte, signature string) bool {
	if timestamp == "" || nonce == "" || signature == "" {
		return false
	}
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	message := fmt.Sprintf("%s\n%s\n%s\n", timestamp, nonce, body)
	digest := sha256.Sum256([]byte(message))
	return rsa.VerifyPKCS1v15(v.publicKey, crypto.SHA256, digest[:], sig) == nil
}
