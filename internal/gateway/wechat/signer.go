package wechat

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"os"
	"time"
)

const authSchema = "WECHATPAY2-SHA256-RSA2048"

// Signer builds the v3 request credential: the canonical message
// (method, canonical URL, timestamp, nonce, body joined by newlines)
// is signed with the merchant RSA key and packed into the
// Authorization header value.
type Signer struct {
	mchID      string
	serialNo   string
	privateKey *rsa.PrivateKey
}

func NewSigner(mchID, serialNo, privateKeyPath string) (*Signer, error) {
	keyPEM, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("reading merchant private key: %w", err)
	}
	privateKey, err := parsePrivateKey(keyPEM)
	if err != nil {
		return nil, err
	}
	return &Signer{
		mchID:      mchID,
		serialNo:   serialNo,
		privateKey: privateKey,
	}, nil
}

func parsePrivateKey(keyPEM []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(keyPEM)
	if block == nil {
		return nil, fmt.Errorf("private key is not valid PEM")
	}
	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("private key is not RSA")
		}
		return rsaKey, nil
	}
	return x509.ParsePKCS1PrivateKey(block.Bytes)
}

// Authorization returns the header value for one request. canonicalURL
// is the path plus query, without scheme and host.
func (s *Signer) Authorization(method, canonicalURL string, body []byte) (string, error) {
	nonce, err := nonceStr()
	if err != nil {
		return "", err
	}
	timestamp := time.Now().Unix()

	message := fmt.Sprintf("%s\n%s\n%d\n%s\n%s\n", method, canonicalURL, timestamp, nonce, body)
	signature, err := s.sign([]byte(message))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		`%s mchid="%s",nonce_str="%s",signature="%s",timestamp="%d",serial_no="%s"`,
		authSchema, s.mchID, nonce, signature, timestamp, s.serialNo,
	), nil
}

func (s *Signer) sign(message []byte) (string, error) {
	digest := sha256.Sum256(message)
	signature, err := rsa.SignPKCS1v15(rand.Reader, s.privateKey, crypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("signing request: %w", err)
	}
	return base64.StdEncoding.EncodeToString(signature), nil
}

func nonceStr() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
