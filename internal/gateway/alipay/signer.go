package alipay

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
)

// Signer implements the open-platform RSA2 contract: request params
// are sorted by key, joined as k=v pairs with &, and the resulting
// string is signed with SHA256WithRSA.
type Signer struct {
	privateKey      *rsa.PrivateKey
	alipayPublicKey *rsa.PublicKey
}

func NewSigner(privateKeyPath, alipayPublicKeyPath string) (*Signer, error) {
	privateKey, err := loadPrivateKey(privateKeyPath)
	if err != nil {
		return nil, err
	}
	publicKey, err := loadPublicKey(alipayPublicKeyPath)
	if err != nil {
		return nil, err
	}
	return &Signer{privateKey: privateKey, alipayPublicKey: publicKey}, nil
}

func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	keyPEM, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading app private key: %w", err)
	}
	block, _ := pem.Decode(keyPEM)
	if block == nil {
		return nil, fmt.Errorf("app private key is not valid PEM")
	}
	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("app private key is not RSA")
		}
		return rsaKey, nil
	}
	return x509.ParsePKCS1PrivateKey(block.Bytes)
}

func loadPublicKey(path string) (*rsa.PublicKey, error) {
	keyPEM, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading alipay public key: %w", err)
	}
	block, _ := pem.Decode(keyPEM)
	if block == nil {
		return nil, fmt.Errorf("alipay public key is not valid PEM")
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parsing alipay public key: %w", err)
	}
	rsaKey, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("alipay public key is not RSA")
	}
	return rsaKey, nil
}

// SignContent builds the canonical sign string: non-empty params sorted
// by key, sign itself excluded.
func SignContent(params url.Values) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		if key == "sign" {
			continue
		}
		if params.Get(key) == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params.Get(key))
	}
	return strings.Join(pairs, "&")
}

func (s *Signer) Sign(params url.Values) (string, error) {
	digest := sha256.Sum256([]byte(SignContent(params)))
	signature, err := rsa.SignPKCS1v15(rand.Reader, s.privateKey, crypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("signing request: %w", err)
	}
	return base64.StdEncoding.EncodeToString(signature), nil
}

// VerifyNotify checks an async notification's signature. sign and
// sign_type are excluded from the signed content per the provider
// contract. Malformed input is simply not verified.
func (s *Signer) VerifyNotify(params url.Values) bool {
	signature := params.Get("sign")
	if signature == "" {
		return false
	}
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}

	filtered := url.Values{}
	for key := range params {
		if key == "sign" || key == "sign_type" {
			continue
		}
		filtered.Set(key, params.Get(key))
	}
	digest := sha256.Sum256([]byte(SignContent(filtered)))
	return rsa.VerifyPKCS1v15(s.alipayPublicKey, crypto.SHA256, digest[:], sig) == nil
}
