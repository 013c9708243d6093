package wechat

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"fmt"
)

// DecryptResource opens the AEAD-protected callback payload:
// AES-256-GCM keyed with the shared APIv3 secret, with the envelope's
// associated data and nonce. The authentication tag is the trailing
// 16 bytes of the base64 ciphertext.
func DecryptResource(apiV3Key, associatedData, nonce, ciphertext string) ([]byte, error) {
	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decoding resource ciphertext: %w", err)
	}

	block, err := aes.NewCipher([]byte(apiV3Key))
	if err != nil {
		return nil, fmt.Errorf("building resource cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("building resource cipher: %w", err)
	}

	plaintext, err := aead.Open(nil, []byte(nonce), sealed, []byte(associatedData))
	if err != nil {
		return nil, fmt.Errorf("opening resource: %w", err)
	}
	return plaintext, nil
}
