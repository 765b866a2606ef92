package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/ports"
)

// envelopeKey marks a stored configuration as encrypted.
const envelopeKey = "__encrypted__"

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.ConfigStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts configuration
// attributes using AES-GCM. The configuration ID and name stay in the
// clear so listing and selection keep working; only the attribute document
// is opaque at rest.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.ConfigStore) ports.ConfigStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) PutConfiguration(ctx context.Context, tenant string, cfg *domain.Configuration) error {
	plainText, err := json.Marshal(cfg.Attributes)
	if err != nil {
		return fmt.Errorf("failed to marshal attributes: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt attributes: %w", err)
	}

	// An opaque envelope replaces the attribute document. The caller's
	// configuration must not be mutated; the engine keeps using it.
	envelope := &domain.Configuration{
		ID:   cfg.ID,
		Name: cfg.Name,
		Attributes: map[string]any{
			envelopeKey: base64.StdEncoding.EncodeToString(ciphertext),
		},
	}

	return m.next.PutConfiguration(ctx, tenant, envelope)
}

func (m *encryptionMiddleware) Configuration(ctx context.Context, tenant, configID string) (*domain.Configuration, error) {
	cfg, err := m.next.Configuration(ctx, tenant, configID)
	if err != nil {
		return nil, err
	}
	return m.open(cfg)
}

func (m *encryptionMiddleware) SelectedConfiguration(ctx context.Context, tenant, projectID string) (*domain.Configuration, error) {
	cfg, err := m.next.SelectedConfiguration(ctx, tenant, projectID)
	if err != nil {
		return nil, err
	}
	return m.open(cfg)
}

func (m *encryptionMiddleware) ListConfigurations(ctx context.Context, tenant, projectID string) ([]string, error) {
	return m.next.ListConfigurations(ctx, tenant, projectID)
}

// open unwraps the envelope. A store that was written before encryption
// was enabled would lack the envelope; fail secure rather than guessing.
func (m *encryptionMiddleware) open(cfg *domain.Configuration) (*domain.Configuration, error) {
	encryptedStr, ok := cfg.Attributes[envelopeKey].(string)
	if !ok {
		return nil, errors.New("configuration is missing encrypted attribute envelope")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encryptedStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt attributes: %w", err)
	}

	attrs := map[string]any{}
	if err := json.Unmarshal(plainText, &attrs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted attributes: %w", err)
	}

	return &domain.Configuration{ID: cfg.ID, Name: cfg.Name, Attributes: attrs}, nil
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	// Try active key first
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	// Try fallbacks in order
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	ciphertextBytes := ciphertext[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertextBytes, nil)
}
