package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/disconnected/pkg/domain"
	"github.com/aretw0/disconnected/pkg/ports"
)

// sealedPrefix marks slot data written by the encryption middleware.
const sealedPrefix = "sealed:v1:"

// ErrKeySize is returned for keys that are not 32 bytes.
var ErrKeySize = errors.New("encryption key must be 32 bytes (AES-256)")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables key rotation without invalidating old saves.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.SlotStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that seals slot data with
// AES-GCM. Slot metadata (name, chapter, timestamps) stays readable so
// listings work without the key.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, ErrKeySize
	}
	for _, k := range config.FallbackKeys {
		if len(k) != 32 {
			return nil, ErrKeySize
		}
	}
	return func(next ports.SlotStore) ports.SlotStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}, nil
}

// ParseKey decodes a base64 key as used in configuration.
func ParseKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("failed to decode key: %w", err)
	}
	if len(key) != 32 {
		return nil, ErrKeySize
	}
	return key, nil
}

func (m *encryptionMiddleware) Put(ctx context.Context, slot domain.SaveSlot) error {
	ciphertext, err := encrypt([]byte(slot.Data), m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt slot: %w", err)
	}
	slot.Data = sealedPrefix + base64.StdEncoding.EncodeToString(ciphertext)
	return m.next.Put(ctx, slot)
}

func (m *encryptionMiddleware) Get(ctx context.Context, id string) (domain.SaveSlot, error) {
	slot, err := m.next.Get(ctx, id)
	if err != nil {
		return domain.SaveSlot{}, err
	}
	return m.open(slot)
}

func (m *encryptionMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

// List opens every slot. Slots that fail to open keep their metadata and
// lose their data, so a bad slot still shows up and can be deleted.
func (m *encryptionMiddleware) List(ctx context.Context) ([]domain.SaveSlot, error) {
	slots, err := m.next.List(ctx)
	if err != nil {
		return nil, err
	}
	for i, s := range slots {
		opened, err := m.open(s)
		if err != nil {
			s.Data = ""
			slots[i] = s
			continue
		}
		slots[i] = opened
	}
	return slots, nil
}

func (m *encryptionMiddleware) open(slot domain.SaveSlot) (domain.SaveSlot, error) {
	// Fail secure: plain slots are rejected once encryption is configured.
	encoded, ok := strings.CutPrefix(slot.Data, sealedPrefix)
	if !ok {
		return domain.SaveSlot{}, fmt.Errorf("%w: slot is missing its sealed envelope", domain.ErrCorruptSave)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return domain.SaveSlot{}, fmt.Errorf("%w: failed to decode ciphertext base64: %v", domain.ErrCorruptSave, err)
	}

	// Try Active, then Fallback
	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return domain.SaveSlot{}, fmt.Errorf("%w: %v", domain.ErrCorruptSave, err)
	}
	slot.Data = string(plainText)
	return slot, nil
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
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

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
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}
