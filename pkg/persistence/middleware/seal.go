package middleware

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/easelhq/easel/pkg/domain"
	"github.com/easelhq/easel/pkg/ports"
	"github.com/easelhq/easel/pkg/props"
	"golang.org/x/crypto/chacha20poly1305"
)

// sealedField carries the ciphertext inside an envelope record's props.
const sealedField = "__sealed__"

// SealConfig holds the keys for sealing and opening records.
type SealConfig struct {
	// ActiveKey seals new records. Must be 32 bytes.
	ActiveKey []byte

	// FallbackKeys are old keys tried when opening fails, enabling
	// zero-downtime key rotation.
	FallbackKeys [][]byte
}

type sealMiddleware struct {
	next   ports.SurfaceStore
	config SealConfig
}

// NewSealMiddleware creates a middleware that seals records with
// XChaCha20-Poly1305 before they reach the backing store. The stored
// envelope keeps the ID, module, mode and generation readable for List and
// monitoring; the props tree is replaced by the ciphertext.
func NewSealMiddleware(config SealConfig) Middleware {
	if len(config.ActiveKey) != chacha20poly1305.KeySize {
		panic("active key must be 32 bytes")
	}
	return func(next ports.SurfaceStore) ports.SurfaceStore {
		return &sealMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *sealMiddleware) Save(ctx context.Context, surface *domain.Surface) error {
	plaintext, err := json.Marshal(surface)
	if err != nil {
		return fmt.Errorf("failed to encode surface %s: %w", surface.ID, err)
	}

	ciphertext, err := seal(plaintext, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to seal surface %s: %w", surface.ID, err)
	}

	envelope := surface.Clone()
	envelope.Props = props.Object(map[string]props.Value{
		sealedField: props.String(base64.StdEncoding.EncodeToString(ciphertext)),
	})

	return m.next.Save(ctx, envelope)
}

func (m *sealMiddleware) Load(ctx context.Context, id domain.SurfaceID) (*domain.Surface, error) {
	envelope, err := m.next.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	// Fail closed: with sealing configured, an unsealed record is treated as
	// corrupt rather than returned in the clear.
	field, ok := envelope.Props.Field(sealedField)
	if !ok {
		return nil, fmt.Errorf("surface %s: record is missing its sealed envelope", id)
	}
	encoded, ok := field.AsString()
	if !ok {
		return nil, fmt.Errorf("surface %s: sealed envelope is not a string", id)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("surface %s: failed to decode envelope: %w", id, err)
	}

	plaintext, err := openWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("surface %s: failed to open envelope: %w", id, err)
	}

	var surface domain.Surface
	if err := json.Unmarshal(plaintext, &surface); err != nil {
		return nil, fmt.Errorf("surface %s: failed to decode sealed record: %w", id, err)
	}
	return &surface, nil
}

func (m *sealMiddleware) Delete(ctx context.Context, id domain.SurfaceID) error {
	return m.next.Delete(ctx, id)
}

func (m *sealMiddleware) List(ctx context.Context) ([]domain.SurfaceID, error) {
	return m.next.List(ctx)
}

// Helpers

func seal(plaintext, key []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func openWithRotation(ciphertext, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := open(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	for _, key := range fallbackKeys {
		if plain, err := open(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("opening failed with all available keys")
}

func open(ciphertext, key []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < aead.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, box := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]
	return aead.Open(nil, nonce, box, nil)
}
