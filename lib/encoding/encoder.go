// Package encoding seals component records for storage at rest.
//
// A sealed record is the record's map form packed with msgpack and then
// either signed (readable, tamper-evident) or encrypted (opaque).
package encoding

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

var (
	ErrInvalidFormat    = errors.New("encoding: invalid sealed format")
	ErrSignatureInvalid = errors.New("encoding: signature verification failed")
	ErrDecryptFailed    = errors.New("encoding: decryption failed")
	ErrNotMappable      = errors.New("encoding: value has no map form")
)

// Encoder seals and opens values using a single key.
// It supports two modes:
//   - Signed (default): base64 msgpack + HMAC signature
//   - Encrypted: AES-256-GCM
type Encoder struct {
	key []byte
	gcm cipher.AEAD
}

// NewEncoder creates an encoder. Keys shorter than 32 bytes are stretched
// with SHA-256.
func NewEncoder(key []byte) (*Encoder, error) {
	if len(key) == 0 {
		return nil, errors.New("encoding: empty key")
	}
	if len(key) < 32 {
		h := sha256.Sum256(key)
		key = h[:]
	}

	block, err := aes.NewCipher(key[:32])
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Encoder{key: key, gcm: gcm}, nil
}

// Mappable is implemented by values that expose a plain map form.
type Mappable interface {
	EncodeMap() map[string]any
}

// Unmappable is implemented by values that can be populated from a map form.
type Unmappable interface {
	DecodeMap(map[string]any) error
}

// Seal packs v and signs or encrypts it.
func (e *Encoder) Seal(v Mappable, sensitive bool) (string, error) {
	if v == nil {
		return "", ErrNotMappable
	}
	packed, err := msgpack.Marshal(v.EncodeMap())
	if err != nil {
		return "", fmt.Errorf("encoding: pack: %w", err)
	}
	if sensitive {
		return e.encrypt(packed)
	}
	return e.sign(packed), nil
}

// Open reverses Seal into v. The sensitive flag must match the one used
// when sealing.
func (e *Encoder) Open(sealed string, sensitive bool, v Unmappable) error {
	var packed []byte
	var err error
	if sensitive {
		packed, err = e.decrypt(sealed)
	} else {
		packed, err = e.verify(sealed)
	}
	if err != nil {
		return err
	}

	var data map[string]any
	if err := msgpack.Unmarshal(packed, &data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return v.DecodeMap(data)
}

// sign produces base64(data) + "." + base64(mac[:16]).
func (e *Encoder) sign(data []byte) string {
	b64 := base64.RawURLEncoding.EncodeToString(data)
	return b64 + "." + base64.RawURLEncoding.EncodeToString(e.mac(data))
}

func (e *Encoder) verify(sealed string) ([]byte, error) {
	payload, sigText, ok := strings.Cut(sealed, ".")
	if !ok {
		return nil, fmt.Errorf("%w: missing signature", ErrInvalidFormat)
	}
	data, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigText)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if !hmac.Equal(sig, e.mac(data)) {
		return nil, ErrSignatureInvalid
	}
	return data, nil
}

func (e *Encoder) mac(data []byte) []byte {
	m := hmac.New(sha256.New, e.key)
	m.Write(data)
	return m.Sum(nil)[:16]
}

func (e *Encoder) encrypt(data []byte) (string, error) {
	nonce := make([]byte, e.gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(e.gcm.Seal(nonce, nonce, data, nil)), nil
}

func (e *Encoder) decrypt(sealed string) ([]byte, error) {
	ciphertext, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if len(ciphertext) < e.gcm.NonceSize() {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrInvalidFormat)
	}
	nonce, body := ciphertext[:e.gcm.NonceSize()], ciphertext[e.gcm.NonceSize():]
	out, err := e.gcm.Open(nil, nonce, body, nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return out, nil
}
