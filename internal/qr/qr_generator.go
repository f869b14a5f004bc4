package qr

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"campus-events/internal/models"

	"github.com/skip2/go-qrcode"
)

// TicketPayload is what a ticket QR code carries once decrypted.
type TicketPayload struct {
	RegistrationID string `json:"rid"`
	EventID        string `json:"eid"`
	TicketCode     string `json:"tc"`
}

var ErrInvalidPayload = errors.New("invalid ticket payload")

type QRGenerator struct {
	secret []byte
	size   int
}

func NewQRGenerator(secret string, size int) *QRGenerator {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	if size <= 0 {
		size = 256
	}
	return &QRGenerator{secret: hashed[:], size: size}
}

// Encode returns the encrypted, URL-safe string printed inside the QR code.
func (q *QRGenerator) Encode(reg *models.Registration) (string, error) {
	data, err := json.Marshal(TicketPayload{
		RegistrationID: reg.ID,
		EventID:        reg.EventID,
		TicketCode:     reg.TicketCode,
	})
	if err != nil {
		return "", err
	}
	return encryptAES(data, q.secret)
}

// Decode reverses Encode. Anything not sealed with this generator's secret is ErrInvalidPayload.
func (q *QRGenerator) Decode(encoded string) (*TicketPayload, error) {
	data, err := decryptAES(encoded, q.secret)
	if err != nil {
		return nil, ErrInvalidPayload
	}
	var payload TicketPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.RegistrationID == "" {
		return nil, ErrInvalidPayload
	}
	return &payload, nil
}

// GeneratePNG renders the encrypted ticket payload as a QR image.
func (q *QRGenerator) GeneratePNG(reg *models.Registration) ([]byte, error) {
	encoded, err := q.Encode(reg)
	if err != nil {
		return nil, fmt.Errorf("encrypt ticket payload: %w", err)
	}
	return qrcode.Encode(encoded, qrcode.Medium, q.size)
}

func encryptAES(data []byte, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nonce, nonce, data, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func decryptAES(encoded string, key []byte) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(raw) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, ciphertext := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}
