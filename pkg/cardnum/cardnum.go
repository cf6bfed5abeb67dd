package cardnum

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

// NumberLength is the length of every issued card number. It equals one AES
// block, which lets the vault encrypt a number as a single block and keep the
// ciphertext deterministic for storage uniqueness checks.
const NumberLength = 16

// Generate returns a card number of NumberLength uniform random digits drawn
// from a cryptographically secure source. No checksum is applied.
func Generate() (string, error) {
	buf := make([]byte, NumberLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random digits: %w", err)
	}

	var builder strings.Builder
	builder.Grow(NumberLength)
	for _, b := range buf {
		builder.WriteByte(b%10 + '0')
	}
	return builder.String(), nil
}

// Last4 returns the display-safe suffix of a card number.
func Last4(number string) string {
	if len(number) < 4 {
		return number
	}
	return number[len(number)-4:]
}

// Vault encrypts and decrypts card numbers with a process-wide symmetric key.
// Encryption is deterministic: the same plaintext always yields the same
// ciphertext, so a unique index on the stored ciphertext enforces number
// uniqueness.
type Vault struct {
	block cipher.Block
}

func NewVault(key []byte) (*Vault, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return &Vault{block: block}, nil
}

func (v *Vault) Encrypt(number string) (string, error) {
	if len(number) != NumberLength {
		return "", fmt.Errorf("card number must be %d digits, got %d", NumberLength, len(number))
	}
	ciphertext := make([]byte, aes.BlockSize)
	v.block.Encrypt(ciphertext, []byte(number))
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (v *Vault) Decrypt(encrypted string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	if len(data) != aes.BlockSize {
		return "", fmt.Errorf("ciphertext must be %d bytes, got %d", aes.BlockSize, len(data))
	}
	plaintext := make([]byte, aes.BlockSize)
	v.block.Decrypt(plaintext, data)
	return string(plaintext), nil
}
