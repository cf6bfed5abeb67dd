package cardnum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		number, err := Generate()
		require.NoError(t, err)
		assert.Len(t, number, NumberLength)
		for _, r := range number {
			assert.True(t, r >= '0' && r <= '9', "unexpected rune %q in %s", r, number)
		}
		seen[number] = struct{}{}
	}
	// 100 draws from a 10^16 space colliding down to a handful would mean a
	// broken random source.
	assert.Greater(t, len(seen), 90)
}

func TestLast4(t *testing.T) {
	assert.Equal(t, "3456", Last4("1234567890123456"))
	assert.Equal(t, "123", Last4("123"))
}

func TestVaultRoundTrip(t *testing.T) {
	vault, err := NewVault([]byte("0123456789abcdef"))
	require.NoError(t, err)

	numbers := []string{
		"0000000000000000",
		"9999999999999999",
		"1234567890123456",
	}
	for _, number := range numbers {
		encrypted, err := vault.Encrypt(number)
		require.NoError(t, err)
		assert.NotEqual(t, number, encrypted)

		decrypted, err := vault.Decrypt(encrypted)
		require.NoError(t, err)
		assert.Equal(t, number, decrypted)
	}
}

func TestVaultRoundTripRandom(t *testing.T) {
	vault, err := NewVault([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		number, err := Generate()
		require.NoError(t, err)

		encrypted, err := vault.Encrypt(number)
		require.NoError(t, err)
		decrypted, err := vault.Decrypt(encrypted)
		require.NoError(t, err)
		assert.Equal(t, number, decrypted)
	}
}

func TestVaultDeterministic(t *testing.T) {
	vault, err := NewVault([]byte("0123456789abcdef"))
	require.NoError(t, err)

	first, err := vault.Encrypt("1111222233334444")
	require.NoError(t, err)
	second, err := vault.Encrypt("1111222233334444")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestVaultErrors(t *testing.T) {
	_, err := NewVault([]byte("too-short"))
	assert.Error(t, err)

	vault, err := NewVault([]byte("0123456789abcdef"))
	require.NoError(t, err)

	_, err = vault.Encrypt("123")
	assert.Error(t, err)

	_, err = vault.Decrypt("not-base64!!!")
	assert.Error(t, err)

	_, err = vault.Decrypt("c2hvcnQ=")
	assert.Error(t, err)
}
