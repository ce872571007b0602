package auth_test

import (
	"testing"

	auth "github.com/Raghul-K-N/sunrisers-property-listing-assistant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "Valid password",
			password: "securePassword123!",
			wantErr:  false,
		},
		{
			name:     "Empty password",
			password: "",
			wantErr:  true, // bcrypt can hash empty strings, we refuse them
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := auth.HashPasswordWithCost(tt.password, 4)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.NotEmpty(t, hash)

			err = auth.ComparePasswordAndHash(tt.password, hash)
			assert.NoError(t, err)
		})
	}
}

func TestHashPasswordDistinctDigests(t *testing.T) {
	first, err := auth.HashPasswordWithCost("samePlaintext", 4)
	require.NoError(t, err)

	second, err := auth.HashPasswordWithCost("samePlaintext", 4)
	require.NoError(t, err)

	// bcrypt salts per call, both digests verify against the plaintext
	assert.NotEqual(t, first, second)
	assert.NoError(t, auth.ComparePasswordAndHash("samePlaintext", first))
	assert.NoError(t, auth.ComparePasswordAndHash("samePlaintext", second))
}

func TestComparePasswordAndHash(t *testing.T) {
	password := "testPassword123!"
	hash, err := auth.HashPasswordWithCost(password, 4)
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		wantErr  bool
	}{
		{
			name:     "Matching password",
			password: password,
			hash:     hash,
			wantErr:  false,
		},
		{
			name:     "Wrong password",
			password: "nopeNotIt",
			hash:     hash,
			wantErr:  true,
		},
		{
			name:     "Malformed hash reads as mismatch",
			password: password,
			hash:     "not-a-bcrypt-digest",
			wantErr:  true,
		},
		{
			name:     "Empty hash reads as mismatch",
			password: password,
			hash:     "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.ComparePasswordAndHash(tt.password, tt.hash)

			if tt.wantErr {
				assert.ErrorIs(t, err, auth.ErrMismatchedHashAndPassword)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestBcryptHasherFromConfig(t *testing.T) {
	cfg := newMockConfig()
	hasher := auth.NewBcryptHasher(cfg)

	hash, err := hasher.HashPassword("configuredCost")
	require.NoError(t, err)
	assert.NoError(t, hasher.ComparePasswordAndHash("configuredCost", hash))
	assert.ErrorIs(t, hasher.ComparePasswordAndHash("other", hash), auth.ErrMismatchedHashAndPassword)
}

func TestRandomPasswordHash(t *testing.T) {
	hash := auth.RandomPasswordHash()
	assert.NotEmpty(t, hash)
}
