package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitaldiary/entryvault/internal/config"
	cryptoDomain "github.com/vitaldiary/entryvault/internal/crypto/domain"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Environment:      config.EnvTest,
		Algorithm:        "aes-gcm",
		KdfTime:          1,
		KdfMemoryKiB:     8 * 1024,
		KdfThreads:       1,
		StoragePath:      t.TempDir(),
		LogLevel:         "error",
		AuditEnabled:     true,
		MetricsEnabled:   true,
		MetricsNamespace: "entryvault_test",
	}
}

func TestContainer(t *testing.T) {
	ctx := context.Background()

	t.Run("wires a working vault", func(t *testing.T) {
		container := NewContainer(testConfig(t))
		defer func() { require.NoError(t, container.Shutdown(ctx)) }()

		vault, err := container.Vault()
		require.NoError(t, err)

		require.NoError(t, vault.Initialize(ctx, []byte("container-passphrase")))
		_, err = vault.EncryptEntry(ctx, "entry-1", map[string]any{"pain": 3})
		require.NoError(t, err)
	})

	t.Run("vault is a singleton", func(t *testing.T) {
		container := NewContainer(testConfig(t))
		defer func() { require.NoError(t, container.Shutdown(ctx)) }()

		first, err := container.Vault()
		require.NoError(t, err)
		second, err := container.Vault()
		require.NoError(t, err)
		assert.Same(t, first, second)
	})

	t.Run("invalid algorithm fails vault construction", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Algorithm = "rot13"
		container := NewContainer(cfg)
		defer func() { require.NoError(t, container.Shutdown(ctx)) }()

		_, err := container.Vault()
		assert.ErrorContains(t, err, "invalid algorithm")
	})

	t.Run("invalid kdf params fail vault construction", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.KdfTime = 0
		container := NewContainer(cfg)
		defer func() { require.NoError(t, container.Shutdown(ctx)) }()

		_, err := container.Vault()
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKdfParams)
	})

	t.Run("shutdown with nothing initialized", func(t *testing.T) {
		container := NewContainer(testConfig(t))
		assert.NoError(t, container.Shutdown(ctx))
	})
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		name string
		want cryptoDomain.Algorithm
	}{
		{"aes-gcm", cryptoDomain.AESGCM},
		{"chacha20-poly1305", cryptoDomain.ChaCha20},
		{"insecure-xor", cryptoDomain.InsecureXOR},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAlgorithm(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unknown", func(t *testing.T) {
		_, err := ParseAlgorithm("rot13")
		assert.ErrorContains(t, err, "invalid algorithm")
	})
}
