package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/vitaldiary/entryvault/internal/errors"
)

func TestRunInit(t *testing.T) {
	ctx := context.Background()

	t.Run("first run creates the vault", func(t *testing.T) {
		env := newTestEnv(t)
		io, out := testIO("")

		err := RunInit(ctx, env.vault, env.keyring, env.logger, io, "correct-horse")
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Vault created")

		_, err = env.keyring.Get(ctx)
		require.NoError(t, err)
	})

	t.Run("weak passphrase rejected on first run", func(t *testing.T) {
		env := newTestEnv(t)
		io, _ := testIO("")

		err := RunInit(ctx, env.vault, env.keyring, env.logger, io, "short")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("unlocking an existing vault skips the strength policy", func(t *testing.T) {
		env := newTestEnv(t)
		// A record wrapped by a passphrase below today's policy must still
		// unlock.
		require.NoError(t, env.vault.Initialize(ctx, []byte("weak")))
		env.vault.Close()

		io, out := testIO("")
		err := RunInit(ctx, env.vault, env.keyring, env.logger, io, "weak")
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Vault unlocked")
	})

	t.Run("prompts when no passphrase flag is given", func(t *testing.T) {
		env := newTestEnv(t)
		io, out := testIO("correct-horse\n")

		err := RunInit(ctx, env.vault, env.keyring, env.logger, io, "")
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Passphrase: ")
	})

	t.Run("wrong passphrase fails", func(t *testing.T) {
		env := newTestEnv(t)
		io, _ := testIO("")
		require.NoError(t, RunInit(ctx, env.vault, env.keyring, env.logger, io, "correct-horse"))
		env.vault.Close()

		io, _ = testIO("")
		err := RunInit(ctx, env.vault, env.keyring, env.logger, io, "wrong-horse")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to initialize vault")
	})
}
