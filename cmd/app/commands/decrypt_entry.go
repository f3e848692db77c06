package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	vaultUseCase "github.com/vitaldiary/entryvault/internal/vault/usecase"
)

// RunDecryptEntry loads, decrypts and prints the entry stored under
// recordID as indented JSON.
func RunDecryptEntry(
	ctx context.Context,
	vault vaultUseCase.Vault,
	logger *slog.Logger,
	io IOTuple,
	passphrase, recordID string,
) error {
	passphrase, err := resolvePassphrase(io, "Passphrase", passphrase)
	if err != nil {
		return err
	}

	if err := vault.Initialize(ctx, []byte(passphrase)); err != nil {
		return fmt.Errorf("failed to unlock vault: %w", err)
	}

	entry, err := vault.GetEntry(ctx, recordID)
	if err != nil {
		return fmt.Errorf("failed to decrypt entry: %w", err)
	}

	output, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render entry: %w", err)
	}
	fmt.Fprintln(io.Writer, string(output))
	return nil
}
