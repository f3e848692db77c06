package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	apperrors "github.com/vitaldiary/entryvault/internal/errors"
	vaultUseCase "github.com/vitaldiary/entryvault/internal/vault/usecase"
)

// RunEncryptEntry encrypts one entry, given as a JSON object, and stores
// the resulting envelope under recordID.
func RunEncryptEntry(
	ctx context.Context,
	vault vaultUseCase.Vault,
	logger *slog.Logger,
	io IOTuple,
	passphrase, recordID, entryJSON string,
) error {
	passphrase, err := resolvePassphrase(io, "Passphrase", passphrase)
	if err != nil {
		return err
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(entryJSON), &entry); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "entry must be a JSON object")
	}

	if err := vault.Initialize(ctx, []byte(passphrase)); err != nil {
		return fmt.Errorf("failed to unlock vault: %w", err)
	}

	envelope, err := vault.EncryptEntry(ctx, recordID, entry)
	if err != nil {
		return fmt.Errorf("failed to encrypt entry: %w", err)
	}

	logger.Info("entry encrypted", slog.String("algorithm", string(envelope.Algorithm)))
	fmt.Fprintf(io.Writer, "Entry %s encrypted with %s.\n", envelope.RecordID, envelope.Algorithm)
	return nil
}
