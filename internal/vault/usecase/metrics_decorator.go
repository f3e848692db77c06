package usecase

import (
	"context"
	"time"

	cryptoDomain "github.com/vitaldiary/entryvault/internal/crypto/domain"
	"github.com/vitaldiary/entryvault/internal/metrics"
)

// vaultWithMetrics decorates Vault with metrics instrumentation.
type vaultWithMetrics struct {
	next    Vault
	metrics metrics.BusinessMetrics
}

// NewVaultWithMetrics wraps a Vault with metrics recording.
func NewVaultWithMetrics(vault Vault, m metrics.BusinessMetrics) Vault {
	return &vaultWithMetrics{
		next:    vault,
		metrics: m,
	}
}

// record emits the count and duration for one vault operation.
func (v *vaultWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	v.metrics.RecordOperation(ctx, "vault", operation, status)
	v.metrics.RecordDuration(ctx, "vault", operation, time.Since(start), status)
}

// Initialize records metrics for vault unlock/initialization.
func (v *vaultWithMetrics) Initialize(ctx context.Context, passphrase []byte) error {
	start := time.Now()
	err := v.next.Initialize(ctx, passphrase)
	v.record(ctx, "initialize", start, err)
	return err
}

// EncryptEntry records metrics for entry encryption.
func (v *vaultWithMetrics) EncryptEntry(
	ctx context.Context,
	recordID string,
	entry map[string]any,
) (*cryptoDomain.EncryptedEnvelope, error) {
	start := time.Now()
	envelope, err := v.next.EncryptEntry(ctx, recordID, entry)
	v.record(ctx, "encrypt_entry", start, err)
	return envelope, err
}

// DecryptEntry records metrics for entry decryption.
func (v *vaultWithMetrics) DecryptEntry(
	ctx context.Context,
	envelope *cryptoDomain.EncryptedEnvelope,
) (map[string]any, error) {
	start := time.Now()
	entry, err := v.next.DecryptEntry(ctx, envelope)
	v.record(ctx, "decrypt_entry", start, err)
	return entry, err
}

// GetEntry records metrics for stored entry retrieval.
func (v *vaultWithMetrics) GetEntry(ctx context.Context, recordID string) (map[string]any, error) {
	start := time.Now()
	entry, err := v.next.GetEntry(ctx, recordID)
	v.record(ctx, "get_entry", start, err)
	return entry, err
}

// DeleteEntry records metrics for entry deletion.
func (v *vaultWithMetrics) DeleteEntry(ctx context.Context, recordID string) error {
	start := time.Now()
	err := v.next.DeleteEntry(ctx, recordID)
	v.record(ctx, "delete_entry", start, err)
	return err
}

// RotatePassphrase records metrics for passphrase rotation.
func (v *vaultWithMetrics) RotatePassphrase(ctx context.Context, oldPassphrase, newPassphrase []byte) error {
	start := time.Now()
	err := v.next.RotatePassphrase(ctx, oldPassphrase, newPassphrase)
	v.record(ctx, "rotate_passphrase", start, err)
	return err
}

// Reset records metrics for installation reset.
func (v *vaultWithMetrics) Reset(ctx context.Context) error {
	start := time.Now()
	err := v.next.Reset(ctx)
	v.record(ctx, "reset", start, err)
	return err
}

// Close passes through without instrumentation.
func (v *vaultWithMetrics) Close() {
	v.next.Close()
}
