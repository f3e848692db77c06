package repository

import (
	"context"
	"encoding/json"
	"time"

	cryptoDomain "github.com/vitaldiary/entryvault/internal/crypto/domain"
	"github.com/vitaldiary/entryvault/internal/encoding"
	apperrors "github.com/vitaldiary/entryvault/internal/errors"
	"github.com/vitaldiary/entryvault/internal/storage"
)

// EnvelopeRepository persists encrypted envelopes, one per record id.
type EnvelopeRepository interface {
	// Get returns the envelope for recordID, or errors.ErrNotFound.
	Get(ctx context.Context, recordID string) (*cryptoDomain.EncryptedEnvelope, error)

	// Save stores envelope under its record id, replacing any previous one.
	Save(ctx context.Context, envelope *cryptoDomain.EncryptedEnvelope) error

	// Delete removes the envelope for recordID. Absent ids are not an error.
	Delete(ctx context.Context, recordID string) error

	// List returns all stored record ids in lexicographic order.
	List(ctx context.Context) ([]string, error)
}

// encryptedEnvelopeDTO is the persisted JSON shape of an EncryptedEnvelope.
// Binary fields are codec-encoded text.
type encryptedEnvelopeDTO struct {
	RecordID   string    `json:"recordId"`
	Version    int       `json:"version"`
	Algorithm  string    `json:"algorithm"`
	Nonce      string    `json:"nonce"`
	Ciphertext string    `json:"ciphertext"`
	AuthTag    string    `json:"authTag"`
	CreatedAt  time.Time `json:"createdAt"`
}

// storageEnvelopeRepository implements EnvelopeRepository on a storage.Adapter.
type storageEnvelopeRepository struct {
	adapter storage.Adapter
	codec   encoding.Codec
}

// NewStorageEnvelopeRepository creates an EnvelopeRepository backed by adapter.
func NewStorageEnvelopeRepository(adapter storage.Adapter, codec encoding.Codec) EnvelopeRepository {
	return &storageEnvelopeRepository{adapter: adapter, codec: codec}
}

// Get returns the envelope for recordID.
func (r *storageEnvelopeRepository) Get(ctx context.Context, recordID string) (*cryptoDomain.EncryptedEnvelope, error) {
	data, err := r.adapter.Get(ctx, storage.NamespaceEntries, recordID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, apperrors.Wrap(err, "failed to read envelope")
	}

	var dto encryptedEnvelopeDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		// Undecodable stored bytes are corruption of this one envelope;
		// other envelopes stay readable.
		return nil, apperrors.Wrap(cryptoDomain.ErrIntegrityCheckFailed, err.Error())
	}

	envelope := &cryptoDomain.EncryptedEnvelope{
		RecordID:  dto.RecordID,
		Version:   dto.Version,
		Algorithm: cryptoDomain.Algorithm(dto.Algorithm),
		CreatedAt: dto.CreatedAt,
	}
	for _, field := range []struct {
		text string
		dst  *[]byte
	}{
		{dto.Nonce, &envelope.Nonce},
		{dto.Ciphertext, &envelope.Ciphertext},
		{dto.AuthTag, &envelope.AuthTag},
	} {
		raw, err := r.codec.FromText(field.text)
		if err != nil {
			return nil, apperrors.Wrap(cryptoDomain.ErrIntegrityCheckFailed, err.Error())
		}
		*field.dst = raw
	}
	return envelope, nil
}

// Save stores envelope under its record id.
func (r *storageEnvelopeRepository) Save(ctx context.Context, envelope *cryptoDomain.EncryptedEnvelope) error {
	if envelope.RecordID == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "empty record id")
	}

	dto := encryptedEnvelopeDTO{
		RecordID:   envelope.RecordID,
		Version:    envelope.Version,
		Algorithm:  string(envelope.Algorithm),
		Nonce:      r.codec.ToText(envelope.Nonce),
		Ciphertext: r.codec.ToText(envelope.Ciphertext),
		AuthTag:    r.codec.ToText(envelope.AuthTag),
		CreatedAt:  envelope.CreatedAt,
	}

	data, err := json.Marshal(dto)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode envelope")
	}
	if err := r.adapter.Put(ctx, storage.NamespaceEntries, envelope.RecordID, data); err != nil {
		return apperrors.Wrap(err, "failed to persist envelope")
	}
	return nil
}

// Delete removes the envelope for recordID.
func (r *storageEnvelopeRepository) Delete(ctx context.Context, recordID string) error {
	if err := r.adapter.Delete(ctx, storage.NamespaceEntries, recordID); err != nil {
		return apperrors.Wrap(err, "failed to delete envelope")
	}
	return nil
}

// List returns all stored record ids.
func (r *storageEnvelopeRepository) List(ctx context.Context) ([]string, error) {
	ids, err := r.adapter.List(ctx, storage.NamespaceEntries)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list envelopes")
	}
	return ids, nil
}
