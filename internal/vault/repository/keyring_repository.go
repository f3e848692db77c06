// Package repository maps the vault's crypto domain models to the text-safe
// persisted form and stores them through the storage adapter. Binary fields
// always pass through the encoding codec so any adapter can hold them.
package repository

import (
	"context"
	"encoding/json"
	"time"

	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/vitaldiary/entryvault/internal/crypto/domain"
	"github.com/vitaldiary/entryvault/internal/encoding"
	apperrors "github.com/vitaldiary/entryvault/internal/errors"
	"github.com/vitaldiary/entryvault/internal/storage"
	appvalidation "github.com/vitaldiary/entryvault/internal/validation"
)

// keyringRecordID is the single slot the active wrapped key record lives
// in. Rotation replaces this slot in one Put; there is never more than one
// record.
const keyringRecordID = "active"

// KeyringRepository persists the wrapped key record.
type KeyringRepository interface {
	// Get returns the active wrapped key record, or errors.ErrNotFound on a
	// first run.
	Get(ctx context.Context) (*cryptoDomain.WrappedKeyRecord, error)

	// Save stores record as the active record, replacing any previous one.
	Save(ctx context.Context, record *cryptoDomain.WrappedKeyRecord) error

	// Delete removes the active record.
	Delete(ctx context.Context) error
}

// wrappedKeyRecordDTO is the persisted JSON shape of a WrappedKeyRecord.
// Binary fields are codec-encoded text.
type wrappedKeyRecordDTO struct {
	Version    int                    `json:"version"`
	Algorithm  string                 `json:"algorithm"`
	Salt       string                 `json:"salt"`
	KdfParams  cryptoDomain.KdfParams `json:"kdfParams"`
	WrappedDek string                 `json:"wrappedDek"`
	Nonce      string                 `json:"nonce"`
	AuthTag    string                 `json:"authTag"`
	CreatedAt  time.Time              `json:"createdAt"`
}

// validate rejects records whose text fields are not codec output before
// any decode is attempted.
func (d *wrappedKeyRecordDTO) validate() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.Salt, validation.Required, appvalidation.Base64),
		validation.Field(&d.WrappedDek, validation.Required, appvalidation.Base64),
		validation.Field(&d.Nonce, validation.Required, appvalidation.Base64),
		validation.Field(&d.AuthTag, validation.Required, appvalidation.Base64),
	)
}

// storageKeyringRepository implements KeyringRepository on a storage.Adapter.
type storageKeyringRepository struct {
	adapter storage.Adapter
	codec   encoding.Codec
}

// NewStorageKeyringRepository creates a KeyringRepository backed by adapter.
func NewStorageKeyringRepository(adapter storage.Adapter, codec encoding.Codec) KeyringRepository {
	return &storageKeyringRepository{adapter: adapter, codec: codec}
}

// Get returns the active wrapped key record.
func (r *storageKeyringRepository) Get(ctx context.Context) (*cryptoDomain.WrappedKeyRecord, error) {
	data, err := r.adapter.Get(ctx, storage.NamespaceKeyring, keyringRecordID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, apperrors.Wrap(err, "failed to read wrapped key record")
	}

	var dto wrappedKeyRecordDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, apperrors.Wrap(cryptoDomain.ErrInvalidWrappedRecord, err.Error())
	}
	if err := dto.validate(); err != nil {
		return nil, apperrors.Wrap(cryptoDomain.ErrInvalidWrappedRecord, err.Error())
	}

	record := &cryptoDomain.WrappedKeyRecord{
		Version:   dto.Version,
		Algorithm: cryptoDomain.Algorithm(dto.Algorithm),
		KdfParams: dto.KdfParams,
		CreatedAt: dto.CreatedAt,
	}
	for _, field := range []struct {
		text string
		dst  *[]byte
	}{
		{dto.Salt, &record.Salt},
		{dto.WrappedDek, &record.WrappedDek},
		{dto.Nonce, &record.Nonce},
		{dto.AuthTag, &record.AuthTag},
	} {
		raw, err := r.codec.FromText(field.text)
		if err != nil {
			return nil, apperrors.Wrap(cryptoDomain.ErrInvalidWrappedRecord, err.Error())
		}
		*field.dst = raw
	}
	return record, nil
}

// Save stores record as the active record.
func (r *storageKeyringRepository) Save(ctx context.Context, record *cryptoDomain.WrappedKeyRecord) error {
	dto := wrappedKeyRecordDTO{
		Version:    record.Version,
		Algorithm:  string(record.Algorithm),
		Salt:       r.codec.ToText(record.Salt),
		KdfParams:  record.KdfParams,
		WrappedDek: r.codec.ToText(record.WrappedDek),
		Nonce:      r.codec.ToText(record.Nonce),
		AuthTag:    r.codec.ToText(record.AuthTag),
		CreatedAt:  record.CreatedAt,
	}

	data, err := json.Marshal(dto)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode wrapped key record")
	}
	if err := r.adapter.Put(ctx, storage.NamespaceKeyring, keyringRecordID, data); err != nil {
		return apperrors.Wrap(err, "failed to persist wrapped key record")
	}
	return nil
}

// Delete removes the active record.
func (r *storageKeyringRepository) Delete(ctx context.Context) error {
	if err := r.adapter.Delete(ctx, storage.NamespaceKeyring, keyringRecordID); err != nil {
		return apperrors.Wrap(err, "failed to delete wrapped key record")
	}
	return nil
}
