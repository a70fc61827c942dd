package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/allisson/ticketbox/internal/database"
	apperrors "github.com/allisson/ticketbox/internal/errors"
	keyringDomain "github.com/allisson/ticketbox/internal/keyring/domain"
)

// MySQLKeyMaterialRepository implements KeyMaterial persistence for MySQL.
type MySQLKeyMaterialRepository struct {
	db *sql.DB
}

// NewMySQLKeyMaterialRepository creates a new MySQL KeyMaterial repository instance.
func NewMySQLKeyMaterialRepository(db *sql.DB) *MySQLKeyMaterialRepository {
	return &MySQLKeyMaterialRepository{db: db}
}

// Create inserts the key material row, rejecting a second row via the
// singleton column's unique index.
func (m *MySQLKeyMaterialRepository) Create(
	ctx context.Context,
	material *keyringDomain.KeyMaterial,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO key_material (id, singleton, wrap_algorithm, wrapped_data_key, wrap_nonce,
			  wrap_version, public_key, wrapped_private_key, private_key_nonce, password_hash,
			  created_at, updated_at)
			  VALUES (?, TRUE, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		material.ID.String(),
		material.WrapAlgorithm,
		material.WrappedDataKey,
		material.WrapNonce,
		material.WrapVersion,
		material.PublicKey,
		material.WrappedPrivateKey,
		material.PrivateKeyNonce,
		material.PasswordHash,
		material.CreatedAt,
		material.UpdatedAt,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return keyringDomain.ErrAlreadyInitialized
		}
		return apperrors.Wrap(err, "failed to create key material")
	}
	return nil
}

// Get retrieves the deployment's key material row.
func (m *MySQLKeyMaterialRepository) Get(
	ctx context.Context,
) (*keyringDomain.KeyMaterial, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, wrap_algorithm, wrapped_data_key, wrap_nonce, wrap_version, public_key,
			  wrapped_private_key, private_key_nonce, password_hash, created_at, updated_at
			  FROM key_material
			  LIMIT 1`

	var material keyringDomain.KeyMaterial
	var id string
	err := querier.QueryRowContext(ctx, query).Scan(
		&id,
		&material.WrapAlgorithm,
		&material.WrappedDataKey,
		&material.WrapNonce,
		&material.WrapVersion,
		&material.PublicKey,
		&material.WrappedPrivateKey,
		&material.PrivateKeyNonce,
		&material.PasswordHash,
		&material.CreatedAt,
		&material.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, keyringDomain.ErrKeyMaterialNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get key material")
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse key material id")
	}
	material.ID = parsed

	return &material, nil
}

// ReplaceWrapping swaps the data key wrapping and password hash guarded by the
// previous wrap version.
func (m *MySQLKeyMaterialRepository) ReplaceWrapping(
	ctx context.Context,
	material *keyringDomain.KeyMaterial,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE key_material
			  SET wrapped_data_key = ?, wrap_nonce = ?, wrap_version = ?, password_hash = ?, updated_at = ?
			  WHERE id = ? AND wrap_version = ?`

	affected, err := database.ExecAffected(
		ctx,
		querier,
		query,
		material.WrappedDataKey,
		material.WrapNonce,
		material.WrapVersion,
		material.PasswordHash,
		material.UpdatedAt,
		material.ID.String(),
		material.WrapVersion-1,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to replace key wrapping")
	}
	if affected == 0 {
		return apperrors.Wrap(apperrors.ErrConflict, "key wrapping changed concurrently")
	}

	return nil
}

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation.
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}
