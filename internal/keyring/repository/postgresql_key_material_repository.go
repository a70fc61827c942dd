// Package repository implements persistence for the deployment's key material.
// Exactly one row exists per deployment, guarded by a unique singleton column
// so concurrent initialization cannot create a second hierarchy.
package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/allisson/ticketbox/internal/database"
	apperrors "github.com/allisson/ticketbox/internal/errors"
	keyringDomain "github.com/allisson/ticketbox/internal/keyring/domain"
)

// PostgreSQLKeyMaterialRepository implements KeyMaterial persistence for PostgreSQL.
type PostgreSQLKeyMaterialRepository struct {
	db *sql.DB
}

// NewPostgreSQLKeyMaterialRepository creates a new PostgreSQL KeyMaterial repository instance.
func NewPostgreSQLKeyMaterialRepository(db *sql.DB) *PostgreSQLKeyMaterialRepository {
	return &PostgreSQLKeyMaterialRepository{db: db}
}

// Create inserts the key material row. The singleton column's unique index
// rejects a second row regardless of interleaving.
func (p *PostgreSQLKeyMaterialRepository) Create(
	ctx context.Context,
	material *keyringDomain.KeyMaterial,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO key_material (id, singleton, wrap_algorithm, wrapped_data_key, wrap_nonce,
			  wrap_version, public_key, wrapped_private_key, private_key_nonce, password_hash,
			  created_at, updated_at)
			  VALUES ($1, TRUE, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := querier.ExecContext(
		ctx,
		query,
		material.ID,
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
		if isPostgreSQLUniqueViolation(err) {
			return keyringDomain.ErrAlreadyInitialized
		}
		return apperrors.Wrap(err, "failed to create key material")
	}
	return nil
}

// Get retrieves the deployment's key material row.
func (p *PostgreSQLKeyMaterialRepository) Get(
	ctx context.Context,
) (*keyringDomain.KeyMaterial, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, wrap_algorithm, wrapped_data_key, wrap_nonce, wrap_version, public_key,
			  wrapped_private_key, private_key_nonce, password_hash, created_at, updated_at
			  FROM key_material
			  LIMIT 1`

	var material keyringDomain.KeyMaterial
	err := querier.QueryRowContext(ctx, query).Scan(
		&material.ID,
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

	return &material, nil
}

// ReplaceWrapping swaps the data key wrapping, password hash and wrap version
// in a single statement. The wrap_version guard makes concurrent rotations
// first-writer-wins instead of silently overwriting each other.
func (p *PostgreSQLKeyMaterialRepository) ReplaceWrapping(
	ctx context.Context,
	material *keyringDomain.KeyMaterial,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE key_material
			  SET wrapped_data_key = $1, wrap_nonce = $2, wrap_version = $3, password_hash = $4, updated_at = $5
			  WHERE id = $6 AND wrap_version = $7`

	affected, err := database.ExecAffected(
		ctx,
		querier,
		query,
		material.WrappedDataKey,
		material.WrapNonce,
		material.WrapVersion,
		material.PasswordHash,
		material.UpdatedAt,
		material.ID,
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

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}
