// Package repository implements processed-payment-session persistence for
// PostgreSQL and MySQL. The unique constraint on session_id is what makes the
// claim an honest mutex: two concurrent completions race on the insert and
// exactly one wins.
package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/allisson/ticketbox/internal/database"
	apperrors "github.com/allisson/ticketbox/internal/errors"
	paymentsDomain "github.com/allisson/ticketbox/internal/payments/domain"
)

// PostgreSQLPaymentSessionRepository implements PaymentSession persistence for PostgreSQL.
type PostgreSQLPaymentSessionRepository struct {
	db *sql.DB
}

// NewPostgreSQLPaymentSessionRepository creates a new PostgreSQL PaymentSession repository instance.
func NewPostgreSQLPaymentSessionRepository(db *sql.DB) *PostgreSQLPaymentSessionRepository {
	return &PostgreSQLPaymentSessionRepository{db: db}
}

// Claim inserts the reserved row for the session. Returns
// ErrSessionAlreadyClaimed when a row for the session id already exists.
func (p *PostgreSQLPaymentSessionRepository) Claim(
	ctx context.Context,
	session *paymentsDomain.PaymentSession,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO processed_payment_sessions (id, session_id, event_id, status, attendee_ids, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		session.ID,
		session.SessionID,
		session.EventID,
		session.Status,
		paymentsDomain.EncodeAttendeeIDs(session.AttendeeIDs),
		session.CreatedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return paymentsDomain.ErrSessionAlreadyClaimed
		}
		return apperrors.Wrap(err, "failed to claim payment session")
	}
	return nil
}

// GetBySessionID retrieves the processed-session row for a provider session id.
func (p *PostgreSQLPaymentSessionRepository) GetBySessionID(
	ctx context.Context,
	sessionID string,
) (*paymentsDomain.PaymentSession, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, session_id, event_id, status, attendee_ids, created_at, finalized_at
			  FROM processed_payment_sessions
			  WHERE session_id = $1`

	var session paymentsDomain.PaymentSession
	var encodedIDs string
	err := querier.QueryRowContext(ctx, query, sessionID).Scan(
		&session.ID,
		&session.SessionID,
		&session.EventID,
		&session.Status,
		&encodedIDs,
		&session.CreatedAt,
		&session.FinalizedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, paymentsDomain.ErrSessionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get payment session")
	}

	if session.AttendeeIDs, err = paymentsDomain.DecodeAttendeeIDs(encodedIDs); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode attendee ids")
	}
	return &session, nil
}

// Finalize promotes a reserved claim to finalized and records the admitted
// attendee rows. Zero affected rows means the claim was released or already
// finalized concurrently.
func (p *PostgreSQLPaymentSessionRepository) Finalize(
	ctx context.Context,
	sessionID string,
	attendeeIDs string,
	finalizedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE processed_payment_sessions
			  SET status = $1, attendee_ids = $2, finalized_at = $3
			  WHERE session_id = $4 AND status = $5`

	affected, err := database.ExecAffected(
		ctx,
		querier,
		query,
		paymentsDomain.StatusFinalized,
		attendeeIDs,
		finalizedAt,
		sessionID,
		paymentsDomain.StatusReserved,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to finalize payment session")
	}
	if affected == 0 {
		return paymentsDomain.ErrSessionNotFound
	}
	return nil
}

// Release drops a reserved claim so the session can be retried. Finalized
// rows are never released.
func (p *PostgreSQLPaymentSessionRepository) Release(ctx context.Context, sessionID string) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM processed_payment_sessions
			  WHERE session_id = $1 AND status = $2`

	_, err := querier.ExecContext(ctx, query, sessionID, paymentsDomain.StatusReserved)
	if err != nil {
		return apperrors.Wrap(err, "failed to release payment session")
	}
	return nil
}

// DeleteStaleReserved removes reserved claims older than the cutoff, left
// behind by completion attempts that crashed mid-flight.
func (p *PostgreSQLPaymentSessionRepository) DeleteStaleReserved(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM processed_payment_sessions
			  WHERE status = $1 AND created_at < $2`

	affected, err := database.ExecAffected(ctx, querier, query, paymentsDomain.StatusReserved, cutoff)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete stale payment sessions")
	}
	return affected, nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}
