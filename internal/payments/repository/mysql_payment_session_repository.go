package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/ticketbox/internal/database"
	apperrors "github.com/allisson/ticketbox/internal/errors"
	paymentsDomain "github.com/allisson/ticketbox/internal/payments/domain"
)

// MySQLPaymentSessionRepository implements PaymentSession persistence for MySQL.
type MySQLPaymentSessionRepository struct {
	db *sql.DB
}

// NewMySQLPaymentSessionRepository creates a new MySQL PaymentSession repository instance.
func NewMySQLPaymentSessionRepository(db *sql.DB) *MySQLPaymentSessionRepository {
	return &MySQLPaymentSessionRepository{db: db}
}

// Claim inserts the reserved row for the session. Returns
// ErrSessionAlreadyClaimed when a row for the session id already exists.
func (m *MySQLPaymentSessionRepository) Claim(
	ctx context.Context,
	session *paymentsDomain.PaymentSession,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO processed_payment_sessions (id, session_id, event_id, status, attendee_ids, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		session.ID.String(),
		session.SessionID,
		session.EventID.String(),
		string(session.Status),
		paymentsDomain.EncodeAttendeeIDs(session.AttendeeIDs),
		session.CreatedAt,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return paymentsDomain.ErrSessionAlreadyClaimed
		}
		return apperrors.Wrap(err, "failed to claim payment session")
	}
	return nil
}

// GetBySessionID retrieves the processed-session row for a provider session id.
func (m *MySQLPaymentSessionRepository) GetBySessionID(
	ctx context.Context,
	sessionID string,
) (*paymentsDomain.PaymentSession, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, session_id, event_id, status, attendee_ids, created_at, finalized_at
			  FROM processed_payment_sessions
			  WHERE session_id = ?`

	var session paymentsDomain.PaymentSession
	var id, eventID, encodedIDs string
	err := querier.QueryRowContext(ctx, query, sessionID).Scan(
		&id,
		&session.SessionID,
		&eventID,
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

	if session.ID, err = uuid.Parse(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse payment session id")
	}
	if session.EventID, err = uuid.Parse(eventID); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse payment session event id")
	}
	if session.AttendeeIDs, err = paymentsDomain.DecodeAttendeeIDs(encodedIDs); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode attendee ids")
	}
	return &session, nil
}

// Finalize promotes a reserved claim to finalized and records the admitted
// attendee rows.
func (m *MySQLPaymentSessionRepository) Finalize(
	ctx context.Context,
	sessionID string,
	attendeeIDs string,
	finalizedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE processed_payment_sessions
			  SET status = ?, attendee_ids = ?, finalized_at = ?
			  WHERE session_id = ? AND status = ?`

	affected, err := database.ExecAffected(
		ctx,
		querier,
		query,
		string(paymentsDomain.StatusFinalized),
		attendeeIDs,
		finalizedAt,
		sessionID,
		string(paymentsDomain.StatusReserved),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to finalize payment session")
	}
	if affected == 0 {
		return paymentsDomain.ErrSessionNotFound
	}
	return nil
}

// Release drops a reserved claim so the session can be retried.
func (m *MySQLPaymentSessionRepository) Release(ctx context.Context, sessionID string) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM processed_payment_sessions
			  WHERE session_id = ? AND status = ?`

	_, err := querier.ExecContext(ctx, query, sessionID, string(paymentsDomain.StatusReserved))
	if err != nil {
		return apperrors.Wrap(err, "failed to release payment session")
	}
	return nil
}

// DeleteStaleReserved removes reserved claims older than the cutoff.
func (m *MySQLPaymentSessionRepository) DeleteStaleReserved(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM processed_payment_sessions
			  WHERE status = ? AND created_at < ?`

	affected, err := database.ExecAffected(ctx, querier, query, string(paymentsDomain.StatusReserved), cutoff)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete stale payment sessions")
	}
	return affected, nil
}

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation.
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}
