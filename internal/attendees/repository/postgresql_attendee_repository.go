// Package repository implements attendee persistence for PostgreSQL and MySQL.
//
// The admission write runs in two steps inside one transaction: a SELECT ...
// FOR UPDATE on the event row, then a conditional INSERT ... SELECT whose
// guard subquery aggregates the quantities already written for the event (or
// the event date, for per-date scoped events). The row lock serializes
// concurrent admissions for the same event, so the subtotal each guard reads
// is the one its insert extends — two statements that both see room cannot
// interleave. Without the lock, READ COMMITTED lets two concurrent inserts
// each aggregate a snapshot that omits the other and both pass the guard.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	attendeesDomain "github.com/allisson/ticketbox/internal/attendees/domain"
	"github.com/allisson/ticketbox/internal/database"
	apperrors "github.com/allisson/ticketbox/internal/errors"
	eventsDomain "github.com/allisson/ticketbox/internal/events/domain"
)

const attendeeColumns = `id, event_id, event_date, quantity, encrypted_name, encrypted_email,
			  encrypted_phone, encrypted_address, encrypted_payment_ref, encrypted_checked_in,
			  encrypted_refunded, ticket_token_index, payment_ref_index, created_at`

// PostgreSQLAttendeeRepository implements Attendee persistence for PostgreSQL databases.
type PostgreSQLAttendeeRepository struct {
	db *sql.DB
}

// NewPostgreSQLAttendeeRepository creates a new PostgreSQL Attendee repository instance.
func NewPostgreSQLAttendeeRepository(db *sql.DB) *PostgreSQLAttendeeRepository {
	return &PostgreSQLAttendeeRepository{db: db}
}

// ReserveInsert inserts the attendee if, and only if, the subtotal for the
// capacity scope plus the requested quantity stays within the event's limit.
// It must run inside a transaction (the admission use case opens one): the
// event-row lock taken first serializes concurrent admissions, and the guard
// subquery then reads a subtotal no concurrent writer can invalidate. Zero
// affected rows means the guard rejected the write: the event is full (or was
// deactivated concurrently) and no partial state exists.
func (p *PostgreSQLAttendeeRepository) ReserveInsert(
	ctx context.Context,
	attendee *attendeesDomain.Attendee,
	scope eventsDomain.CapacityScope,
) error {
	querier := database.GetTx(ctx, p.db)

	lockQuery := `SELECT id FROM events WHERE id = $1 FOR UPDATE`

	var lockedID uuid.UUID
	if err := querier.QueryRowContext(ctx, lockQuery, attendee.EventID).Scan(&lockedID); err != nil {
		if err == sql.ErrNoRows {
			return eventsDomain.ErrEventNotFound
		}
		return apperrors.Wrap(err, "failed to lock event for admission")
	}

	query := `INSERT INTO attendees (` + attendeeColumns + `)
			  SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
			  FROM events e
			  WHERE e.id = $2
			    AND e.active
			    AND (
			      SELECT COALESCE(SUM(a.quantity), 0)
			      FROM attendees a
			      WHERE a.event_id = $2
			        AND ($15::text = 'event' OR a.event_date = $3)
			    ) + $4 <= e.max_attendees`

	affected, err := database.ExecAffected(
		ctx,
		querier,
		query,
		attendee.ID,
		attendee.EventID,
		attendee.EventDate,
		attendee.Quantity,
		attendee.EncryptedName,
		attendee.EncryptedEmail,
		attendee.EncryptedPhone,
		attendee.EncryptedAddress,
		attendee.EncryptedPaymentRef,
		attendee.EncryptedCheckedIn,
		attendee.EncryptedRefunded,
		attendee.TicketTokenIndex,
		attendee.PaymentRefIndex,
		attendee.CreatedAt,
		string(scope),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to reserve attendee")
	}
	if affected == 0 {
		return attendeesDomain.ErrCapacityExceeded
	}

	return nil
}

// GetByID retrieves an attendee by its id.
func (p *PostgreSQLAttendeeRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*attendeesDomain.Attendee, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + attendeeColumns + `
			  FROM attendees
			  WHERE id = $1`

	attendee, err := scanPostgreSQLAttendee(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return attendee, nil
}

// ListByEvent returns a page of attendees for an event, oldest first.
func (p *PostgreSQLAttendeeRepository) ListByEvent(
	ctx context.Context,
	eventID uuid.UUID,
	limit, offset int,
) ([]*attendeesDomain.Attendee, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + attendeeColumns + `
			  FROM attendees
			  WHERE event_id = $1
			  ORDER BY created_at ASC
			  LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, eventID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list attendees")
	}
	defer rows.Close()

	return collectAttendees(rows)
}

// FindByTicketTokenIndex looks an attendee up by the blind index of its
// ticket token. No decryption happens here.
func (p *PostgreSQLAttendeeRepository) FindByTicketTokenIndex(
	ctx context.Context,
	index string,
) (*attendeesDomain.Attendee, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + attendeeColumns + `
			  FROM attendees
			  WHERE ticket_token_index = $1
			  LIMIT 1`

	attendee, err := scanPostgreSQLAttendee(querier.QueryRowContext(ctx, query, index))
	if err != nil {
		return nil, err
	}
	return attendee, nil
}

// FindByPaymentRefIndex returns all attendees sharing a payment reference
// blind index (a multi-item purchase creates several rows).
func (p *PostgreSQLAttendeeRepository) FindByPaymentRefIndex(
	ctx context.Context,
	index string,
) ([]*attendeesDomain.Attendee, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + attendeeColumns + `
			  FROM attendees
			  WHERE payment_ref_index = $1
			  ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, index)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to find attendees by payment reference")
	}
	defer rows.Close()

	return collectAttendees(rows)
}

// UpdateFlags replaces the encrypted checked-in and refunded flags.
func (p *PostgreSQLAttendeeRepository) UpdateFlags(
	ctx context.Context,
	id uuid.UUID,
	encryptedCheckedIn, encryptedRefunded []byte,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE attendees
			  SET encrypted_checked_in = $1, encrypted_refunded = $2
			  WHERE id = $3`

	affected, err := database.ExecAffected(ctx, querier, query, encryptedCheckedIn, encryptedRefunded, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update attendee flags")
	}
	if affected == 0 {
		return attendeesDomain.ErrAttendeeNotFound
	}

	return nil
}

// UpdateRefunded replaces only the encrypted refunded flag. Used by the
// payment webhook path, which cannot read the checked-in plaintext.
func (p *PostgreSQLAttendeeRepository) UpdateRefunded(
	ctx context.Context,
	id uuid.UUID,
	encryptedRefunded []byte,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE attendees
			  SET encrypted_refunded = $1
			  WHERE id = $2`

	affected, err := database.ExecAffected(ctx, querier, query, encryptedRefunded, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update attendee refunded flag")
	}
	if affected == 0 {
		return attendeesDomain.ErrAttendeeNotFound
	}

	return nil
}

// scanPostgreSQLAttendee scans a single attendee row.
func scanPostgreSQLAttendee(row *sql.Row) (*attendeesDomain.Attendee, error) {
	var attendee attendeesDomain.Attendee
	err := row.Scan(
		&attendee.ID,
		&attendee.EventID,
		&attendee.EventDate,
		&attendee.Quantity,
		&attendee.EncryptedName,
		&attendee.EncryptedEmail,
		&attendee.EncryptedPhone,
		&attendee.EncryptedAddress,
		&attendee.EncryptedPaymentRef,
		&attendee.EncryptedCheckedIn,
		&attendee.EncryptedRefunded,
		&attendee.TicketTokenIndex,
		&attendee.PaymentRefIndex,
		&attendee.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, attendeesDomain.ErrAttendeeNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get attendee")
	}
	return &attendee, nil
}

// collectAttendees drains a result set into attendee values.
func collectAttendees(rows *sql.Rows) ([]*attendeesDomain.Attendee, error) {
	var attendees []*attendeesDomain.Attendee
	for rows.Next() {
		var attendee attendeesDomain.Attendee
		if err := rows.Scan(
			&attendee.ID,
			&attendee.EventID,
			&attendee.EventDate,
			&attendee.Quantity,
			&attendee.EncryptedName,
			&attendee.EncryptedEmail,
			&attendee.EncryptedPhone,
			&attendee.EncryptedAddress,
			&attendee.EncryptedPaymentRef,
			&attendee.EncryptedCheckedIn,
			&attendee.EncryptedRefunded,
			&attendee.TicketTokenIndex,
			&attendee.PaymentRefIndex,
			&attendee.CreatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan attendee")
		}
		attendees = append(attendees, &attendee)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate attendees")
	}
	return attendees, nil
}
