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

// MySQLAttendeeRepository implements Attendee persistence for MySQL databases.
type MySQLAttendeeRepository struct {
	db *sql.DB
}

// NewMySQLAttendeeRepository creates a new MySQL Attendee repository instance.
func NewMySQLAttendeeRepository(db *sql.DB) *MySQLAttendeeRepository {
	return &MySQLAttendeeRepository{db: db}
}

// ReserveInsert inserts the attendee if the subtotal for the capacity scope
// plus the requested quantity stays within the event's limit. Must run inside
// a transaction: the event-row lock serializes concurrent admissions per
// event (and keeps InnoDB from deadlocking two admissions on next-key locks
// over the attendees index). Zero affected rows means the guard rejected the
// write.
func (m *MySQLAttendeeRepository) ReserveInsert(
	ctx context.Context,
	attendee *attendeesDomain.Attendee,
	scope eventsDomain.CapacityScope,
) error {
	querier := database.GetTx(ctx, m.db)

	lockQuery := `SELECT id FROM events WHERE id = ? FOR UPDATE`

	var lockedID string
	if err := querier.QueryRowContext(ctx, lockQuery, attendee.EventID.String()).Scan(&lockedID); err != nil {
		if err == sql.ErrNoRows {
			return eventsDomain.ErrEventNotFound
		}
		return apperrors.Wrap(err, "failed to lock event for admission")
	}

	query := `INSERT INTO attendees (` + attendeeColumns + `)
			  SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
			  FROM events e
			  WHERE e.id = ?
			    AND e.active
			    AND (
			      SELECT COALESCE(SUM(a.quantity), 0)
			      FROM attendees a
			      WHERE a.event_id = ?
			        AND (? = 'event' OR a.event_date = ?)
			    ) + ? <= e.max_attendees`

	affected, err := database.ExecAffected(
		ctx,
		querier,
		query,
		attendee.ID.String(),
		attendee.EventID.String(),
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
		attendee.EventID.String(),
		attendee.EventID.String(),
		string(scope),
		attendee.EventDate,
		attendee.Quantity,
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
func (m *MySQLAttendeeRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*attendeesDomain.Attendee, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + attendeeColumns + `
			  FROM attendees
			  WHERE id = ?`

	return scanMySQLAttendee(querier.QueryRowContext(ctx, query, id.String()))
}

// ListByEvent returns a page of attendees for an event, oldest first.
func (m *MySQLAttendeeRepository) ListByEvent(
	ctx context.Context,
	eventID uuid.UUID,
	limit, offset int,
) ([]*attendeesDomain.Attendee, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + attendeeColumns + `
			  FROM attendees
			  WHERE event_id = ?
			  ORDER BY created_at ASC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, eventID.String(), limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list attendees")
	}
	defer rows.Close()

	return collectMySQLAttendees(rows)
}

// FindByTicketTokenIndex looks an attendee up by the blind index of its
// ticket token.
func (m *MySQLAttendeeRepository) FindByTicketTokenIndex(
	ctx context.Context,
	index string,
) (*attendeesDomain.Attendee, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + attendeeColumns + `
			  FROM attendees
			  WHERE ticket_token_index = ?
			  LIMIT 1`

	return scanMySQLAttendee(querier.QueryRowContext(ctx, query, index))
}

// FindByPaymentRefIndex returns all attendees sharing a payment reference
// blind index.
func (m *MySQLAttendeeRepository) FindByPaymentRefIndex(
	ctx context.Context,
	index string,
) ([]*attendeesDomain.Attendee, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + attendeeColumns + `
			  FROM attendees
			  WHERE payment_ref_index = ?
			  ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, index)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to find attendees by payment reference")
	}
	defer rows.Close()

	return collectMySQLAttendees(rows)
}

// UpdateFlags replaces the encrypted checked-in and refunded flags.
func (m *MySQLAttendeeRepository) UpdateFlags(
	ctx context.Context,
	id uuid.UUID,
	encryptedCheckedIn, encryptedRefunded []byte,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE attendees
			  SET encrypted_checked_in = ?, encrypted_refunded = ?
			  WHERE id = ?`

	affected, err := database.ExecAffected(ctx, querier, query, encryptedCheckedIn, encryptedRefunded, id.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to update attendee flags")
	}
	if affected == 0 {
		return attendeesDomain.ErrAttendeeNotFound
	}

	return nil
}

// UpdateRefunded replaces only the encrypted refunded flag.
func (m *MySQLAttendeeRepository) UpdateRefunded(
	ctx context.Context,
	id uuid.UUID,
	encryptedRefunded []byte,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE attendees
			  SET encrypted_refunded = ?
			  WHERE id = ?`

	affected, err := database.ExecAffected(ctx, querier, query, encryptedRefunded, id.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to update attendee refunded flag")
	}
	if affected == 0 {
		return attendeesDomain.ErrAttendeeNotFound
	}

	return nil
}

// scanMySQLAttendee scans a single attendee row, parsing uuid columns stored
// as CHAR(36).
func scanMySQLAttendee(row *sql.Row) (*attendeesDomain.Attendee, error) {
	var attendee attendeesDomain.Attendee
	var id, eventID string
	err := row.Scan(
		&id,
		&eventID,
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
	if attendee.ID, err = uuid.Parse(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse attendee id")
	}
	if attendee.EventID, err = uuid.Parse(eventID); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse attendee event id")
	}
	return &attendee, nil
}

// collectMySQLAttendees drains a result set into attendee values.
func collectMySQLAttendees(rows *sql.Rows) ([]*attendeesDomain.Attendee, error) {
	var attendees []*attendeesDomain.Attendee
	for rows.Next() {
		var attendee attendeesDomain.Attendee
		var id, eventID string
		if err := rows.Scan(
			&id,
			&eventID,
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
		var err error
		if attendee.ID, err = uuid.Parse(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to parse attendee id")
		}
		if attendee.EventID, err = uuid.Parse(eventID); err != nil {
			return nil, apperrors.Wrap(err, "failed to parse attendee event id")
		}
		attendees = append(attendees, &attendee)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate attendees")
	}
	return attendees, nil
}
