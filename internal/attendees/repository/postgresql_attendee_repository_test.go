package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	attendeesDomain "github.com/allisson/ticketbox/internal/attendees/domain"
	eventsDomain "github.com/allisson/ticketbox/internal/events/domain"
)

var attendeeColumnList = []string{
	"id", "event_id", "event_date", "quantity", "encrypted_name", "encrypted_email",
	"encrypted_phone", "encrypted_address", "encrypted_payment_ref", "encrypted_checked_in",
	"encrypted_refunded", "ticket_token_index", "payment_ref_index", "created_at",
}

func sampleAttendee() *attendeesDomain.Attendee {
	return &attendeesDomain.Attendee{
		ID:                 uuid.Must(uuid.NewV7()),
		EventID:            uuid.Must(uuid.NewV7()),
		Quantity:           2,
		EncryptedName:      []byte("enc-name"),
		EncryptedEmail:     []byte("enc-email"),
		EncryptedCheckedIn: []byte("enc-checked-in"),
		EncryptedRefunded:  []byte("enc-refunded"),
		TicketTokenIndex:   "token-index",
		CreatedAt:          time.Now().UTC(),
	}
}

func attendeeRow(attendee *attendeesDomain.Attendee) *sqlmock.Rows {
	return sqlmock.NewRows(attendeeColumnList).AddRow(
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
	)
}

func expectEventLock(mock sqlmock.Sqlmock, eventID uuid.UUID) {
	mock.ExpectQuery("SELECT id FROM events WHERE id = \\$1 FOR UPDATE").
		WithArgs(eventID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(eventID.String()))
}

func TestPostgreSQLAttendeeRepository_ReserveInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLAttendeeRepository(db)
	attendee := sampleAttendee()

	expectEventLock(mock, attendee.EventID)
	mock.ExpectExec("INSERT INTO attendees").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.ReserveInsert(context.Background(), attendee, eventsDomain.ScopeEvent)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLAttendeeRepository_ReserveInsert_LocksEventBeforeInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLAttendeeRepository(db)
	attendee := sampleAttendee()

	// Expectations are ordered: the event row must be locked with FOR UPDATE
	// before the guarded insert runs, so concurrent admissions for the same
	// event serialize instead of both reading a stale capacity sum.
	expectEventLock(mock, attendee.EventID)
	mock.ExpectExec("INSERT INTO attendees").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.ReserveInsert(context.Background(), attendee, eventsDomain.ScopeEvent)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLAttendeeRepository_ReserveInsert_EventNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLAttendeeRepository(db)
	attendee := sampleAttendee()

	mock.ExpectQuery("SELECT id FROM events WHERE id = \\$1 FOR UPDATE").
		WithArgs(attendee.EventID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err = repo.ReserveInsert(context.Background(), attendee, eventsDomain.ScopeEvent)
	assert.ErrorIs(t, err, eventsDomain.ErrEventNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLAttendeeRepository_ReserveInsert_CapacityExceeded(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLAttendeeRepository(db)
	attendee := sampleAttendee()

	expectEventLock(mock, attendee.EventID)
	// The guard rejected the write: zero rows inserted, no error from the store.
	mock.ExpectExec("INSERT INTO attendees").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.ReserveInsert(context.Background(), attendee, eventsDomain.ScopeEvent)
	assert.ErrorIs(t, err, attendeesDomain.ErrCapacityExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLAttendeeRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLAttendeeRepository(db)
	attendee := sampleAttendee()

	mock.ExpectQuery("SELECT (.+) FROM attendees").
		WithArgs(attendee.ID).
		WillReturnRows(attendeeRow(attendee))

	got, err := repo.GetByID(context.Background(), attendee.ID)
	require.NoError(t, err)
	assert.Equal(t, attendee.ID, got.ID)
	assert.Equal(t, attendee.EventID, got.EventID)
	assert.Equal(t, attendee.Quantity, got.Quantity)
	assert.Equal(t, attendee.EncryptedName, got.EncryptedName)
	assert.Equal(t, attendee.TicketTokenIndex, got.TicketTokenIndex)
	assert.Nil(t, got.PaymentRefIndex)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLAttendeeRepository_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLAttendeeRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM attendees").
		WillReturnRows(sqlmock.NewRows(attendeeColumnList))

	got, err := repo.GetByID(context.Background(), uuid.Must(uuid.NewV7()))
	assert.Nil(t, got)
	assert.ErrorIs(t, err, attendeesDomain.ErrAttendeeNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLAttendeeRepository_ListByEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLAttendeeRepository(db)
	first := sampleAttendee()
	second := sampleAttendee()
	second.EventID = first.EventID
	second.TicketTokenIndex = "token-index-2"

	rows := attendeeRow(first).AddRow(
		second.ID.String(),
		second.EventID.String(),
		second.EventDate,
		second.Quantity,
		second.EncryptedName,
		second.EncryptedEmail,
		second.EncryptedPhone,
		second.EncryptedAddress,
		second.EncryptedPaymentRef,
		second.EncryptedCheckedIn,
		second.EncryptedRefunded,
		second.TicketTokenIndex,
		second.PaymentRefIndex,
		second.CreatedAt,
	)

	mock.ExpectQuery("SELECT (.+) FROM attendees").
		WithArgs(first.EventID, 50, 0).
		WillReturnRows(rows)

	got, err := repo.ListByEvent(context.Background(), first.EventID, 50, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLAttendeeRepository_FindByTicketTokenIndex(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLAttendeeRepository(db)
	attendee := sampleAttendee()

	mock.ExpectQuery("SELECT (.+) FROM attendees").
		WithArgs(attendee.TicketTokenIndex).
		WillReturnRows(attendeeRow(attendee))

	got, err := repo.FindByTicketTokenIndex(context.Background(), attendee.TicketTokenIndex)
	require.NoError(t, err)
	assert.Equal(t, attendee.ID, got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLAttendeeRepository_UpdateFlags(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLAttendeeRepository(db)
	id := uuid.Must(uuid.NewV7())

	mock.ExpectExec("UPDATE attendees").
		WithArgs([]byte("enc-true"), []byte("enc-false"), id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.UpdateFlags(context.Background(), id, []byte("enc-true"), []byte("enc-false"))
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLAttendeeRepository_UpdateFlags_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLAttendeeRepository(db)

	mock.ExpectExec("UPDATE attendees").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateFlags(context.Background(), uuid.Must(uuid.NewV7()), []byte("a"), []byte("b"))
	assert.ErrorIs(t, err, attendeesDomain.ErrAttendeeNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLAttendeeRepository_UpdateRefunded(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLAttendeeRepository(db)
	id := uuid.Must(uuid.NewV7())

	mock.ExpectExec("UPDATE attendees").
		WithArgs([]byte("enc-refunded"), id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.UpdateRefunded(context.Background(), id, []byte("enc-refunded"))
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
