package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/google/uuid"

	attendeesDomain "github.com/allisson/ticketbox/internal/attendees/domain"
	"github.com/allisson/ticketbox/internal/database"
	apperrors "github.com/allisson/ticketbox/internal/errors"
	eventsDomain "github.com/allisson/ticketbox/internal/events/domain"
	keyringDomain "github.com/allisson/ticketbox/internal/keyring/domain"
	"github.com/allisson/ticketbox/internal/pii"
)

// ticketTokenBytes is the entropy of the opaque ticket token before encoding.
const ticketTokenBytes = 32

// admissionUseCase implements AdmissionUseCase.
type admissionUseCase struct {
	attendeeRepo AttendeeRepository
	eventReader  EventReader
	keyProvider  KeyProvider
	indexer      *pii.Indexer
	txManager    database.TxManager
}

// NewAdmissionUseCase creates a new admission use case.
func NewAdmissionUseCase(
	attendeeRepo AttendeeRepository,
	eventReader EventReader,
	keyProvider KeyProvider,
	indexer *pii.Indexer,
	txManager database.TxManager,
) AdmissionUseCase {
	return &admissionUseCase{
		attendeeRepo: attendeeRepo,
		eventReader:  eventReader,
		keyProvider:  keyProvider,
		indexer:      indexer,
		txManager:    txManager,
	}
}

// Reserve validates the request, encrypts the contact details with the
// deployment public key, and hands the row to the conditional insert. All
// encryption happens before the store is touched: if the key hierarchy is not
// provisioned, the request fails with ErrEncryptionUnavailable and no
// plaintext ever reaches the database.
func (u *admissionUseCase) Reserve(
	ctx context.Context,
	input ReservationInput,
) (*ReservationResult, error) {
	if input.Quantity <= 0 {
		return nil, attendeesDomain.ErrInvalidQuantity
	}
	if input.Contact.Name == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "name is required")
	}
	if input.Contact.Email == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "email is required")
	}

	event, err := u.eventReader.GetByID(ctx, input.EventID)
	if err != nil {
		return nil, err
	}
	if !event.AcceptsRegistrations(time.Now().UTC()) {
		return nil, eventsDomain.ErrRegistrationClosed
	}
	if event.CapacityScope == eventsDomain.ScopePerDate && input.EventDate == nil {
		return nil, attendeesDomain.ErrEventDateRequired
	}

	material, err := u.keyProvider.Material(ctx)
	if err != nil {
		if apperrors.Is(err, keyringDomain.ErrKeyMaterialNotFound) {
			return nil, pii.ErrEncryptionUnavailable
		}
		return nil, err
	}

	attendee, token, err := u.buildAttendee(input, material.PublicKey)
	if err != nil {
		return nil, err
	}

	// The insert locks the event row, so it runs in a transaction. When the
	// payment coordinator already opened one, this joins it.
	err = u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		return u.attendeeRepo.ReserveInsert(txCtx, attendee, event.CapacityScope)
	})
	if err != nil {
		return nil, err
	}

	return &ReservationResult{Attendee: attendee, TicketToken: token}, nil
}

// buildAttendee encrypts the contact details and mints the ticket token.
func (u *admissionUseCase) buildAttendee(
	input ReservationInput,
	publicKey []byte,
) (*attendeesDomain.Attendee, string, error) {
	attendee := &attendeesDomain.Attendee{
		ID:        uuid.Must(uuid.NewV7()),
		EventID:   input.EventID,
		EventDate: input.EventDate,
		Quantity:  input.Quantity,
		CreatedAt: time.Now().UTC(),
	}

	var err error
	if attendee.EncryptedName, err = pii.EncryptField(input.Contact.Name, publicKey); err != nil {
		return nil, "", err
	}
	if attendee.EncryptedEmail, err = pii.EncryptField(input.Contact.Email, publicKey); err != nil {
		return nil, "", err
	}
	if input.Contact.Phone != nil {
		if attendee.EncryptedPhone, err = pii.EncryptField(*input.Contact.Phone, publicKey); err != nil {
			return nil, "", err
		}
	}
	if input.Contact.Address != nil {
		if attendee.EncryptedAddress, err = pii.EncryptField(*input.Contact.Address, publicKey); err != nil {
			return nil, "", err
		}
	}
	if input.PaymentRef != nil {
		if attendee.EncryptedPaymentRef, err = pii.EncryptField(*input.PaymentRef, publicKey); err != nil {
			return nil, "", err
		}
		index := u.indexer.BlindIndex(*input.PaymentRef)
		attendee.PaymentRefIndex = &index
	}
	if attendee.EncryptedCheckedIn, err = pii.EncryptBool(false, publicKey); err != nil {
		return nil, "", err
	}
	if attendee.EncryptedRefunded, err = pii.EncryptBool(false, publicKey); err != nil {
		return nil, "", err
	}

	token, err := newTicketToken()
	if err != nil {
		return nil, "", err
	}
	attendee.TicketTokenIndex = u.indexer.BlindIndex(token)

	return attendee, token, nil
}

// FindByTicketToken resolves a plaintext ticket token via its blind index.
func (u *admissionUseCase) FindByTicketToken(
	ctx context.Context,
	token string,
) (*attendeesDomain.Attendee, error) {
	if token == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "ticket token is required")
	}
	return u.attendeeRepo.FindByTicketTokenIndex(ctx, u.indexer.BlindIndex(token))
}

// FindByPaymentRef resolves a payment reference via its blind index.
func (u *admissionUseCase) FindByPaymentRef(
	ctx context.Context,
	paymentRef string,
) ([]*attendeesDomain.Attendee, error) {
	if paymentRef == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "payment reference is required")
	}
	return u.attendeeRepo.FindByPaymentRefIndex(ctx, u.indexer.BlindIndex(paymentRef))
}

// ListByEvent returns a page of encrypted attendees.
func (u *admissionUseCase) ListByEvent(
	ctx context.Context,
	eventID uuid.UUID,
	limit, offset int,
) ([]*attendeesDomain.Attendee, error) {
	return u.attendeeRepo.ListByEvent(ctx, eventID, limit, offset)
}

// Decrypt opens every ciphertext column of the attendee with the private key
// unwrapped from the session data key.
func (u *admissionUseCase) Decrypt(
	ctx context.Context,
	attendee *attendeesDomain.Attendee,
	dataKey []byte,
) (*attendeesDomain.AttendeeDetails, error) {
	material, err := u.keyProvider.Material(ctx)
	if err != nil {
		return nil, err
	}

	privateKey, err := u.keyProvider.DecryptPrivateKey(material, dataKey)
	if err != nil {
		return nil, err
	}
	defer keyringDomain.Zero(privateKey)

	details := &attendeesDomain.AttendeeDetails{
		ID:        attendee.ID,
		EventID:   attendee.EventID,
		EventDate: attendee.EventDate,
		Quantity:  attendee.Quantity,
		CreatedAt: attendee.CreatedAt,
	}

	if details.Name, err = pii.DecryptField(attendee.EncryptedName, material.PublicKey, privateKey); err != nil {
		return nil, err
	}
	if details.Email, err = pii.DecryptField(attendee.EncryptedEmail, material.PublicKey, privateKey); err != nil {
		return nil, err
	}
	if attendee.EncryptedPhone != nil {
		phone, err := pii.DecryptField(attendee.EncryptedPhone, material.PublicKey, privateKey)
		if err != nil {
			return nil, err
		}
		details.Phone = &phone
	}
	if attendee.EncryptedAddress != nil {
		address, err := pii.DecryptField(attendee.EncryptedAddress, material.PublicKey, privateKey)
		if err != nil {
			return nil, err
		}
		details.Address = &address
	}
	if attendee.EncryptedPaymentRef != nil {
		paymentRef, err := pii.DecryptField(attendee.EncryptedPaymentRef, material.PublicKey, privateKey)
		if err != nil {
			return nil, err
		}
		details.PaymentRef = &paymentRef
	}
	if details.CheckedIn, err = pii.DecryptBool(attendee.EncryptedCheckedIn, material.PublicKey, privateKey); err != nil {
		return nil, err
	}
	if details.Refunded, err = pii.DecryptBool(attendee.EncryptedRefunded, material.PublicKey, privateKey); err != nil {
		return nil, err
	}

	return details, nil
}

// SetFlags re-encrypts both status flags with the deployment public key.
func (u *admissionUseCase) SetFlags(
	ctx context.Context,
	id uuid.UUID,
	checkedIn, refunded bool,
) error {
	material, err := u.keyProvider.Material(ctx)
	if err != nil {
		return err
	}

	encryptedCheckedIn, err := pii.EncryptBool(checkedIn, material.PublicKey)
	if err != nil {
		return err
	}
	encryptedRefunded, err := pii.EncryptBool(refunded, material.PublicKey)
	if err != nil {
		return err
	}

	return u.attendeeRepo.UpdateFlags(ctx, id, encryptedCheckedIn, encryptedRefunded)
}

// SetRefunded marks an attendee refunded without touching the checked-in
// ciphertext.
func (u *admissionUseCase) SetRefunded(ctx context.Context, id uuid.UUID) error {
	material, err := u.keyProvider.Material(ctx)
	if err != nil {
		return err
	}

	encryptedRefunded, err := pii.EncryptBool(true, material.PublicKey)
	if err != nil {
		return err
	}

	return u.attendeeRepo.UpdateRefunded(ctx, id, encryptedRefunded)
}

// newTicketToken mints an opaque URL-safe ticket token.
func newTicketToken() (string, error) {
	raw := make([]byte, ticketTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", apperrors.Wrap(err, "failed to generate ticket token")
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
