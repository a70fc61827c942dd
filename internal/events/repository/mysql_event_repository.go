package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/ticketbox/internal/database"
	apperrors "github.com/allisson/ticketbox/internal/errors"
	eventsDomain "github.com/allisson/ticketbox/internal/events/domain"
)

// MySQLEventRepository implements Event persistence for MySQL databases.
type MySQLEventRepository struct {
	db *sql.DB
}

// NewMySQLEventRepository creates a new MySQL Event repository instance.
func NewMySQLEventRepository(db *sql.DB) *MySQLEventRepository {
	return &MySQLEventRepository{db: db}
}

// Create inserts a new event.
func (m *MySQLEventRepository) Create(ctx context.Context, event *eventsDomain.Event) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO events (id, name, max_attendees, price_cents, currency, closes_at,
			  capacity_scope, active, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		event.ID.String(),
		event.Name,
		event.MaxAttendees,
		event.PriceCents,
		event.Currency,
		event.ClosesAt,
		event.CapacityScope,
		event.Active,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create event")
	}
	return nil
}

// GetByID retrieves an event by its id.
func (m *MySQLEventRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*eventsDomain.Event, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, max_attendees, price_cents, currency, closes_at, capacity_scope,
			  active, created_at, updated_at
			  FROM events
			  WHERE id = ?`

	return scanEvent(querier.QueryRowContext(ctx, query, id.String()))
}

// List returns events ordered by creation time, newest first.
func (m *MySQLEventRepository) List(
	ctx context.Context,
	limit, offset int,
) ([]*eventsDomain.Event, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, max_attendees, price_cents, currency, closes_at, capacity_scope,
			  active, created_at, updated_at
			  FROM events
			  ORDER BY created_at DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list events")
	}
	defer rows.Close()

	var events []*eventsDomain.Event
	for rows.Next() {
		var event eventsDomain.Event
		var id string
		if err := rows.Scan(
			&id,
			&event.Name,
			&event.MaxAttendees,
			&event.PriceCents,
			&event.Currency,
			&event.ClosesAt,
			&event.CapacityScope,
			&event.Active,
			&event.CreatedAt,
			&event.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan event")
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to parse event id")
		}
		event.ID = parsed
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate events")
	}

	return events, nil
}

// Update persists mutable event fields.
func (m *MySQLEventRepository) Update(ctx context.Context, event *eventsDomain.Event) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE events
			  SET name = ?, max_attendees = ?, price_cents = ?, currency = ?, closes_at = ?,
			  capacity_scope = ?, active = ?, updated_at = ?
			  WHERE id = ?`

	affected, err := database.ExecAffected(
		ctx,
		querier,
		query,
		event.Name,
		event.MaxAttendees,
		event.PriceCents,
		event.Currency,
		event.ClosesAt,
		event.CapacityScope,
		event.Active,
		event.UpdatedAt,
		event.ID.String(),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update event")
	}
	if affected == 0 {
		return eventsDomain.ErrEventNotFound
	}

	return nil
}

// Deactivate soft-closes an event.
func (m *MySQLEventRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE events
			  SET active = FALSE, updated_at = ?
			  WHERE id = ?`

	affected, err := database.ExecAffected(ctx, querier, query, time.Now().UTC(), id.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to deactivate event")
	}
	if affected == 0 {
		return eventsDomain.ErrEventNotFound
	}

	return nil
}

// scanEvent scans a single event row, converting the string id.
func scanEvent(row *sql.Row) (*eventsDomain.Event, error) {
	var event eventsDomain.Event
	var id string
	err := row.Scan(
		&id,
		&event.Name,
		&event.MaxAttendees,
		&event.PriceCents,
		&event.Currency,
		&event.ClosesAt,
		&event.CapacityScope,
		&event.Active,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, eventsDomain.ErrEventNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get event by id")
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse event id")
	}
	event.ID = parsed

	return &event, nil
}
