// Package repository implements event persistence for PostgreSQL and MySQL.
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

// PostgreSQLEventRepository implements Event persistence for PostgreSQL databases.
type PostgreSQLEventRepository struct {
	db *sql.DB
}

// NewPostgreSQLEventRepository creates a new PostgreSQL Event repository instance.
func NewPostgreSQLEventRepository(db *sql.DB) *PostgreSQLEventRepository {
	return &PostgreSQLEventRepository{db: db}
}

// Create inserts a new event.
func (p *PostgreSQLEventRepository) Create(ctx context.Context, event *eventsDomain.Event) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO events (id, name, max_attendees, price_cents, currency, closes_at,
			  capacity_scope, active, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := querier.ExecContext(
		ctx,
		query,
		event.ID,
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
func (p *PostgreSQLEventRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*eventsDomain.Event, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, max_attendees, price_cents, currency, closes_at, capacity_scope,
			  active, created_at, updated_at
			  FROM events
			  WHERE id = $1`

	var event eventsDomain.Event
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
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

	return &event, nil
}

// List returns events ordered by creation time, newest first.
func (p *PostgreSQLEventRepository) List(
	ctx context.Context,
	limit, offset int,
) ([]*eventsDomain.Event, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, max_attendees, price_cents, currency, closes_at, capacity_scope,
			  active, created_at, updated_at
			  FROM events
			  ORDER BY created_at DESC
			  LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list events")
	}
	defer rows.Close()

	var events []*eventsDomain.Event
	for rows.Next() {
		var event eventsDomain.Event
		if err := rows.Scan(
			&event.ID,
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
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate events")
	}

	return events, nil
}

// Update persists mutable event fields.
func (p *PostgreSQLEventRepository) Update(ctx context.Context, event *eventsDomain.Event) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE events
			  SET name = $1, max_attendees = $2, price_cents = $3, currency = $4, closes_at = $5,
			  capacity_scope = $6, active = $7, updated_at = $8
			  WHERE id = $9`

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
		event.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update event")
	}
	if affected == 0 {
		return eventsDomain.ErrEventNotFound
	}

	return nil
}

// Deactivate soft-closes an event. Attendee rows referencing it are untouched.
func (p *PostgreSQLEventRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE events
			  SET active = FALSE, updated_at = $1
			  WHERE id = $2`

	affected, err := database.ExecAffected(ctx, querier, query, time.Now().UTC(), id)
	if err != nil {
		return apperrors.Wrap(err, "failed to deactivate event")
	}
	if affected == 0 {
		return eventsDomain.ErrEventNotFound
	}

	return nil
}
