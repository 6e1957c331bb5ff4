package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"volunteerhub/internal/domain"
	"volunteerhub/internal/domain/entities"
	"volunteerhub/internal/ports/output"
)

var _ output.EventRepository = (*EventRepository)(nil)

type EventRepository struct {
	pool *pgxpool.Pool
	q    querier
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool, q: querier{pool: pool}}
}

func (r *EventRepository) Create(ctx context.Context, event *entities.Event) error {
	if event.VolunteersIDs == nil {
		event.VolunteersIDs = []string{}
	}
	const stmt = `
INSERT INTO events (id, name, description, date_time, end_date_time, image_url, latitude, longitude,
	volunteers_needed, volunteers_ids, organizer_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING created_at, updated_at`

	err := r.q.queryRow(ctx, stmt,
		event.ID,
		event.Name,
		event.Description,
		event.DateTime,
		toTimestamptz(event.EndDateTime),
		toText(event.ImageURL),
		event.Position.Latitude,
		event.Position.Longitude,
		int32(event.VolunteersNeeded),
		event.VolunteersIDs,
		event.OrganizerID,
	).Scan(&event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (*entities.Event, error) {
	e, err := scanEvent(r.q.queryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		return nil, eventError("get event", err)
	}
	return &e, nil
}

func (r *EventRepository) List(ctx context.Context) ([]entities.Event, error) {
	rows, err := r.q.query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY date_time, id`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []entities.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}

func (r *EventRepository) Update(ctx context.Context, id string, patch entities.EventPatch) (*entities.Event, error) {
	const stmt = `
UPDATE events SET
	name = COALESCE($2, name),
	description = COALESCE($3, description),
	image_url = COALESCE($4, image_url),
	end_date_time = COALESCE($5, end_date_time),
	updated_at = NOW()
WHERE id = $1
RETURNING ` + eventColumns

	e, err := scanEvent(r.q.queryRow(ctx, stmt, id, patch.Name, patch.Description, patch.ImageURL, toTimestamptz(patch.EndDateTime)))
	if err != nil {
		return nil, eventError("update event", err)
	}
	return &e, nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.q.exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// AddVolunteer locks the event row, checks uniqueness and capacity, then
// appends. The capacity CHECK constraint backs this up at the schema level.
func (r *EventRepository) AddVolunteer(ctx context.Context, eventID, userID string) (*entities.Event, error) {
	var out entities.Event
	err := withTx(ctx, r.pool, func(txCtx context.Context) error {
		current, err := scanEvent(r.q.queryRow(txCtx, `SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, eventID))
		if err != nil {
			return eventError("lock event", err)
		}
		if current.HasVolunteer(userID) {
			return domain.ErrAlreadyVolunteered
		}
		if current.IsFull() {
			return domain.ErrCapacityExceeded
		}

		const stmt = `
UPDATE events SET volunteers_ids = array_append(volunteers_ids, $2::text), updated_at = NOW()
WHERE id = $1
RETURNING ` + eventColumns
		out, err = scanEvent(r.q.queryRow(txCtx, stmt, eventID, userID))
		if err != nil {
			if isCheckViolation(err) {
				return domain.ErrCapacityExceeded
			}
			return eventError("add volunteer", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveVolunteer is a single statement; updated_at only moves when the id was present.
func (r *EventRepository) RemoveVolunteer(ctx context.Context, eventID, userID string) (*entities.Event, error) {
	const stmt = `
UPDATE events SET
	volunteers_ids = array_remove(volunteers_ids, $2::text),
	updated_at = CASE WHEN $2::text = ANY(volunteers_ids) THEN NOW() ELSE updated_at END
WHERE id = $1
RETURNING ` + eventColumns

	e, err := scanEvent(r.q.queryRow(ctx, stmt, eventID, userID))
	if err != nil {
		return nil, eventError("remove volunteer", err)
	}
	return &e, nil
}

func eventError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrEventNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
