package database

import (
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"volunteerhub/internal/domain/entities"
)

const eventColumns = `id, name, description, date_time, end_date_time, image_url, latitude, longitude,
volunteers_needed, volunteers_ids, organizer_id, created_at, updated_at`

const userColumns = `id, first_name, last_name, email, mobile, password_hash`

// timestamptzPtr returns nil when t is not Valid.
func timestamptzPtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	v := t.String
	return &v
}

func toTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

func toText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func scanEvent(row pgx.Row) (entities.Event, error) {
	var (
		e        entities.Event
		end      pgtype.Timestamptz
		imageURL pgtype.Text
		needed   int32
	)
	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Description,
		&e.DateTime,
		&end,
		&imageURL,
		&e.Position.Latitude,
		&e.Position.Longitude,
		&needed,
		&e.VolunteersIDs,
		&e.OrganizerID,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return entities.Event{}, err
	}
	e.DateTime = e.DateTime.UTC()
	e.EndDateTime = timestamptzPtr(end)
	e.ImageURL = textPtr(imageURL)
	e.VolunteersNeeded = int(needed)
	if e.VolunteersIDs == nil {
		e.VolunteersIDs = []string{}
	}
	return e, nil
}

func scanUser(row pgx.Row) (entities.User, error) {
	var u entities.User
	err := row.Scan(&u.ID, &u.Name.First, &u.Name.Last, &u.Email, &u.Mobile, &u.PasswordHash)
	return u, err
}
