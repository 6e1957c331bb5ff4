package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"volunteerhub/internal/domain"
	"volunteerhub/internal/domain/entities"
	"volunteerhub/internal/ports/output"
)

var _ output.EventRepository = (*EventRepository)(nil)

type eventDoc struct {
	ID               string     `bson:"_id"`
	Name             string     `bson:"name"`
	Description      string     `bson:"description"`
	DateTime         time.Time  `bson:"dateTime"`
	EndDateTime      *time.Time `bson:"endDateTime,omitempty"`
	ImageURL         *string    `bson:"imageUrl,omitempty"`
	Latitude         float64    `bson:"latitude"`
	Longitude        float64    `bson:"longitude"`
	VolunteersNeeded int        `bson:"volunteersNeeded"`
	VolunteersIDs    []string   `bson:"volunteersIds"`
	OrganizerID      string     `bson:"organizerId,omitempty"`
	CreatedAt        time.Time  `bson:"createdAt"`
	UpdatedAt        time.Time  `bson:"updatedAt"`
}

func fromEvent(e *entities.Event) eventDoc {
	ids := e.VolunteersIDs
	if ids == nil {
		ids = []string{}
	}
	return eventDoc{
		ID:               e.ID,
		Name:             e.Name,
		Description:      e.Description,
		DateTime:         e.DateTime,
		EndDateTime:      e.EndDateTime,
		ImageURL:         e.ImageURL,
		Latitude:         e.Position.Latitude,
		Longitude:        e.Position.Longitude,
		VolunteersNeeded: e.VolunteersNeeded,
		VolunteersIDs:    ids,
		OrganizerID:      e.OrganizerID,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func (d eventDoc) toEvent() entities.Event {
	ids := d.VolunteersIDs
	if ids == nil {
		ids = []string{}
	}
	var end *time.Time
	if d.EndDateTime != nil {
		v := d.EndDateTime.UTC()
		end = &v
	}
	return entities.Event{
		ID:               d.ID,
		Name:             d.Name,
		Description:      d.Description,
		DateTime:         d.DateTime.UTC(),
		EndDateTime:      end,
		ImageURL:         d.ImageURL,
		Position:         entities.Position{Latitude: d.Latitude, Longitude: d.Longitude},
		VolunteersNeeded: d.VolunteersNeeded,
		VolunteersIDs:    ids,
		OrganizerID:      d.OrganizerID,
		CreatedAt:        d.CreatedAt.UTC(),
		UpdatedAt:        d.UpdatedAt.UTC(),
	}
}

type EventRepository struct {
	c *mongo.Collection
}

func (r *EventRepository) Create(ctx context.Context, event *entities.Event) error {
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now
	if event.VolunteersIDs == nil {
		event.VolunteersIDs = []string{}
	}
	if _, err := r.c.InsertOne(ctx, fromEvent(event)); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (*entities.Event, error) {
	var d eventDoc
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, eventError("get event", err)
	}
	e := d.toEvent()
	return &e, nil
}

func (r *EventRepository) List(ctx context.Context) ([]entities.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "dateTime", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer cur.Close(ctx)

	var docs []eventDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	out := make([]entities.Event, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEvent())
	}
	return out, nil
}

func (r *EventRepository) Update(ctx context.Context, id string, patch entities.EventPatch) (*entities.Event, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.ImageURL != nil {
		set["imageUrl"] = *patch.ImageURL
	}
	if patch.EndDateTime != nil {
		set["endDateTime"] = patch.EndDateTime.UTC()
	}
	return r.findAndUpdate(ctx, "update event", bson.M{"_id": id}, bson.M{"$set": set})
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// AddVolunteer appends userID only while it is absent and the roster is
// below capacity. The whole check runs server side in one document update.
func (r *EventRepository) AddVolunteer(ctx context.Context, eventID, userID string) (*entities.Event, error) {
	filter := bson.M{
		"_id":           eventID,
		"volunteersIds": bson.M{"$ne": userID},
		"$expr": bson.M{"$lt": bson.A{
			bson.M{"$size": "$volunteersIds"},
			"$volunteersNeeded",
		}},
	}
	update := bson.M{
		"$push": bson.M{"volunteersIds": userID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	e, err := r.findAndUpdate(ctx, "add volunteer", filter, update)
	if !errors.Is(err, domain.ErrEventNotFound) {
		return e, err
	}

	// The filter did not match; work out which condition failed.
	current, findErr := r.FindByID(ctx, eventID)
	if findErr != nil {
		return nil, findErr
	}
	if current.HasVolunteer(userID) {
		return nil, domain.ErrAlreadyVolunteered
	}
	return nil, domain.ErrCapacityExceeded
}

func (r *EventRepository) RemoveVolunteer(ctx context.Context, eventID, userID string) (*entities.Event, error) {
	update := bson.M{
		"$pull": bson.M{"volunteersIds": userID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	e, err := r.findAndUpdate(ctx, "remove volunteer", bson.M{"_id": eventID, "volunteersIds": userID}, update)
	if errors.Is(err, domain.ErrEventNotFound) {
		// Not on the roster, or no such event.
		return r.FindByID(ctx, eventID)
	}
	return e, err
}

func (r *EventRepository) findAndUpdate(ctx context.Context, op string, filter, update bson.M) (*entities.Event, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var d eventDoc
	if err := r.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&d); err != nil {
		return nil, eventError(op, err)
	}
	e := d.toEvent()
	return &e, nil
}

func eventError(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrEventNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
