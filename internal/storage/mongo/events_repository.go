package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eventbase/server/internal/domain/events"
	"github.com/eventbase/server/internal/domain/ids"
)

const eventsCollection = "events"

var _ events.Repository = (*EventRepository)(nil)

type EventRepository struct {
	coll *mongo.Collection
}

func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{coll: db.Collection(eventsCollection)}
}

type eventDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Date        time.Time          `bson:"date"`
	Location    string             `bson:"location"`
	Organizer   string             `bson:"organizer"`
	Tags        []string           `bson:"tags"`
	Capacity    int                `bson:"capacity"`
	IsActive    bool               `bson:"is_active"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (d eventDocument) toDomain() *events.Event {
	return &events.Event{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Date:        d.Date.UTC(),
		Location:    d.Location,
		Organizer:   d.Organizer,
		Tags:        d.Tags,
		Capacity:    d.Capacity,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

func fromDomain(event *events.Event) eventDocument {
	return eventDocument{
		Title:       event.Title,
		Description: event.Description,
		Date:        event.Date,
		Location:    event.Location,
		Organizer:   event.Organizer,
		Tags:        event.Tags,
		Capacity:    event.Capacity,
		IsActive:    event.IsActive,
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}
}

func (r *EventRepository) Insert(ctx context.Context, event *events.Event) (*events.Event, error) {
	doc := fromDomain(event)
	if doc.Tags == nil {
		doc.Tags = []string{}
	}

	result, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		// The partial unique index on active (title, date) closes the
		// check-then-insert race window.
		if mongo.IsDuplicateKeyError(err) {
			return nil, events.ErrConflict
		}
		return nil, fmt.Errorf("insert event: %w", err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert event: unexpected inserted id type %T", result.InsertedID)
	}
	doc.ID = oid
	return doc.toDomain(), nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*events.Event, error) {
	oid, err := ids.ParseObjectID(id)
	if err != nil {
		return nil, events.ErrInvalidID
	}

	var doc eventDocument
	err = r.coll.FindOne(ctx, bson.M{"_id": oid, "is_active": true}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, events.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event %s: %w", id, err)
	}
	return doc.toDomain(), nil
}

func (r *EventRepository) FindActiveByTitleDate(ctx context.Context, title string, date time.Time, excludeID string) (*events.Event, error) {
	filter := bson.M{"title": title, "date": date, "is_active": true}
	if excludeID != "" {
		oid, err := ids.ParseObjectID(excludeID)
		if err != nil {
			return nil, events.ErrInvalidID
		}
		filter["_id"] = bson.M{"$ne": oid}
	}

	var doc eventDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, events.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find event by title and date: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *EventRepository) List(ctx context.Context, params events.ListParams) (events.ListResult, error) {
	filter := buildListFilter(params)

	// Total reflects the full filtered count, independent of the page window.
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return events.ListResult{}, fmt.Errorf("count events: %w", err)
	}

	cursor, err := r.coll.Find(ctx, filter, listFindOptions(params))
	if err != nil {
		return events.ListResult{}, fmt.Errorf("list events: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []eventDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return events.ListResult{}, fmt.Errorf("decode events: %w", err)
	}

	items := make([]events.Event, 0, len(docs))
	for _, doc := range docs {
		items = append(items, *doc.toDomain())
	}
	return events.ListResult{Events: items, Total: total}, nil
}

func (r *EventRepository) Update(ctx context.Context, id string, fields events.UpdateFields) (*events.Event, error) {
	oid, err := ids.ParseObjectID(id)
	if err != nil {
		return nil, events.ErrInvalidID
	}

	set := updateSet(fields)

	var doc eventDocument
	err = r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, events.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return nil, events.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("update event %s: %w", id, err)
	}
	return doc.toDomain(), nil
}

func (r *EventRepository) SoftDelete(ctx context.Context, id string) error {
	oid, err := ids.ParseObjectID(id)
	if err != nil {
		return events.ErrInvalidID
	}

	// Single conditional update; atomic at document granularity. Matching
	// zero documents covers both "never existed" and "already deleted".
	result, err := r.coll.UpdateOne(
		ctx,
		bson.M{"_id": oid, "is_active": true},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("soft delete event %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return events.ErrNotFound
	}
	return nil
}

// updateSet maps supplied fields to a $set document; absent fields never
// appear, so stored values stay untouched.
func updateSet(fields events.UpdateFields) bson.M {
	set := bson.M{"updated_at": fields.UpdatedAt}
	if fields.Title != nil {
		set["title"] = *fields.Title
	}
	if fields.Description != nil {
		set["description"] = *fields.Description
	}
	if fields.Date != nil {
		set["date"] = *fields.Date
	}
	if fields.Location != nil {
		set["location"] = *fields.Location
	}
	if fields.Organizer != nil {
		set["organizer"] = *fields.Organizer
	}
	if fields.Tags != nil {
		set["tags"] = *fields.Tags
	}
	if fields.Capacity != nil {
		set["capacity"] = *fields.Capacity
	}
	if fields.IsActive != nil {
		set["is_active"] = *fields.IsActive
	}
	return set
}
