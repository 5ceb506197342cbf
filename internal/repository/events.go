package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eventworks/season-registrations/internal/database"
	"github.com/eventworks/season-registrations/internal/model"
	"github.com/eventworks/season-registrations/internal/query"
)

// EventRepository handles read access to the event catalog.
type EventRepository struct {
	col *mongo.Collection
	log *slog.Logger
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *mongo.Database, log *slog.Logger) *EventRepository {
	return &EventRepository{
		col: db.Collection(database.EventsCollection),
		log: log,
	}
}

// List returns catalog events ordered by date, soonest first. The
// ordered-query fallback applies here the same as for registrations.
func (r *EventRepository) List(ctx context.Context) ([]model.Event, error) {
	return r.fetchOrderedByDate(ctx, bson.D{})
}

// ListBySeason returns the events grouped under one season.
func (r *EventRepository) ListBySeason(ctx context.Context, season int) ([]model.Event, error) {
	return r.fetchOrderedByDate(ctx, bson.D{{Key: "season", Value: season}})
}

// fetchOrderedByDate is the same ordered-query strategy the
// registration listing uses: store-side sort first, in-memory sort when
// the store rejects it.
func (r *EventRepository) fetchOrderedByDate(ctx context.Context, filter bson.D) ([]model.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	events, err := r.fetch(ctx, filter, opts)
	if err == nil {
		return events, nil
	}
	if !isSortUnsupported(err) {
		return nil, err
	}
	r.log.Warn("store rejected ordered event query, sorting in memory", "error", err)

	events, err = r.fetch(ctx, filter, options.Find())
	if err != nil {
		return nil, err
	}
	sort.SliceStable(events, func(i, j int) bool {
		return query.CompareValues(events[i].Date, events[j].Date) < 0
	})
	return events, nil
}

// GetByID returns a single catalog event or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("event %q: %w", id, ErrNotFound)
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}}, id)
}

// GetBySlug returns a single catalog event by its URL slug.
func (r *EventRepository) GetBySlug(ctx context.Context, slug string) (*model.Event, error) {
	return r.findOne(ctx, bson.D{{Key: "slug", Value: slug}}, slug)
}

func (r *EventRepository) findOne(ctx context.Context, filter bson.D, ref string) (*model.Event, error) {
	var doc eventDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("event %q: %w", ref, ErrNotFound)
		}
		return nil, readErr("get event", err)
	}
	ev := doc.toModel()
	return &ev, nil
}

func (r *EventRepository) fetch(ctx context.Context, filter bson.D, opts *options.FindOptions) ([]model.Event, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, readErr("find events", err)
	}
	defer cur.Close(ctx)

	var docs []eventDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, readErr("decode events", err)
	}

	events := make([]model.Event, 0, len(docs))
	for i := range docs {
		events = append(events, docs[i].toModel())
	}
	return events, nil
}
