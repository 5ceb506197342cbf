// Package repository implements document-store access for registrations
// and events, including the ordered-query fallback: when the store
// cannot serve a sorted query, the same result set is fetched unordered
// and sorted in memory, indistinguishably to callers.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"

	"github.com/eventworks/season-registrations/internal/database"
	"github.com/eventworks/season-registrations/internal/model"
	"github.com/eventworks/season-registrations/internal/query"
)

// ErrNotFound is returned when an id-based lookup misses.
var ErrNotFound = errors.New("not found")

// ErrStoreUnavailable signals a transient store problem; callers may
// retry with backoff. The repository itself never retries, to keep
// failure attribution clear.
var ErrStoreUnavailable = errors.New("store unavailable")

// ErrPermissionDenied signals a policy or configuration problem;
// callers must not retry silently.
var ErrPermissionDenied = errors.New("permission denied")

// ErrWriteFailed wraps any create/update/delete failure with its cause.
var ErrWriteFailed = errors.New("write failed")

// sortFieldPaths maps engine sort keys to stored document paths for
// store-side sorted queries.
var sortFieldPaths = map[string]string{
	query.KeyCreatedAt:      "createdAt",
	query.KeyCompanyName:    "companyName",
	query.KeyContactName:    "contactName",
	query.KeyStatus:         "status",
	query.KeyTotalCost:      "pricing.totalCost",
	query.KeyAttendingCount: "pricing.attendingCount",
	query.KeySeason:         "season.number",
}

// RegistrationRepository handles persistence for registrations.
type RegistrationRepository struct {
	col *mongo.Collection
	log *slog.Logger
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *mongo.Database, log *slog.Logger) *RegistrationRepository {
	return &RegistrationRepository{
		col: db.Collection(database.RegistrationsCollection),
		log: log,
	}
}

// Create inserts a new registration. Both timestamps are stamped here,
// never taken from the caller; the returned record carries a locally
// approximated creation time that is reconciled on the next read.
func (r *RegistrationRepository) Create(ctx context.Context, reg *model.Registration) (*model.Registration, error) {
	now := time.Now().UTC()
	doc := newRegistrationDoc(reg, now)

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, writeErr("insert registration", err)
	}

	created := *reg
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	created.CreatedAt = &now
	created.UpdatedAt = &now
	return &created, nil
}

// GetByID returns a single registration or ErrNotFound.
func (r *RegistrationRepository) GetByID(ctx context.Context, id string) (*model.Registration, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("registration %q: %w", id, ErrNotFound)
	}

	var doc registrationDoc
	if err := r.col.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("registration %q: %w", id, ErrNotFound)
		}
		return nil, readErr("get registration", err)
	}
	reg := doc.toModel()
	return &reg, nil
}

// GetAll returns every registration ordered by the given key.
func (r *RegistrationRepository) GetAll(ctx context.Context, orderBy string, desc bool) ([]model.Registration, error) {
	return r.fetchOrdered(ctx, bson.D{}, orderBy, desc)
}

// GetByField returns registrations matching one stored field, ordered
// by the given key.
func (r *RegistrationRepository) GetByField(ctx context.Context, field string, value any, orderBy string, desc bool) ([]model.Registration, error) {
	return r.fetchOrdered(ctx, bson.D{{Key: field, Value: value}}, orderBy, desc)
}

// UpdateStatus transitions the registration lifecycle state.
func (r *RegistrationRepository) UpdateStatus(ctx context.Context, id string, status model.Status) error {
	return r.update(ctx, id, bson.M{"status": string(status)})
}

// UpdatePaymentStatus transitions the payment state.
func (r *RegistrationRepository) UpdatePaymentStatus(ctx context.Context, id string, status model.PaymentStatus) error {
	return r.update(ctx, id, bson.M{"paymentStatus": string(status)})
}

// UpdateSeasonSelection corrects a season registration's selected
// events, replacing the snapshot and the derived financial fields.
func (r *RegistrationRepository) UpdateSeasonSelection(ctx context.Context, id string, season model.SeasonDetails, pricing model.Pricing) error {
	doc := seasonDoc{
		Number:           season.Number,
		SelectedEventIDs: season.SelectedEventIDs,
	}
	for _, ev := range season.SelectedEventDetails {
		doc.SelectedEventDetails = append(doc.SelectedEventDetails, refToDoc(ev))
	}
	return r.update(ctx, id, bson.M{"season": doc, "pricing": pricing})
}

// update applies a partial update, always refreshing updatedAt.
// createdAt and _id are immutable after creation and never touched.
func (r *RegistrationRepository) update(ctx context.Context, id string, set bson.M) error {
	if id == "" {
		return fmt.Errorf("%w: update requires a registration id", ErrWriteFailed)
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("registration %q: %w", id, ErrNotFound)
	}

	set["updatedAt"] = time.Now().UTC()
	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": set})
	if err != nil {
		return writeErr("update registration", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("registration %q: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes a registration. Deletion is an administrative escape
// hatch; deleting a missing id is a visible write failure, not a silent
// success, so an accidental double-delete shows up.
func (r *RegistrationRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: delete registration %q: %w", ErrWriteFailed, id, ErrNotFound)
	}

	res, err := r.col.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return writeErr("delete registration", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: delete registration %q: %w", ErrWriteFailed, id, ErrNotFound)
	}
	return nil
}

// fetchOrdered is the ordered-query strategy shared by every listing
// entry point: try a store-side sorted query first; if the store
// rejects the sort (typically a missing index for a newly introduced
// sort field), fetch the same result set unordered and sort in memory.
// Callers cannot tell which path ran.
func (r *RegistrationRepository) fetchOrdered(ctx context.Context, filter bson.D, orderBy string, desc bool) ([]model.Registration, error) {
	if orderBy == "" {
		orderBy = query.KeyCreatedAt
	}

	if path, ok := sortFieldPaths[orderBy]; ok {
		dir := 1
		if desc {
			dir = -1
		}
		opts := options.Find().SetSort(bson.D{{Key: path, Value: dir}})
		regs, err := r.fetch(ctx, filter, opts)
		if err == nil {
			return regs, nil
		}
		if !isSortUnsupported(err) {
			return nil, err
		}
		r.log.Warn("store rejected ordered query, sorting in memory",
			"orderBy", orderBy, "error", err)
	}

	regs, err := r.fetch(ctx, filter, options.Find())
	if err != nil {
		return nil, err
	}
	query.SortRegistrations(regs, orderBy, desc)
	return regs, nil
}

func (r *RegistrationRepository) fetch(ctx context.Context, filter bson.D, opts *options.FindOptions) ([]model.Registration, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, readErr("find registrations", err)
	}
	defer cur.Close(ctx)

	var docs []registrationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, readErr("decode registrations", err)
	}

	regs := make([]model.Registration, 0, len(docs))
	for i := range docs {
		regs = append(regs, docs[i].toModel())
	}
	return regs, nil
}

// isSortUnsupported recognizes the store's "cannot serve this sorted
// query" rejections: operation failures for unindexed sort fields and
// sort memory-limit errors. Only these trigger the in-memory fallback;
// anything else propagates.
func isSortUnsupported(err error) bool {
	var cmdErr mongo.CommandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	switch cmdErr.Code {
	case 96, 292: // OperationFailed, QueryExceededMemoryLimit
		return true
	}
	return strings.Contains(strings.ToLower(cmdErr.Message), "sort")
}

// readErr maps a read failure onto the caller-facing taxonomy.
func readErr(op string, err error) error {
	switch {
	case isUnauthorized(err):
		return fmt.Errorf("%s: %w: %w", op, ErrPermissionDenied, err)
	case isTransient(err):
		return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// writeErr maps a write failure onto the caller-facing taxonomy,
// always attaching the underlying cause for logs.
func writeErr(op string, err error) error {
	switch {
	case isUnauthorized(err):
		return fmt.Errorf("%s: %w: %w", op, ErrPermissionDenied, err)
	case isTransient(err):
		return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	default:
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, op, err)
	}
}

func isUnauthorized(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == 13 // Unauthorized
	}
	return false
}

func isTransient(err error) bool {
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var selErr topology.ServerSelectionError
	return errors.As(err, &selErr)
}
