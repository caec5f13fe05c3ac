package repository

import (
	"context"
	"fmt"
	"time"

	bookingserrors "sharedcal/internal/bookings/errors"
	mongotx "sharedcal/pkg/db/mongo"
	"sharedcal/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	CollectionName = "Bookings"
)

// bookingDocument is the stored shape. Position keeps insertion order
// since Mongo does not guarantee natural order.
type bookingDocument struct {
	ID       int    `bson:"_id"`
	Position int    `bson:"position"`
	Name     string `bson:"name"`
	Purpose  string `bson:"purpose"`
	Date     string `bson:"date"`
	Start    string `bson:"start"`
	End      string `bson:"end"`
	Status   string `bson:"status,omitempty"`
}

type mongoBookingRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
	timeout    time.Duration
}

func NewMongoBookingRepository(client *mongo.Client, databaseName string, timeout time.Duration) BookingRepository {
	return &mongoBookingRepository{
		client:     client,
		collection: client.Database(databaseName).Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(client),
		timeout:    timeout,
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// A SessionContext cannot be wrapped without breaking transaction semantics.
func (r *mongoBookingRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < r.timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *mongoBookingRepository) Load(ctx context.Context) ([]model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []bookingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: %v", bookingserrors.ErrMalformedStore, err)
	}

	bookings := make([]model.Booking, 0, len(docs))
	for _, doc := range docs {
		b, err := doc.toBooking()
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

// Save replaces the collection contents inside one transaction.
func (r *mongoBookingRepository) Save(ctx context.Context, bookings []model.Booking) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	docs := make([]any, 0, len(bookings))
	for i, b := range bookings {
		docs = append(docs, newBookingDocument(b, i))
	}

	return r.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if _, err := r.collection.DeleteMany(sessCtx, bson.M{}); err != nil {
			return fmt.Errorf("failed to clear bookings: %w", err)
		}
		if len(docs) == 0 {
			return nil
		}
		if _, err := r.collection.InsertMany(sessCtx, docs); err != nil {
			return fmt.Errorf("failed to insert bookings: %w", err)
		}
		return nil
	})
}

func (r *mongoBookingRepository) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.client.Ping(ctx, readpref.Primary())
}

// Close is a no-op; the shared client is disconnected by config shutdown.
func (r *mongoBookingRepository) Close(ctx context.Context) error {
	return nil
}

func newBookingDocument(b model.Booking, position int) bookingDocument {
	return bookingDocument{
		ID:       b.ID,
		Position: position,
		Name:     b.Name,
		Purpose:  b.Purpose,
		Date:     b.Date.String(),
		Start:    b.Start.String(),
		End:      b.End.String(),
		Status:   string(b.Status),
	}
}

func (d bookingDocument) toBooking() (model.Booking, error) {
	return parseStored(d.ID, d.Name, d.Purpose, d.Date, d.Start, d.End, d.Status)
}

// parseStored rebuilds a booking from its persisted string columns.
func parseStored(id int, name, purpose, date, start, end, status string) (model.Booking, error) {
	d, err := model.ParseDate(date)
	if err != nil {
		return model.Booking{}, fmt.Errorf("%w: booking %d: %v", bookingserrors.ErrMalformedStore, id, err)
	}
	s, err := model.ParseClock(start)
	if err != nil {
		return model.Booking{}, fmt.Errorf("%w: booking %d: %v", bookingserrors.ErrMalformedStore, id, err)
	}
	e, err := model.ParseClock(end)
	if err != nil {
		return model.Booking{}, fmt.Errorf("%w: booking %d: %v", bookingserrors.ErrMalformedStore, id, err)
	}
	if st := model.Status(status); st != "" && !st.Valid() {
		return model.Booking{}, fmt.Errorf("%w: booking %d: unknown status %q", bookingserrors.ErrMalformedStore, id, status)
	}

	return model.Booking{
		ID:      id,
		Name:    name,
		Purpose: purpose,
		Date:    d,
		Start:   s,
		End:     e,
		Status:  model.Status(status),
	}, nil
}
