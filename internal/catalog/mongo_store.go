package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Mariosyian/marketplace/internal/domain"
)

// ConnectMongoDB opens and pings a MongoDB connection. A failure here is
// fatal at startup: the process must not serve with a half-initialized
// catalog.
func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

type mongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore returns a Store backed by the "items" collection.
func NewMongoStore(db *mongo.Database) Store {
	return &mongoStore{collection: db.Collection("items")}
}

// itemDoc is the persisted shape; _id is a Mongo ObjectID and is rendered to
// hex on the way out so the rest of the code only sees string IDs.
type itemDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
	Price       float64            `bson:"price"`
	Quantity    int                `bson:"quantity"`
	Image       string             `bson:"image,omitempty"`
}

func (d *itemDoc) toDomain() *domain.Item {
	return &domain.Item{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Quantity:    d.Quantity,
		ImageURL:    d.Image,
	}
}

func (m *mongoStore) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// Malformed IDs behave like absent ones.
		return nil, ErrItemNotFound
	}

	var doc itemDoc
	err = m.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return doc.toDomain(), nil
}

func (m *mongoStore) ListItems(ctx context.Context) ([]*domain.Item, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := m.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer cursor.Close(ctx)

	var items []*domain.Item
	for cursor.Next(ctx) {
		var doc itemDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode item: %w", err)
		}
		items = append(items, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	return items, nil
}

func (m *mongoStore) DecrementQuantity(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrItemNotFound
	}

	update := bson.M{"$inc": bson.M{"quantity": -1}}
	result, err := m.collection.UpdateByID(ctx, oid, update)
	if err != nil {
		return fmt.Errorf("failed to decrement quantity: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrItemNotFound
	}

	return nil
}
