package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/meethahouse/dessert-api/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	dessertsCollection = "desserts"
	ordersCollection   = "orders"
)

type MongoStore struct {
	client   *mongo.Client
	desserts *mongo.Collection
	orders   *mongo.Collection
}

// ConnectMongo dials uri, pings the server and returns a store over dbName.
func ConnectMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(timeoutCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(timeoutCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return NewMongoStore(client.Database(dbName)), nil
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		client:   db.Client(),
		desserts: db.Collection(dessertsCollection),
		orders:   db.Collection(ordersCollection),
	}
}

// EnsureIndexes creates the unique order reference index and the
// newest-first listing index. It is idempotent.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.orders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "order_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create order indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) ListDesserts(ctx context.Context) ([]models.Dessert, error) {
	cursor, err := s.desserts.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find desserts: %w", err)
	}
	defer cursor.Close(ctx)

	desserts := []models.Dessert{}
	if err := cursor.All(ctx, &desserts); err != nil {
		return nil, fmt.Errorf("decode desserts: %w", err)
	}
	return desserts, nil
}

func (s *MongoStore) GetDessert(ctx context.Context, id string) (*models.Dessert, error) {
	var dessert models.Dessert
	if err := s.desserts.FindOne(ctx, bson.M{"_id": id}).Decode(&dessert); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find dessert %s: %w", id, err)
	}
	return &dessert, nil
}

func (s *MongoStore) CreateDessert(ctx context.Context, dessert *models.Dessert) error {
	if _, err := s.desserts.InsertOne(ctx, dessert); err != nil {
		return fmt.Errorf("insert dessert: %w", err)
	}
	return nil
}

func (s *MongoStore) UpdateDessertImage(ctx context.Context, id, imageURL string) (*models.Dessert, error) {
	var dessert models.Dessert
	err := s.desserts.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"image_url": imageURL}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&dessert)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update dessert %s: %w", id, err)
	}
	return &dessert, nil
}

func (s *MongoStore) ReplaceDesserts(ctx context.Context, desserts []models.Dessert) error {
	if _, err := s.desserts.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear desserts: %w", err)
	}
	if len(desserts) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(desserts))
	for _, d := range desserts {
		docs = append(docs, d)
	}
	if _, err := s.desserts.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert desserts: %w", err)
	}
	return nil
}

func (s *MongoStore) CreateOrder(ctx context.Context, order *models.Order) error {
	if _, err := s.orders.InsertOne(ctx, order); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateOrderRef
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *MongoStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	cursor, err := s.orders.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

func (s *MongoStore) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := s.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find order %s: %w", id, err)
	}
	return &order, nil
}

func (s *MongoStore) UpdateOrderStatus(ctx context.Context, id string, update models.UpdateOrderRequest) (*models.Order, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range update.Fields() {
		set[k] = v
	}

	var order models.Order
	err := s.orders.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update order %s: %w", id, err)
	}
	return &order, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	disconnectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(disconnectCtx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	return nil
}
