package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const slotAPIKey = "advisory_api_key"

type settingDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// KeyStore keeps the advisory API key in a single document of the settings collection.
type KeyStore struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewKeyStore connects to MongoDB and verifies the connection.
func NewKeyStore(ctx context.Context, uri string, dbName string) (*KeyStore, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &KeyStore{
		client:   client,
		dbName:   dbName,
		collName: "settings",
	}, nil
}

func (s *KeyStore) collection() *mongo.Collection {
	return s.client.Database(s.dbName).Collection(s.collName)
}

// Load returns the stored key, or "" when the slot is empty.
func (s *KeyStore) Load(ctx context.Context) (string, error) {
	var doc settingDocument
	err := s.collection().FindOne(ctx, bson.M{"_id": slotAPIKey}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load api key: %w", err)
	}
	return doc.Value, nil
}

// Save overwrites the slot.
func (s *KeyStore) Save(ctx context.Context, key string) error {
	update := bson.M{"$set": bson.M{"value": key, "updated_at": time.Now().UTC()}}
	_, err := s.collection().UpdateOne(ctx, bson.M{"_id": slotAPIKey}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save api key: %w", err)
	}
	return nil
}

// Erase empties the slot.
func (s *KeyStore) Erase(ctx context.Context) error {
	if _, err := s.collection().DeleteOne(ctx, bson.M{"_id": slotAPIKey}); err != nil {
		return fmt.Errorf("failed to erase api key: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (s *KeyStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
