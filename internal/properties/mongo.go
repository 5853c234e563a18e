package properties

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore reads the key/value collection written by the pipeline workers.
// Each entry is a document shaped {_id: <key>, v: <value>}.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database, collection string) *MongoStore {
	return &MongoStore{coll: db.Collection(collection)}
}

type mongoEntry struct {
	ID string        `bson:"_id"`
	V  bson.RawValue `bson:"v"`
}

func (s *MongoStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var entry mongoEntry
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("find property entry failed: %w", err)
	}

	// Relaxed extended JSON keeps numbers and strings plain.
	wrapped, err := bson.MarshalExtJSON(bson.D{{Key: "v", Value: entry.V}}, false, false)
	if err != nil {
		return nil, fmt.Errorf("convert property entry failed: %w", err)
	}
	var out struct {
		V json.RawMessage `json:"v"`
	}
	if err := json.Unmarshal(wrapped, &out); err != nil {
		return nil, fmt.Errorf("convert property entry failed: %w", err)
	}
	return out.V, nil
}

func (s *MongoStore) Set(ctx context.Context, key string, value any) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$set": bson.M{"v": value}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert property entry failed: %w", err)
	}
	return nil
}
