package blob

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Base64 keeps the encoded blob inside a regular MongoDB document, which is
// the form pipeline workers consume. The blob name is the document ObjectID.
type Base64 struct {
	coll *mongo.Collection
}

func NewBase64(db *mongo.Database, collection string) *Base64 {
	return &Base64{coll: db.Collection(collection)}
}

type base64Entry struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Contents string             `bson:"contents"`
}

func (s *Base64) Save(ctx context.Context, _ string, r io.Reader) (Stored, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Stored{}, fmt.Errorf("read blob failed: %w", err)
	}
	res, err := s.coll.InsertOne(ctx, base64Entry{Contents: base64.StdEncoding.EncodeToString(raw)})
	if err != nil {
		return Stored{}, fmt.Errorf("insert blob failed: %w", err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return Stored{}, fmt.Errorf("unexpected inserted id %v", res.InsertedID)
	}
	return Stored{Name: id.Hex(), FileID: id.Hex(), Size: int64(len(raw))}, nil
}

func (s *Base64) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	raw, err := s.read(ctx, name)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (s *Base64) Delete(ctx context.Context, name string) error {
	id, err := primitive.ObjectIDFromHex(name)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete blob failed: %w", err)
	}
	return nil
}

func (s *Base64) Exists(ctx context.Context, name string) (bool, error) {
	id, err := primitive.ObjectIDFromHex(name)
	if err != nil {
		return false, nil
	}
	n, err := s.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("count blobs failed: %w", err)
	}
	return n > 0, nil
}

func (s *Base64) Size(ctx context.Context, name string) (int64, error) {
	raw, err := s.read(ctx, name)
	if err != nil {
		return 0, err
	}
	return int64(len(raw)), nil
}

func (s *Base64) read(ctx context.Context, name string) ([]byte, error) {
	id, err := primitive.ObjectIDFromHex(name)
	if err != nil {
		return nil, fmt.Errorf("%w: document with name %s does not exist", ErrNotFound, name)
	}
	var entry base64Entry
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&entry); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: document with name %s does not exist", ErrNotFound, name)
		}
		return nil, fmt.Errorf("find blob failed: %w", err)
	}
	raw, err := base64.StdEncoding.DecodeString(entry.Contents)
	if err != nil {
		return nil, fmt.Errorf("decode blob failed: %w", err)
	}
	return raw, nil
}
