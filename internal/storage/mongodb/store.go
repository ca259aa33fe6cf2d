// Package mongodb is the MongoDB remote backend. Subscriptions use change
// streams, which need a replica set.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MrJamesThe3rd/stoptracker/internal/storage"
)

const collectionName = "documents"

type document struct {
	ID        string    `bson:"_id"`
	Scope     string    `bson:"scope"`
	Kind      string    `bson:"kind"`
	Payload   string    `bson:"payload"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Connect dials uri and verifies the connection.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{
		client: client,
		coll:   client.Database(dbName).Collection(collectionName),
	}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func documentID(scope string, kind storage.Kind) string {
	return scope + "/" + string(kind)
}

func (s *Store) Get(ctx context.Context, scope string, kind storage.Kind) ([]byte, error) {
	var doc document

	err := s.coll.FindOne(ctx, bson.M{"_id": documentID(scope, kind)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storage.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", kind, err)
	}

	return []byte(doc.Payload), nil
}

func (s *Store) Put(ctx context.Context, scope string, kind storage.Kind, payload []byte) error {
	doc := document{
		ID:        documentID(scope, kind),
		Scope:     scope,
		Kind:      string(kind),
		Payload:   string(payload),
		UpdatedAt: time.Now().UTC(),
	}

	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to replace %s: %w", kind, err)
	}

	return nil
}

type changeEvent struct {
	OperationType string    `bson:"operationType"`
	FullDocument  *document `bson:"fullDocument"`
}

func (s *Store) Watch(ctx context.Context, scope string, kind storage.Kind, fn func(payload []byte)) error {
	id := documentID(scope, kind)

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "documentKey._id", Value: id}}}},
	}

	// Open the stream before reading the current state so no change between
	// the two is lost.
	stream, err := s.coll.Watch(ctx, pipeline, options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return fmt.Errorf("failed to open change stream: %w", err)
	}
	defer func() { _ = stream.Close(context.Background()) }()

	payload, err := s.Get(ctx, scope, kind)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		fn(nil)
	case err != nil:
		return err
	default:
		fn(payload)
	}

	for stream.Next(ctx) {
		var ev changeEvent
		if err := stream.Decode(&ev); err != nil {
			return fmt.Errorf("failed to decode change: %w", err)
		}

		if ev.OperationType == "delete" || ev.FullDocument == nil {
			fn(nil)
			continue
		}

		fn([]byte(ev.FullDocument.Payload))
	}

	if ctx.Err() != nil {
		return nil
	}

	return stream.Err()
}
