// Package firestoredb is the Cloud Firestore remote backend. Each document
// lives at users/{scope}/data/{kind}.
package firestoredb

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/MrJamesThe3rd/stoptracker/internal/storage"
)

type document struct {
	Payload   string    `firestore:"payload"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

type Store struct {
	client *firestore.Client
}

// Connect creates a client for projectID. Without a credentials file the
// application default credentials are used.
func Connect(ctx context.Context, projectID, credentialsFile string) (*Store, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) ref(scope string, kind storage.Kind) *firestore.DocumentRef {
	return s.client.Collection("users").Doc(scope).Collection("data").Doc(string(kind))
}

func (s *Store) Get(ctx context.Context, scope string, kind storage.Kind) ([]byte, error) {
	snap, err := s.ref(scope, kind).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, storage.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", kind, err)
	}

	return decode(snap)
}

func (s *Store) Put(ctx context.Context, scope string, kind storage.Kind, payload []byte) error {
	_, err := s.ref(scope, kind).Set(ctx, document{
		Payload:   string(payload),
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("setting %s: %w", kind, err)
	}

	return nil
}

// Watch follows the document's snapshot stream. The first snapshot is the
// current state.
func (s *Store) Watch(ctx context.Context, scope string, kind storage.Kind, fn func(payload []byte)) error {
	it := s.ref(scope, kind).Snapshots(ctx)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if err != nil {
			if ctx.Err() != nil || status.Code(err) == codes.Canceled {
				return nil
			}

			return fmt.Errorf("watching %s: %w", kind, err)
		}

		if !snap.Exists() {
			fn(nil)
			continue
		}

		payload, err := decode(snap)
		if err != nil {
			return err
		}

		fn(payload)
	}
}

func decode(snap *firestore.DocumentSnapshot) ([]byte, error) {
	var doc document
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", snap.Ref.ID, err)
	}

	return []byte(doc.Payload), nil
}
