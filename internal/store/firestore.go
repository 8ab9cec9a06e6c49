package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/robalobadob/dorfhelper/internal/game"
	"github.com/robalobadob/dorfhelper/internal/tile"
)

// firestoreTile is one record as stored in a board document.
type firestoreTile struct {
	X     int64   `firestore:"x"`
	Y     int64   `firestore:"y"`
	Edges []int64 `firestore:"edges"`
}

// firestoreBoard is the document stored per board.
type firestoreBoard struct {
	Tiles []firestoreTile `firestore:"tiles"`
}

type firestoreStore struct {
	client *firestore.Client
	Config
}

// NewFirestoreStore creates a client for the google cloud project.
func NewFirestoreStore(ctx context.Context, projectID string, cfg Config) (Store, error) {
	client, err := firestore.NewClient(ctx, projectID) // do not timeout context - the client is used by the store
	if err != nil {
		return nil, errors.Wrap(err, "creating firestore client")
	}
	return &firestoreStore{client: client, Config: cfg}, nil
}

func (fs *firestoreStore) boards() *firestore.CollectionRef {
	return fs.client.Collection("services").Doc("dorfhelper").Collection("boards")
}

func (fs *firestoreStore) Load(ctx context.Context, board string) ([]game.Record, error) {
	var doc firestoreBoard
	if err := fs.withTimeout(ctx, func(ctx context.Context) error {
		snapshot, err := fs.boards().Doc(board).Get(ctx)
		if err != nil {
			if status.Code(err) == codes.NotFound || (snapshot != nil && !snapshot.Exists()) {
				return errors.Wrapf(ErrNotFound, "board %q", board)
			}
			return err
		}
		return snapshot.DataTo(&doc)
	}); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "reading board")
	}
	return fromFirestore(doc)
}

func (fs *firestoreStore) Save(ctx context.Context, board string, records []game.Record) error {
	if err := fs.withTimeout(ctx, func(ctx context.Context) error {
		_, err := fs.boards().Doc(board).Set(ctx, toFirestore(records))
		return err
	}); err != nil {
		return errors.Wrap(err, "saving board")
	}
	return nil
}

func (fs *firestoreStore) Close() error {
	return fs.client.Close()
}

func toFirestore(records []game.Record) firestoreBoard {
	doc := firestoreBoard{Tiles: make([]firestoreTile, len(records))}
	for i, r := range records {
		t := firestoreTile{X: int64(r.X), Y: int64(r.Y), Edges: make([]int64, tile.Sides)}
		for j, rank := range r.Edges {
			t.Edges[j] = int64(rank)
		}
		doc.Tiles[i] = t
	}
	return doc
}

func fromFirestore(doc firestoreBoard) ([]game.Record, error) {
	out := make([]game.Record, len(doc.Tiles))
	for i, t := range doc.Tiles {
		if len(t.Edges) != tile.Sides {
			return nil, errors.Wrapf(tile.ErrBadRing, "tile %d has %d edges", i, len(t.Edges))
		}
		r := game.Record{X: int(t.X), Y: int(t.Y)}
		for j, rank := range t.Edges {
			r.Edges[j] = int(rank)
		}
		out[i] = r
	}
	return out, nil
}
