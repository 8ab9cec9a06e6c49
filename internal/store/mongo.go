package store

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/robalobadob/dorfhelper/internal/game"
)

const (
	mongoDatabase   = "dorfhelper"
	mongoCollection = "boards"
	idField         = "_id"
	tilesField      = "tiles"
)

// mongoBoard is the document stored per board.
type mongoBoard struct {
	Name  string        `bson:"_id"`
	Tiles []game.Record `bson:"tiles"`
}

type mongoStore struct {
	client *mongo.Client
	boards *mongo.Collection
	Config
}

// NewMongoStore connects to the database at databaseURL.
func NewMongoStore(ctx context.Context, databaseURL string, cfg Config) (Store, error) {
	clientOptions := options.Client()
	clientOptions.ApplyURI(databaseURL)
	ctx, cancelFunc := context.WithTimeout(ctx, cfg.timeout())
	defer cancelFunc()
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongodb")
	}
	boards := client.Database(mongoDatabase).Collection(mongoCollection)
	return &mongoStore{client: client, boards: boards, Config: cfg}, nil
}

func (ms *mongoStore) Load(ctx context.Context, board string) ([]game.Record, error) {
	filter := d(e(idField, board))
	ctx, cancelFunc := context.WithTimeout(ctx, ms.timeout())
	defer cancelFunc()
	var doc mongoBoard
	if err := ms.boards.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.Wrapf(ErrNotFound, "board %q", board)
		}
		return nil, errors.Wrap(err, "reading board")
	}
	return doc.Tiles, nil
}

func (ms *mongoStore) Save(ctx context.Context, board string, records []game.Record) error {
	filter := d(e(idField, board))
	update := d(e("$set", d(e(tilesField, nonNil(records)))))
	ctx, cancelFunc := context.WithTimeout(ctx, ms.timeout())
	defer cancelFunc()
	if _, err := ms.boards.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return errors.Wrap(err, "saving board")
	}
	return nil
}

func (ms *mongoStore) Close() error {
	ctx, cancelFunc := context.WithTimeout(context.Background(), ms.timeout())
	defer cancelFunc()
	return ms.client.Disconnect(ctx)
}

// nonNil keeps an empty board stored as an empty array rather than null.
func nonNil(records []game.Record) []game.Record {
	if records == nil {
		return []game.Record{}
	}
	return records
}

// d is a helper function to create bson.D elements.
func d(e ...bson.E) bson.D {
	return bson.D(e)
}

// e is a helper function to create bson.E elements.
func e(key string, value interface{}) bson.E {
	return bson.E{Key: key, Value: value}
}
