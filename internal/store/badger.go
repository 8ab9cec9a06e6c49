package store

import (
	"context"
	"encoding/json"

	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"

	"github.com/robalobadob/dorfhelper/internal/game"
)

const badgerKeyPrefix = "board/"

type badgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens a badger database in dir, or in memory when dir is
// empty.
func NewBadgerStore(dir string) (Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	opts.DetectConflicts = false
	if dir == "" {
		opts.InMemory = true
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "opening badger")
	}
	return &badgerStore{db: db}, nil
}

func badgerKey(board string) []byte {
	return []byte(badgerKeyPrefix + board)
}

func (bs *badgerStore) Load(ctx context.Context, board string) ([]game.Record, error) {
	var out []game.Record
	err := bs.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(board))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &out)
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, errors.Wrapf(ErrNotFound, "board %q", board)
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading board")
	}
	return out, nil
}

func (bs *badgerStore) Save(ctx context.Context, board string, records []game.Record) error {
	val, err := json.Marshal(nonNil(records))
	if err != nil {
		return err
	}
	err = bs.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(board), val)
	})
	return errors.Wrap(err, "saving board")
}

func (bs *badgerStore) Close() error {
	return bs.db.Close()
}
