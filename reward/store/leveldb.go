package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/df-mc/goleveldb/leveldb"
	"github.com/df-mc/goleveldb/leveldb/opt"
)

const levelDBPrefix = "titanium_rewards/"

// LevelDB stores ledgers in a LevelDB database, one key per world, using the
// same compression Dragonfly uses for world data.
type LevelDB struct {
	db *leveldb.DB
}

// OpenLevelDB opens or creates the database in dir.
func OpenLevelDB(dir string) (*LevelDB, error) {
	if dir == "" {
		return nil, fmt.Errorf("store: empty directory")
	}
	db, err := leveldb.OpenFile(dir, &opt.Options{
		Compression: opt.FlateCompression,
		BlockSize:   16 * opt.KiB,
	})
	if err != nil {
		return nil, fmt.Errorf("store: open leveldb %s: %w", dir, err)
	}
	return &LevelDB{db: db}, nil
}

func (l *LevelDB) Load(ctx context.Context, world string) (map[string]any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	b, err := l.db.Get([]byte(levelDBPrefix+world), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: get %s: %w", world, err)
	}
	data, err := decode(b)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (l *LevelDB) Save(ctx context.Context, world string, data map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := encode(data)
	if err != nil {
		return err
	}
	if err := l.db.Put([]byte(levelDBPrefix+world), b, nil); err != nil {
		return fmt.Errorf("store: put %s: %w", world, err)
	}
	return nil
}

func (l *LevelDB) Close() error { return l.db.Close() }
