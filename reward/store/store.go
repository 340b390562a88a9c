// Package store persists reward ledgers.
//
// A ledger is a compound keyed by world. Every backend encodes it as little
// endian NBT, the format Bedrock worlds use on disk, so ledgers can be moved
// between backends byte for byte.
package store

import (
	"context"
	"fmt"

	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

// Backend loads and saves ledgers.
type Backend interface {
	// Load returns the ledger stored for world. found is false if nothing
	// has been saved for the world yet.
	Load(ctx context.Context, world string) (data map[string]any, found bool, err error)
	// Save replaces the ledger stored for world.
	Save(ctx context.Context, world string, data map[string]any) error
	// Close releases the backend's resources.
	Close() error
}

// Kinds accepted by Open.
const (
	KindMemory  = "memory"
	KindFile    = "file"
	KindLevelDB = "leveldb"
	KindSQLite  = "sqlite"
)

// Open opens the backend of the given kind rooted at path. path is a
// directory for file and leveldb and a database file for sqlite. It is
// ignored for memory.
func Open(kind, path string) (Backend, error) {
	switch kind {
	case KindMemory, "":
		return NewMemory(), nil
	case KindFile:
		return NewFile(path)
	case KindLevelDB:
		return OpenLevelDB(path)
	case KindSQLite:
		return OpenSQLite(path)
	}
	return nil, fmt.Errorf("store: unknown backend kind %q", kind)
}

func encode(data map[string]any) ([]byte, error) {
	b, err := nbt.MarshalEncoding(data, nbt.LittleEndian)
	if err != nil {
		return nil, fmt.Errorf("store: encode ledger: %w", err)
	}
	return b, nil
}

func decode(b []byte) (map[string]any, error) {
	data := map[string]any{}
	if err := nbt.UnmarshalEncoding(b, &data, nbt.LittleEndian); err != nil {
		return nil, fmt.Errorf("store: decode ledger: %w", err)
	}
	return data, nil
}
