package store

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// FileName is the name of the ledger file inside a world directory.
const FileName = "titanium_rewards.dat"

// File stores each world's ledger as a gzip compressed NBT file at
// <dir>/<world>/titanium_rewards.dat, next to the world's own data.
type File struct {
	dir string
}

// NewFile returns a file backend rooted at dir, creating it if needed.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, fmt.Errorf("store: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &File{dir: dir}, nil
}

// ErrInvalidWorld is returned for world keys the file backend cannot map to
// a directory of their own.
var ErrInvalidWorld = errors.New("store: invalid world key")

// Path returns the file the ledger of world is written to. world must be a
// single path element.
func (f *File) Path(world string) (string, error) {
	if world == "" || world == "." || world == ".." || strings.ContainsAny(world, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidWorld, world)
	}
	return filepath.Join(f.dir, world, FileName), nil
}

func (f *File) Load(ctx context.Context, world string) (map[string]any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	path, err := f.Path(world)
	if err != nil {
		return nil, false, err
	}
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer file.Close()

	zr, err := gzip.NewReader(bufio.NewReader(file))
	if err != nil {
		return nil, false, fmt.Errorf("store: open %s: %w", file.Name(), err)
	}
	defer zr.Close()

	b, err := io.ReadAll(zr)
	if err != nil {
		return nil, false, fmt.Errorf("store: read %s: %w", file.Name(), err)
	}
	data, err := decode(b)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Save writes the ledger to a temporary file and renames it into place so a
// crash never leaves a truncated ledger behind.
func (f *File) Save(ctx context.Context, world string, data map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := encode(data)
	if err != nil {
		return err
	}
	path, err := f.Path(world)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), FileName+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	zw := gzip.NewWriter(tmp)
	if _, err := zw.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	if err := zw.Close(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (f *File) Close() error { return nil }
