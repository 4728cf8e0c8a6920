package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/DoyleJ11/mapveto-backend/internal/engine"
)

// FileStore keeps one indented JSON file per key inside dir.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) *FileStore { return &FileStore{dir: dir} }

// path rejects keys that are not a plain file name, so no key can land on
// another key's file.
func (s *FileStore) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || filepath.Base(key) != key {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

func (s *FileStore) Save(ctx context.Context, key string, rec *engine.VetoRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := s.path(key)
	if err != nil {
		return err
	}

	var payload []byte
	if rec == nil {
		payload = []byte("{}\n")
	} else {
		b, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		payload = append(b, '\n')
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Write next to the target and rename so OBS never reads half a file.
	tmp, err := os.CreateTemp(s.dir, ".tmp-"+key+"-*")
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Load returns ErrNotFound when the file is missing or holds an empty object.
func (s *FileStore) Load(ctx context.Context, key string) (*engine.VetoRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target, err := s.path(key)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	b, err := os.ReadFile(target)
	s.mu.Unlock()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return decodeRecord(b)
}

// decodeRecord treats null, {} and blank input as "no record".
func decodeRecord(b []byte) (*engine.VetoRecord, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil, ErrNotFound
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrNotFound
	}

	var rec engine.VetoRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &rec, nil
}

// DecodeRecord parses a state payload the way the HTTP API and the stores
// see it: an empty object means no active veto and yields (nil, nil).
func DecodeRecord(b []byte) (*engine.VetoRecord, error) {
	rec, err := decodeRecord(b)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return rec, err
}
