package storage

import (
	"context"
	"errors"

	"github.com/DoyleJ11/mapveto-backend/internal/engine"
)

// DefaultKey is the key the default session persists under. The file store
// turns it into vetoresult.json, the file OBS reads.
const DefaultKey = "vetoresult"

var (
	ErrNotFound   = errors.New("not found")
	ErrInvalidKey = errors.New("invalid storage key")
)

type Loader interface {
	Load(ctx context.Context, key string) (*engine.VetoRecord, error)
}

type Saver interface {
	// Save stores rec under key. A nil rec records "no active veto".
	Save(ctx context.Context, key string, rec *engine.VetoRecord) error
}

type Store interface {
	Loader
	Saver
}
