package storage

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
)

// Backend kinds accepted by Open.
const (
	KindMemory = "memory"
	KindFile   = "file"
	KindBadger = "badger"
)

// Open builds the backend named by kind rooted at dir.
func Open(kind, dir, prefix string, logger *zap.Logger) (*Store, error) {
	opts := []Option{WithPrefix(prefix), WithLogger(logger)}
	switch kind {
	case KindMemory, "":
		return NewMemory(opts...), nil
	case KindFile:
		return NewFile(dir, opts...)
	case KindBadger:
		return NewBadger(BadgerConfig{Path: filepath.Join(dir, "badger"), Logger: logger}, opts...)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}
}
