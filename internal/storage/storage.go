// Package storage persists JSON values under namespaced keys.
//
// Every backend stores a record envelope {value, timestamp, expires}. Reads
// of an expired record remove it and report a miss. Backends never panic
// and never return errors to callers: failures are logged and reported as
// false.
package storage

import (
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// DefaultPrefix namespaces keys when no prefix is configured.
const DefaultPrefix = "swatch_"

// Backend is the key-value interface the persistence middleware writes to.
type Backend interface {
	Get(key string, dest any) bool
	Set(key string, value any) bool
	Remove(key string)
	Clear()
	Has(key string) bool
}

// kv is the raw byte store behind a Store.
type kv interface {
	get(key string) ([]byte, bool, error)
	put(key string, data []byte) error
	del(key string) error
	keys(prefix string) ([]string, error)
	close() error
}

// record is the envelope written for every value.
type record struct {
	Value     json.RawMessage `json:"value"`
	Timestamp int64           `json:"timestamp"`
	Expires   *int64          `json:"expires"`
}

// Store implements Backend on top of a raw kv.
type Store struct {
	kv     kv
	prefix string
	logger *zap.Logger
	now    func() time.Time

	closeOnce sync.Once
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets the key namespace.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithLogger sets the logger used for storage failures.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces the time source used for timestamps and expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func newStore(backend kv, kind string, opts ...Option) *Store {
	s := &Store{
		kv:     backend,
		prefix: DefaultPrefix,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("storage").With(zap.String("backend", kind))
	return s
}

var _ Backend = (*Store)(nil)

// Get decodes the value stored at key into dest.
func (s *Store) Get(key string, dest any) bool {
	data, ok, err := s.kv.get(s.prefix + key)
	if err != nil {
		s.logger.Warn("read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		s.logger.Warn("corrupt record", zap.String("key", key), zap.Error(err))
		return false
	}
	if rec.Expires != nil && s.now().UnixMilli() > *rec.Expires {
		s.Remove(key)
		return false
	}
	if dest == nil {
		return true
	}
	if err := json.Unmarshal(rec.Value, dest); err != nil {
		s.logger.Warn("decode value failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Set stores value at key without expiry.
func (s *Store) Set(key string, value any) bool {
	return s.SetWithTTL(key, value, 0)
}

// SetWithTTL stores value at key; a positive ttl makes it expire.
func (s *Store) SetWithTTL(key string, value any, ttl time.Duration) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("encode value failed", zap.String("key", key), zap.Error(err))
		return false
	}
	now := s.now()
	rec := record{Value: raw, Timestamp: now.UnixMilli()}
	if ttl > 0 {
		exp := now.Add(ttl).UnixMilli()
		rec.Expires = &exp
	}
	data, err := json.Marshal(rec)
	if err != nil {
		s.logger.Warn("encode record failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := s.kv.put(s.prefix+key, data); err != nil {
		s.logger.Warn("write failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Remove deletes key.
func (s *Store) Remove(key string) {
	if err := s.kv.del(s.prefix + key); err != nil {
		s.logger.Warn("remove failed", zap.String("key", key), zap.Error(err))
	}
}

// Has reports whether a live value is stored at key.
func (s *Store) Has(key string) bool {
	return s.Get(key, nil)
}

// Keys lists the un-prefixed keys in the namespace.
func (s *Store) Keys() []string {
	full, err := s.kv.keys(s.prefix)
	if err != nil {
		s.logger.Warn("list keys failed", zap.Error(err))
		return nil
	}
	out := make([]string, 0, len(full))
	for _, k := range full {
		out = append(out, strings.TrimPrefix(k, s.prefix))
	}
	return out
}

// Clear removes every key in the namespace. Keys outside it are untouched.
func (s *Store) Clear() {
	full, err := s.kv.keys(s.prefix)
	if err != nil {
		s.logger.Warn("list keys failed", zap.Error(err))
		return
	}
	for _, k := range full {
		if err := s.kv.del(k); err != nil {
			s.logger.Warn("remove failed", zap.String("key", k), zap.Error(err))
		}
	}
}

// Close releases the underlying backend. It is safe to call more than once.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.kv.close()
	})
	return err
}
