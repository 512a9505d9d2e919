package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoSession is returned by [Store.Load] when nothing is persisted.
	ErrNoSession = errors.New("no persisted session")
	// ErrTokenMissing is returned when a snapshot exists without any token.
	ErrTokenMissing = errors.New("session token missing")
	// ErrTokenPlaceholder is returned when the persisted token is a serialization artifact.
	ErrTokenPlaceholder = errors.New("session token is a placeholder")
	// ErrOrphanToken is returned when a token is persisted without its snapshot.
	ErrOrphanToken = errors.New("session token without snapshot")
)

const (
	defaultPrefix = "goguard."
	userSuffix    = "user"
	tokenSuffix   = "token"
)

// Store reads and writes the two-entry session record through a Backend.
type Store struct {
	backend  Backend
	userKey  string
	tokenKey string
}

// NewStore creates a Store over backend. prefix namespaces the two keys; an empty
// prefix selects "goguard.".
func NewStore(backend Backend, prefix string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{
		backend:  backend,
		userKey:  prefix + userSuffix,
		tokenKey: prefix + tokenSuffix,
	}
}

// Keys returns the snapshot and token keys.
func (s *Store) Keys() (userKey, tokenKey string) {
	return s.userKey, s.tokenKey
}

// Load reads the persisted record. It returns [ErrNoSession] when neither entry
// exists. Any other error means the record is unusable and should be purged.
func (s *Store) Load(ctx context.Context) (*Snapshot, string, error) {
	rawUser, userErr := s.backend.Get(ctx, s.userKey)
	if userErr != nil && !errors.Is(userErr, ErrNotFound) {
		return nil, "", userErr
	}
	token, tokenErr := s.backend.Get(ctx, s.tokenKey)
	if tokenErr != nil && !errors.Is(tokenErr, ErrNotFound) {
		return nil, "", tokenErr
	}

	userMissing := errors.Is(userErr, ErrNotFound)
	tokenMissing := errors.Is(tokenErr, ErrNotFound)

	switch {
	case userMissing && tokenMissing:
		return nil, "", ErrNoSession
	case userMissing:
		return nil, "", ErrOrphanToken
	}

	snap, err := Decode([]byte(rawUser))
	if err != nil {
		return nil, "", err
	}

	if tokenMissing {
		token = snap.Token
		if strings.TrimSpace(token) == "" {
			return nil, "", ErrTokenMissing
		}
	}
	snap.Token = ""

	if IsPlaceholderToken(token) {
		return nil, "", ErrTokenPlaceholder
	}

	return snap, strings.TrimSpace(token), nil
}

// Save persists id. The token goes to its own entry and never into the snapshot.
func (s *Store) Save(ctx context.Context, id Identity) error {
	if IsPlaceholderToken(id.Token) {
		return ErrTokenPlaceholder
	}
	data, err := Encode(id)
	if err != nil {
		return err
	}

	if batch, ok := s.backend.(BatchSetter); ok {
		return batch.SetBatch(ctx, map[string]string{
			s.userKey:  string(data),
			s.tokenKey: id.Token,
		})
	}

	if err := s.backend.Set(ctx, s.userKey, string(data)); err != nil {
		return err
	}
	if err := s.backend.Set(ctx, s.tokenKey, id.Token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	return nil
}

// Purge removes both entries. Purging an empty store is not an error.
func (s *Store) Purge(ctx context.Context) error {
	return s.backend.Delete(ctx, s.userKey, s.tokenKey)
}
