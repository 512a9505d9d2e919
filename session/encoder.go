package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	snapshotVersionCurrent = 1
	snapshotVersionLegacy  = 0
)

var (
	// ErrSnapshotCorrupt is returned when a persisted snapshot is not valid JSON.
	ErrSnapshotCorrupt = errors.New("session snapshot corrupt")
	// ErrSnapshotInvalid is returned when a snapshot parses but misses required fields.
	ErrSnapshotInvalid = errors.New("session snapshot invalid")
)

// Encode serializes id into snapshot JSON. The token is never included.
func Encode(id Identity) ([]byte, error) {
	if strings.TrimSpace(string(id.Role)) == "" {
		return nil, fmt.Errorf("%w: role required", ErrSnapshotInvalid)
	}
	snap := Snapshot{
		Version:     snapshotVersionCurrent,
		ID:          id.ID,
		DisplayName: id.DisplayName,
		Email:       id.Email,
		Role:        string(id.Role),
		Permissions: id.Permissions.Keys(),
		Attributes:  id.Attributes,
	}
	return json.Marshal(snap)
}

// Decode parses snapshot JSON. Unparseable input yields [ErrSnapshotCorrupt]; a
// missing role or unknown schema version yields [ErrSnapshotInvalid].
func Decode(data []byte) (*Snapshot, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || IsPlaceholderToken(trimmed) {
		return nil, ErrSnapshotCorrupt
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(trimmed), &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}

	if snap.Version != snapshotVersionCurrent && snap.Version != snapshotVersionLegacy {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrSnapshotInvalid, snap.Version)
	}
	if snap.Version == snapshotVersionLegacy {
		snap.Version = snapshotVersionCurrent
	}
	if strings.TrimSpace(snap.Role) == "" {
		return nil, fmt.Errorf("%w: role missing", ErrSnapshotInvalid)
	}

	return &snap, nil
}

// IsPlaceholderToken reports whether tok is empty or one of the serialization artifacts
// "undefined" and "null", optionally JSON-quoted.
func IsPlaceholderToken(tok string) bool {
	s := strings.TrimSpace(tok)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	switch strings.ToLower(s) {
	case "", "undefined", "null":
		return true
	}
	return false
}
