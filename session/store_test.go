package session

import (
	"context"
	"errors"
	"testing"

	"github.com/MrEthical07/goGuard/permission"
)

func testIdentity() Identity {
	return Identity{
		ID:          "u-1",
		DisplayName: "Ada",
		Email:       "ada@example.com",
		Role:        "ADMIN",
		Permissions: permission.NewSet("USER_MANAGE", "REPORT_VIEW"),
		Token:       "tok-1",
		Attributes:  map[string]string{"campus": "north"},
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	store := NewStore(backend, "")

	if err := store.Save(ctx, testIdentity()); err != nil {
		t.Fatalf("save: %v", err)
	}

	snap, token, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if token != "tok-1" {
		t.Fatalf("token mismatch: %q", token)
	}
	id := snap.Identity(token)
	if id.Role != "ADMIN" || !id.Permissions.Has("USER_MANAGE") || id.Attributes["campus"] != "north" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestStoreNeverWritesTokenIntoSnapshot(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	store := NewStore(backend, "app.")

	if err := store.Save(ctx, testIdentity()); err != nil {
		t.Fatalf("save: %v", err)
	}
	userKey, _ := store.Keys()
	raw, err := backend.Get(ctx, userKey)
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	snap, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Token != "" {
		t.Fatalf("snapshot must not carry token, got %q", snap.Token)
	}
}

func TestStoreLoadEmpty(t *testing.T) {
	store := NewStore(NewMemoryBackend(), "")
	if _, _, err := store.Load(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestStoreLoadLegacyInlineToken(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	store := NewStore(backend, "")
	userKey, _ := store.Keys()
	_ = backend.Set(ctx, userKey, `{"role":"ADMIN","permissions":["USER_MANAGE"],"token":"abc"}`)

	snap, token, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if token != "abc" || snap.Role != "ADMIN" || snap.Version != snapshotVersionCurrent {
		t.Fatalf("unexpected legacy load: %+v token=%q", snap, token)
	}
}

func TestStoreLoadRejectsMalformedRecords(t *testing.T) {
	cases := []struct {
		name  string
		user  string
		token string
		want  error
	}{
		{"truncated json", `{"role":"ADM`, "abc", ErrSnapshotCorrupt},
		{"missing role", `{"permissions":["X"]}`, "abc", ErrSnapshotInvalid},
		{"future version", `{"v":9,"role":"ADMIN"}`, "abc", ErrSnapshotInvalid},
		{"undefined token", `{"role":"ADMIN"}`, "undefined", ErrTokenPlaceholder},
		{"null token", `{"role":"ADMIN"}`, "null", ErrTokenPlaceholder},
		{"quoted null token", `{"role":"ADMIN"}`, `"null"`, ErrTokenPlaceholder},
		{"snapshot literal null", `null`, "abc", ErrSnapshotCorrupt},
		{"snapshot literal undefined", `undefined`, "abc", ErrSnapshotCorrupt},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			backend := NewMemoryBackend()
			store := NewStore(backend, "")
			userKey, tokenKey := store.Keys()
			_ = backend.Set(ctx, userKey, tc.user)
			_ = backend.Set(ctx, tokenKey, tc.token)

			if _, _, err := store.Load(ctx); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestStoreLoadOrphanTokenAndMissingToken(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	store := NewStore(backend, "")
	userKey, tokenKey := store.Keys()

	_ = backend.Set(ctx, tokenKey, "abc")
	if _, _, err := store.Load(ctx); !errors.Is(err, ErrOrphanToken) {
		t.Fatalf("expected ErrOrphanToken, got %v", err)
	}

	_ = backend.Delete(ctx, tokenKey)
	_ = backend.Set(ctx, userKey, `{"role":"ADMIN"}`)
	if _, _, err := store.Load(ctx); !errors.Is(err, ErrTokenMissing) {
		t.Fatalf("expected ErrTokenMissing, got %v", err)
	}
}

func TestStorePurgeIdempotent(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	store := NewStore(backend, "")
	if err := store.Save(ctx, testIdentity()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Purge(ctx); err != nil {
		t.Fatalf("first purge: %v", err)
	}
	if err := store.Purge(ctx); err != nil {
		t.Fatalf("second purge: %v", err)
	}
	if backend.Len() != 0 {
		t.Fatalf("expected empty backend, got %d keys", backend.Len())
	}
}

func TestStoreSaveRejectsPlaceholderToken(t *testing.T) {
	id := testIdentity()
	id.Token = "undefined"
	if err := NewStore(NewMemoryBackend(), "").Save(context.Background(), id); !errors.Is(err, ErrTokenPlaceholder) {
		t.Fatalf("expected ErrTokenPlaceholder, got %v", err)
	}
}

func TestIsPlaceholderToken(t *testing.T) {
	for _, tok := range []string{"", "  ", "undefined", "null", "NULL", `"undefined"`, ` "null" `} {
		if !IsPlaceholderToken(tok) {
			t.Errorf("%q should be a placeholder", tok)
		}
	}
	for _, tok := range []string{"abc", "nullable", "eyJhbGciOi"} {
		if IsPlaceholderToken(tok) {
			t.Errorf("%q should not be a placeholder", tok)
		}
	}
}
