package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*AppSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewAppSessionStore(rdb, time.Hour), mr
}

func TestAppSessionCreateGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, "sid-1", "op-1"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	as, err := store.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if as.OperatorID != "op-1" {
		t.Errorf("OperatorID = %q, want op-1", as.OperatorID)
	}
	if as.ExpiresAt <= as.IssuedAt {
		t.Errorf("ExpiresAt %d should be after IssuedAt %d", as.ExpiresAt, as.IssuedAt)
	}

	if _, err := store.Get(ctx, "no-such"); err == nil {
		t.Error("Get unknown session should fail")
	}
}

func TestAppSessionDelete(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, "sid-1", "op-1"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Delete(ctx, "sid-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "sid-1"); err == nil {
		t.Error("session still readable after Delete")
	}
	// 账号的会话集合里也要摘掉
	if ids, _ := mr.SMembers("kc:op_sessions:op-1"); len(ids) != 0 {
		t.Errorf("op set still has %v", ids)
	}
}

func TestAppSessionTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, "sid-1", "op-1"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	mr.FastForward(2 * time.Hour)
	if _, err := store.Get(ctx, "sid-1"); err == nil {
		t.Error("session should expire with the TTL")
	}
}

func TestRevokeAllForOperator(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for _, sid := range []string{"a", "b", "c"} {
		if err := store.Create(ctx, sid, "op-1"); err != nil {
			t.Fatalf("Create %s: %v", sid, err)
		}
	}
	if err := store.Create(ctx, "other", "op-2"); err != nil {
		t.Fatalf("Create other: %v", err)
	}

	if err := store.RevokeAllForOperator(ctx, "op-1"); err != nil {
		t.Fatalf("RevokeAllForOperator: %v", err)
	}

	for _, sid := range []string{"a", "b", "c"} {
		if _, err := store.Get(ctx, sid); err == nil {
			t.Errorf("session %s survived revoke", sid)
		}
	}
	// 别的账号不受影响
	if _, err := store.Get(ctx, "other"); err != nil {
		t.Errorf("unrelated session revoked: %v", err)
	}
}
