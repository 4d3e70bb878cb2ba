package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/voicedesk/orchestrator/internal/data/redisStore"
	"github.com/voicedesk/orchestrator/internal/domain/callmodel"
)

func newRedisTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(redisStore.NewTestStore(client)), mr
}

func TestRedisStore_Roundtrip(t *testing.T) {
	s, _ := newRedisTestStore(t)
	ctx := context.Background()

	state := callmodel.CallState{
		CallId: "call-42",
		Messages: []callmodel.Message{
			{Role: callmodel.RoleSystem, Content: "prompt", At: time.Now().UTC()},
			{Role: callmodel.RoleUser, Content: "hello", At: time.Now().UTC()},
		},
		LastIntent:     "general_inquiry",
		LastConfidence: 0.4,
		TurnCount:      1,
	}
	if err := s.Put(ctx, state); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, "call-42")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.TurnCount != 1 || got.LastIntent != "general_inquiry" || len(got.Messages) != 2 {
		t.Errorf("state mismatch: %+v", got)
	}
	if got.Messages[1].Content != "hello" {
		t.Errorf("messages mismatch: %+v", got.Messages)
	}
}

func TestRedisStore_MissingCall(t *testing.T) {
	s, _ := newRedisTestStore(t)
	_, err := s.Get(context.Background(), "ghost")
	if !errors.Is(err, ErrCallNotFound) {
		t.Fatalf("err = %v, want ErrCallNotFound", err)
	}
}

func TestRedisStore_ExpiryEndsTheCall(t *testing.T) {
	s, mr := newRedisTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, callmodel.CallState{CallId: "call-ttl", TurnCount: 3}); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(3 * time.Hour)

	if _, err := s.Get(ctx, "call-ttl"); !errors.Is(err, ErrCallNotFound) {
		t.Fatalf("expired call still readable: %v", err)
	}
}

func TestRedisStore_CorruptStateIsDropped(t *testing.T) {
	s, mr := newRedisTestStore(t)
	ctx := context.Background()

	mr.Set(callKey("call-bad"), "{not json")
	if _, err := s.Get(ctx, "call-bad"); !errors.Is(err, ErrCallNotFound) {
		t.Fatalf("corrupt state must read as not-found, got %v", err)
	}
	if mr.Exists(callKey("call-bad")) {
		t.Error("corrupt record must be deleted")
	}
}

func TestRedisStore_DeleteIsIdempotent(t *testing.T) {
	s, _ := newRedisTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, callmodel.CallState{CallId: "call-del"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "call-del"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "call-del"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestMemoryStore_CopiesState(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	state := callmodel.CallState{
		CallId:   "call-copy",
		Messages: []callmodel.Message{{Role: callmodel.RoleUser, Content: "original"}},
	}
	if err := s.Put(ctx, state); err != nil {
		t.Fatal(err)
	}
	state.Messages[0].Content = "mutated"

	got, err := s.Get(ctx, "call-copy")
	if err != nil {
		t.Fatal(err)
	}
	if got.Messages[0].Content != "original" {
		t.Error("stored state must not alias the caller's slices")
	}

	got.Messages[0].Content = "mutated again"
	again, _ := s.Get(ctx, "call-copy")
	if again.Messages[0].Content != "original" {
		t.Error("returned state must not alias the stored record")
	}
}
