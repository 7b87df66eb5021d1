package state

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testStores(t *testing.T) map[string]Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  NewRedisStore(client, 0),
	}
}

func TestStores_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			got, err := s.Get(ctx, 1)
			if err != nil {
				t.Fatalf("get empty: %v", err)
			}
			if !got.IsIdle() {
				t.Fatalf("unknown user must be idle, got %+v", got)
			}

			want := Form(7, []string{"Name?", "Phone?"})
			want.Answers = append(want.Answers, "Ann")
			if err := s.Set(ctx, 1, want); err != nil {
				t.Fatalf("set: %v", err)
			}
			got, err = s.Get(ctx, 1)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("want %+v, got %+v", want, got)
			}

			if err := s.Set(ctx, 1, State{}); err != nil {
				t.Fatalf("set idle: %v", err)
			}
			got, _ = s.Get(ctx, 1)
			if !got.IsIdle() {
				t.Fatalf("idle set must clear, got %+v", got)
			}
		})
	}
}

func TestStores_ClearIsPerUser(t *testing.T) {
	ctx := context.Background()
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			_ = s.Set(ctx, 1, Admin(EditingGreetingText, 0))
			_ = s.Set(ctx, 2, Admin(EnteringButtonFormQuestions, 5))
			if err := s.Clear(ctx, 1); err != nil {
				t.Fatalf("clear: %v", err)
			}
			a, _ := s.Get(ctx, 1)
			b, _ := s.Get(ctx, 2)
			if !a.IsIdle() {
				t.Fatalf("user 1 not cleared")
			}
			if b.Kind != EnteringButtonFormQuestions || b.ButtonID != 5 {
				t.Fatalf("user 2 affected: %+v", b)
			}
		})
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	_ = m.Set(ctx, 1, Form(1, []string{"a", "b"}))

	s, _ := m.Get(ctx, 1)
	s.Answers = append(s.Answers, "mutated")
	s.Questions[0] = "changed"

	again, _ := m.Get(ctx, 1)
	if len(again.Answers) != 0 || again.Questions[0] != "a" {
		t.Fatalf("stored state was mutated through a copy: %+v", again)
	}
}

func TestRedisStore_TTL(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := NewRedisStore(client, time.Hour)
	if err := s.Set(ctx, 9, Admin(EditingGreetingPhoto, 0)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ttl := mr.TTL(stateKey(9)); ttl != time.Hour {
		t.Fatalf("want ttl 1h, got %v", ttl)
	}
	mr.FastForward(2 * time.Hour)
	got, err := s.Get(ctx, 9)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.IsIdle() {
		t.Fatalf("expired state must read as idle, got %+v", got)
	}
}

func TestRedisStore_DecodeError(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	if err := mr.Set(stateKey(3), "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := NewRedisStore(client, 0).Get(ctx, 3); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		s    State
		ok   bool
	}{
		{"idle", State{}, true},
		{"form", Form(1, []string{"q"}), true},
		{"form without questions", Form(1, nil), false},
		{"complete form", State{Kind: CollectingForm, Questions: []string{"q"}, Answers: []string{"a"}}, false},
		{"content without button", Admin(EnteringButtonResponseContent, 0), false},
		{"questions with button", Admin(EnteringButtonFormQuestions, 3), true},
		{"greeting", Admin(EditingGreetingText, 0), true},
		{"unknown", State{Kind: "dancing"}, false},
	}
	for _, c := range cases {
		err := c.s.Validate()
		if (err == nil) != c.ok {
			t.Fatalf("%s: ok=%v err=%v", c.name, c.ok, err)
		}
	}
}

func TestIsAdmin(t *testing.T) {
	if Form(1, []string{"q"}).IsAdmin() || (State{}).IsAdmin() {
		t.Fatalf("user states reported as admin")
	}
	if !Admin(ChoosingButtonResponseKind, 1).IsAdmin() {
		t.Fatalf("admin state not detected")
	}
}
