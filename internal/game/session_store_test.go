package game

import (
	"sync"
	"testing"

	"github.com/trivialuned/trivial-bot/internal/domain"
)

func TestSessionStorePutGet(t *testing.T) {
	store := NewSessionStore()

	if _, ok := store.Get(1); ok {
		t.Error("Expected no session for unknown user")
	}

	sess := &GameSession{User: 1, Level: 3, Phase: AwaitingConfirmation}
	store.Put(1, sess)

	got, ok := store.Get(1)
	if !ok {
		t.Fatal("Expected session after Put")
	}
	if got != sess {
		t.Error("Expected the same session pointer back")
	}
	if store.Len() != 1 {
		t.Errorf("Expected length 1, got %d", store.Len())
	}
}

func TestSessionStorePutOverwrites(t *testing.T) {
	store := NewSessionStore()

	store.Put(1, &GameSession{User: 1, Level: 1, Phase: InProgress})
	replacement := &GameSession{User: 1, Level: 1, Phase: AwaitingConfirmation}
	store.Put(1, replacement)

	got, _ := store.Get(1)
	if got != replacement {
		t.Error("Expected Put to replace the existing session")
	}
	if store.Len() != 1 {
		t.Errorf("Expected one session per user, got %d", store.Len())
	}
}

func TestSessionStoreRemoveAbsent(t *testing.T) {
	store := NewSessionStore()

	// Removing a missing session is a no-op.
	store.Remove(99)

	store.Put(1, &GameSession{User: 1})
	store.Remove(1)
	if _, ok := store.Get(1); ok {
		t.Error("Expected session removed")
	}
	if store.Len() != 0 {
		t.Errorf("Expected empty store, got %d", store.Len())
	}
}

func TestSessionStoreConcurrentAccess(t *testing.T) {
	store := NewSessionStore()

	const users = 100
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := domain.UserID(i)
			store.Put(user, &GameSession{User: user})
			if _, ok := store.Get(user); !ok {
				t.Errorf("user %d: session lost", i)
			}
			if i%2 == 0 {
				store.Remove(user)
			}
		}(i)
	}
	wg.Wait()

	if store.Len() != users/2 {
		t.Errorf("Expected %d surviving sessions, got %d", users/2, store.Len())
	}
}

func TestSessionCurrentAndExhausted(t *testing.T) {
	sess := &GameSession{
		Questions: []domain.Question{
			{ID: 1, Prompt: "a"},
			{ID: 2, Prompt: "b"},
		},
	}

	for i := 0; i < 2; i++ {
		q := sess.Current()
		if q == nil || q.ID != int64(i+1) {
			t.Fatalf("cursor %d: unexpected question %+v", i, q)
		}
		if sess.Exhausted() {
			t.Fatalf("cursor %d: not exhausted yet", i)
		}
		sess.Cursor++
	}

	if !sess.Exhausted() {
		t.Error("Expected exhausted after the last question")
	}
	if sess.Current() != nil {
		t.Error("Expected nil current question when exhausted")
	}
}
