package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Devansh171021/swpl/internal/domain/auction"
	"github.com/Devansh171021/swpl/internal/domain/player"
)

func sessionFixture(n int) *auction.Session {
	players := make([]player.Player, 0, n)
	for i := 0; i < n; i++ {
		players = append(players, player.Player{
			ID:        string(rune('a' + i)),
			Name:      "Player " + string(rune('A'+i)),
			Role:      player.RoleBatsman,
			BasePrice: player.DefaultBasePrice,
		})
	}
	return auction.NewSession("sess-1", players, nil)
}

func TestSessionRepository_UpdateWithoutSession(t *testing.T) {
	t.Parallel()

	repo := NewSessionRepository()
	exists, err := repo.Update(context.Background(), func(*auction.Session) error {
		t.Fatal("callback must not run without a session")
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Fatal("expected no current session")
	}
}

func TestSessionRepository_UpdateMutatesInPlace(t *testing.T) {
	t.Parallel()

	repo := NewSessionRepository()
	if err := repo.Save(context.Background(), sessionFixture(3)); err != nil {
		t.Fatalf("save: %v", err)
	}

	exists, err := repo.Update(context.Background(), func(s *auction.Session) error {
		_, err := s.Dispose(auction.StatusUnsold, "", 0)
		return err
	})
	if err != nil || !exists {
		t.Fatalf("update: exists=%v err=%v", exists, err)
	}

	exists, err = repo.Update(context.Background(), func(s *auction.Session) error {
		if len(s.Unsold) != 1 {
			t.Fatalf("expected one unsold disposition, got %d", len(s.Unsold))
		}
		return nil
	})
	if err != nil || !exists {
		t.Fatalf("update: exists=%v err=%v", exists, err)
	}
}

func TestSessionRepository_UpdatePropagatesCallbackError(t *testing.T) {
	t.Parallel()

	repo := NewSessionRepository()
	if err := repo.Save(context.Background(), sessionFixture(1)); err != nil {
		t.Fatalf("save: %v", err)
	}

	sentinel := errors.New("rejected")
	exists, err := repo.Update(context.Background(), func(*auction.Session) error {
		return sentinel
	})
	if !exists {
		t.Fatal("expected current session")
	}
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected callback error, got %v", err)
	}
}

func TestSessionRepository_ConcurrentUpdates(t *testing.T) {
	t.Parallel()

	const queue = 16

	repo := NewSessionRepository()
	if err := repo.Save(context.Background(), sessionFixture(queue)); err != nil {
		t.Fatalf("save: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < queue; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Update(context.Background(), func(s *auction.Session) error {
				if s.Phase != auction.PhaseActive {
					return nil
				}
				_, err := s.Dispose(auction.StatusUnsold, "", 0)
				return err
			})
			if err != nil {
				t.Errorf("update: %v", err)
			}
		}()
	}
	for i := 0; i < queue; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Update(context.Background(), func(s *auction.Session) error {
				_ = len(s.Unsold)
				_ = s.Remaining()
				return nil
			})
			if err != nil {
				t.Errorf("read: %v", err)
			}
		}()
	}
	wg.Wait()

	exists, err := repo.Update(context.Background(), func(s *auction.Session) error {
		if s.Round != 2 {
			t.Fatalf("expected rollover into round 2, got round %d", s.Round)
		}
		if len(s.Players) != queue {
			t.Fatalf("expected %d carried players, got %d", queue, len(s.Players))
		}
		return nil
	})
	if err != nil || !exists {
		t.Fatalf("final read: exists=%v err=%v", exists, err)
	}
}
