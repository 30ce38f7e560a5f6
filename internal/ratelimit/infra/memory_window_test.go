package infra

import (
	"context"
	"testing"
	"time"

	"listing-directory/internal/ratelimit/domain"
)

const hour = 3600000 * time.Millisecond

func TestMemoryWindow_TenthAllowedEleventhDenied(t *testing.T) {
	s := NewMemoryWindow()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 1; i <= 10; i++ {
		dec, err := s.Allow(ctx, "1.2.3.4", 10, hour, base.Add(time.Duration(i)*time.Minute))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !dec.Allowed {
			t.Fatalf("expected request %d to be allowed", i)
		}
		if dec.Remaining != 10-i {
			t.Fatalf("expected remaining %d, got %d", 10-i, dec.Remaining)
		}
	}

	dec, _ := s.Allow(ctx, "1.2.3.4", 10, hour, base.Add(11*time.Minute))
	if dec.Allowed {
		t.Fatalf("expected 11th request to be denied")
	}
	// a primeira entrou em base+1m, então sai da janela em base+61m
	if dec.RetryAfter != 50*time.Minute {
		t.Fatalf("expected RetryAfter=50m, got %s", dec.RetryAfter)
	}
	if got := s.Count("1.2.3.4"); got != 10 {
		t.Fatalf("denied attempt must not be recorded, got %d entries", got)
	}
}

func TestMemoryWindow_OldEntriesLeaveTheWindow(t *testing.T) {
	s := NewMemoryWindow()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		if dec, _ := s.Allow(ctx, "k", 2, hour, base); !dec.Allowed {
			t.Fatalf("expected allowed")
		}
	}
	if dec, _ := s.Allow(ctx, "k", 2, hour, base.Add(hour-time.Millisecond)); dec.Allowed {
		t.Fatalf("expected denial inside the window")
	}
	// exatamente uma janela depois os registros antigos não contam mais
	if dec, _ := s.Allow(ctx, "k", 2, hour, base.Add(hour)); !dec.Allowed {
		t.Fatalf("expected allowed once the old entries expired")
	}
}

func TestMemoryWindow_KeysAreIndependent(t *testing.T) {
	s := NewMemoryWindow()
	ctx := context.Background()
	now := time.Now()

	if dec, _ := s.Allow(ctx, "a", 1, hour, now); !dec.Allowed {
		t.Fatalf("expected a allowed")
	}
	if dec, _ := s.Allow(ctx, "b", 1, hour, now); !dec.Allowed {
		t.Fatalf("expected b allowed")
	}
	if dec, _ := s.Allow(ctx, "a", 1, hour, now); dec.Allowed {
		t.Fatalf("expected a denied")
	}
}

func TestMemoryWindow_CleanupRemovesIdleKeysButRespectsWindow(t *testing.T) {
	s := NewMemoryWindow(WithIdleTTL(time.Minute), WithCleanupEvery(0))
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, _ = s.Allow(ctx, domain.Key("k"), 10, hour, base)

	// idleTTL é 1m, mas a janela é 1h: a chave precisa continuar
	s.Cleanup(base.Add(30 * time.Minute))
	if s.Count("k") != 1 {
		t.Fatalf("expected key to survive while inside the window")
	}

	s.Cleanup(base.Add(hour + time.Second))
	if s.Count("k") != 0 {
		t.Fatalf("expected idle key to be removed")
	}
}

func TestMemoryWindow_StartJanitorStopsWithContext(t *testing.T) {
	s := NewMemoryWindow(WithCleanupEvery(time.Millisecond), WithIdleTTL(time.Nanosecond))
	ctx, cancel := context.WithCancel(context.Background())
	s.StartJanitor(ctx)
	cancel()
}
