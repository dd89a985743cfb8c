package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/ensplatform/auth-service/internal/core/domain"
)

var codePattern = regexp.MustCompile(`^\d{6}$`)

func newTestFlow(store *stubChallengeStore, notifier *stubNotifier) *ChallengeFlow {
	return NewChallengeFlow(store, notifier, PurposeLoginOtp, SubjectLoginOtp, 5*time.Minute, testLogger())
}

func TestChallengeFlow_Issue_StoresAndDelivers(t *testing.T) {
	store := newStubChallengeStore()
	notifier := &stubNotifier{}
	flow := newTestFlow(store, notifier)

	if err := flow.Issue(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	sent, ok := notifier.last()
	if !ok {
		t.Fatalf("nothing delivered")
	}
	if sent.destination != "alice@example.com" {
		t.Fatalf("unexpected destination: %s", sent.destination)
	}
	if sent.purpose != SubjectLoginOtp {
		t.Fatalf("unexpected purpose: %s", sent.purpose)
	}
	if !codePattern.MatchString(sent.code) {
		t.Fatalf("expected 6-digit code, got %q", sent.code)
	}

	stored, ok := store.get(PurposeLoginOtp + "alice@example.com")
	if !ok {
		t.Fatalf("code not stored under prefixed key")
	}
	if stored != sent.code {
		t.Fatalf("stored code %q differs from delivered code %q", stored, sent.code)
	}
}

func TestChallengeFlow_Issue_OverwritesPreviousCode(t *testing.T) {
	store := newStubChallengeStore()
	notifier := &stubNotifier{}
	flow := newTestFlow(store, notifier)

	if err := flow.Issue(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("first issue: %v", err)
	}
	first, _ := notifier.last()

	if err := flow.Issue(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("second issue: %v", err)
	}
	second, _ := notifier.last()

	if first.code == second.code {
		t.Skip("codes collided, cannot distinguish overwrite")
	}
	if err := flow.VerifyAndConsume(context.Background(), "alice@example.com", first.code); !errors.Is(err, domain.ErrInvalidChallenge) {
		t.Fatalf("expected superseded code to be refused, got %v", err)
	}
	if err := flow.VerifyAndConsume(context.Background(), "alice@example.com", second.code); err != nil {
		t.Fatalf("latest code refused: %v", err)
	}
}

func TestChallengeFlow_Issue_DeliveryFailure(t *testing.T) {
	store := newStubChallengeStore()
	notifier := &stubNotifier{failWith: errors.New("smtp down")}
	flow := newTestFlow(store, notifier)

	if err := flow.Issue(context.Background(), "alice@example.com"); !errors.Is(err, domain.ErrDeliveryFailure) {
		t.Fatalf("expected ErrDeliveryFailure, got %v", err)
	}
}

func TestChallengeFlow_VerifyAndConsume_SingleUse(t *testing.T) {
	store := newStubChallengeStore()
	notifier := &stubNotifier{}
	flow := newTestFlow(store, notifier)

	if err := flow.Issue(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("issue: %v", err)
	}
	sent, _ := notifier.last()

	if err := flow.VerifyAndConsume(context.Background(), "alice@example.com", sent.code); err != nil {
		t.Fatalf("first verification failed: %v", err)
	}
	if err := flow.VerifyAndConsume(context.Background(), "alice@example.com", sent.code); !errors.Is(err, domain.ErrInvalidChallenge) {
		t.Fatalf("expected second use to fail, got %v", err)
	}
}

func TestChallengeFlow_VerifyAndConsume_WrongCodeDoesNotConsume(t *testing.T) {
	store := newStubChallengeStore()
	notifier := &stubNotifier{}
	flow := newTestFlow(store, notifier)

	if err := flow.Issue(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("issue: %v", err)
	}
	sent, _ := notifier.last()

	wrong := "000000"
	if wrong == sent.code {
		wrong = "000001"
	}
	if err := flow.VerifyAndConsume(context.Background(), "alice@example.com", wrong); !errors.Is(err, domain.ErrInvalidChallenge) {
		t.Fatalf("expected ErrInvalidChallenge, got %v", err)
	}

	// A failed guess must not burn the real code.
	if err := flow.VerifyAndConsume(context.Background(), "alice@example.com", sent.code); err != nil {
		t.Fatalf("valid code refused after wrong guess: %v", err)
	}
}

func TestChallengeFlow_VerifyAndConsume_EmptyCode(t *testing.T) {
	flow := newTestFlow(newStubChallengeStore(), &stubNotifier{})

	if err := flow.VerifyAndConsume(context.Background(), "alice@example.com", ""); !errors.Is(err, domain.ErrInvalidChallenge) {
		t.Fatalf("expected ErrInvalidChallenge, got %v", err)
	}
}

func TestGenerateTempPassword_Recipe(t *testing.T) {
	for i := 0; i < 50; i++ {
		pw, err := GenerateTempPassword()
		if err != nil {
			t.Fatalf("GenerateTempPassword returned error: %v", err)
		}
		if len(pw) != tempPasswordLength {
			t.Fatalf("expected %d characters, got %d (%q)", tempPasswordLength, len(pw), pw)
		}
		var hasUpper, hasDigit, hasSpecial bool
		for i := 0; i < len(pw); i++ {
			switch {
			case pw[i] >= 'A' && pw[i] <= 'Z':
				hasUpper = true
			case pw[i] >= '0' && pw[i] <= '9':
				hasDigit = true
			default:
				for j := 0; j < len(specialCharacters); j++ {
					if pw[i] == specialCharacters[j] {
						hasSpecial = true
					}
				}
			}
		}
		if !hasUpper || !hasDigit || !hasSpecial {
			t.Fatalf("password %q missing a required character class", pw)
		}
	}
}
