package service

import (
	"errors"
	"testing"
	"time"

	"eduquiz_backend/internal/model"
	"eduquiz_backend/internal/util"

	"gorm.io/gorm"
)

func inProgressAttempt(userID, quizID uint) *model.QuizAttempt {
	active := uint8(1)
	a := &model.QuizAttempt{
		QuizID:      quizID,
		UserID:      userID,
		ActiveToken: &active,
		StartedAt:   time.Now().Add(-10 * time.Minute),
	}
	a.ID = 7
	return a
}

func TestCheckSubmitPreconditions(t *testing.T) {
	t.Run("owner with in-progress attempt passes", func(t *testing.T) {
		if err := checkSubmitPreconditions(inProgressAttempt(100, 1), 100); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("foreign attempt rejected", func(t *testing.T) {
		err := checkSubmitPreconditions(inProgressAttempt(100, 1), 200)
		if !errors.Is(err, util.ErrAttemptForbidden) {
			t.Fatalf("err = %v, want ErrAttemptForbidden", err)
		}
	})

	t.Run("completed attempt rejected and score untouched", func(t *testing.T) {
		a := inProgressAttempt(100, 1)
		done := time.Now()
		score := 42.0
		a.CompletedAt = &done
		a.Score = &score
		a.ActiveToken = nil

		err := checkSubmitPreconditions(a, 100)
		if !errors.Is(err, util.ErrAttemptCompleted) {
			t.Fatalf("err = %v, want ErrAttemptCompleted", err)
		}
		if a.Score == nil || *a.Score != 42.0 {
			t.Errorf("score changed to %v, second submit must not touch it", a.Score)
		}
	})

	t.Run("ownership checked before completion", func(t *testing.T) {
		a := inProgressAttempt(100, 1)
		done := time.Now()
		a.CompletedAt = &done

		err := checkSubmitPreconditions(a, 200)
		if !errors.Is(err, util.ErrAttemptForbidden) {
			t.Fatalf("err = %v, want ErrAttemptForbidden", err)
		}
	})
}

func TestAbandonAttempt(t *testing.T) {
	a := inProgressAttempt(100, 1)
	now := time.Now()

	abandonAttempt(a, now)

	if a.CompletedAt == nil || !a.CompletedAt.Equal(now) {
		t.Errorf("CompletedAt = %v, want %v", a.CompletedAt, now)
	}
	if a.Score == nil || *a.Score != 0 {
		t.Errorf("Score = %v, abandoned attempts score zero", a.Score)
	}
	if !a.Abandoned {
		t.Error("Abandoned flag not set")
	}
	if a.ActiveToken != nil {
		t.Error("ActiveToken must be cleared so a new attempt can take the unique slot")
	}
	if a.InProgress() {
		t.Error("abandoned attempt must not count as in progress")
	}
}

func TestRemainingAttempts(t *testing.T) {
	tests := []struct {
		name        string
		maxAttempts int
		used        int64
		want        int
	}{
		{"unlimited", 0, 5, -1},
		{"negative treated as unlimited", -1, 5, -1},
		{"none used", 3, 0, 3},
		{"some used", 3, 2, 1},
		{"exhausted", 3, 3, 0},
		{"over limit clamps to zero", 3, 7, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := remainingAttempts(tt.maxAttempts, tt.used); got != tt.want {
				t.Errorf("remainingAttempts(%d, %d) = %d, want %d", tt.maxAttempts, tt.used, got, tt.want)
			}
		})
	}
}

func TestIsDuplicateKeyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"gorm duplicated key", gorm.ErrDuplicatedKey, true},
		{"mysql duplicate entry text", errors.New("Error 1062: Duplicate entry '1-2-1' for key 'uniq_active_attempt'"), true},
		{"unrelated error", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDuplicateKeyError(tt.err); got != tt.want {
				t.Errorf("isDuplicateKeyError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestEncodeStringSlice(t *testing.T) {
	if got := encodeStringSlice(nil); got != "[]" {
		t.Errorf("nil slice = %q, want []", got)
	}
	if got := encodeStringSlice([]string{"a", "b"}); got != `["a","b"]` {
		t.Errorf("encoded = %q", got)
	}
}
