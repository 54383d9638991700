package repository

import (
	"testing"

	"github.com/hitoshi/mentormatch/internal/model"
)

// PostgresSessionRepoはSessionRepositoryインターフェースを満たすことを検証
func TestPostgresSessionRepo_ImplementsInterface(t *testing.T) {
	var _ SessionRepository = (*PostgresSessionRepo)(nil)
}

// NewPostgresSessionRepoが正しく初期化されることを検証
func TestNewPostgresSessionRepo_Initializes(t *testing.T) {
	repo := NewPostgresSessionRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// セッション状態の定数値が正しいことを検証
func TestSessionStatusValues(t *testing.T) {
	if model.SessionStatusScheduled != "scheduled" {
		t.Errorf("SessionStatusScheduled = %q, want %q", model.SessionStatusScheduled, "scheduled")
	}
	if model.SessionStatusCompleted != "completed" {
		t.Errorf("SessionStatusCompleted = %q, want %q", model.SessionStatusCompleted, "completed")
	}
	if model.SessionStatusPaid != "paid" {
		t.Errorf("SessionStatusPaid = %q, want %q", model.SessionStatusPaid, "paid")
	}
}
