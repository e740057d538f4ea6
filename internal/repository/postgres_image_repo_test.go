package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/gallery/internal/model"
)

// PostgresImageRepoはImageRepositoryインターフェースを満たすことを検証
func TestPostgresImageRepo_ImplementsInterface(t *testing.T) {
	var _ ImageRepository = (*PostgresImageRepo)(nil)
}

func TestLikeEscaper(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"cat", "cat"},
		{"100%", `100\%`},
		{"my_pic", `my\_pic`},
		{`back\slash`, `back\\slash`},
	}

	for _, tt := range tests {
		if got := likeEscaper.Replace(tt.in); got != tt.want {
			t.Errorf("likeEscaper.Replace(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPostgresImageRepo_CRUD(t *testing.T) {
	db, credTable, imageTable := openTestDB(t)
	creds := NewPostgresCredentialRepo(db, credTable)
	repo := NewPostgresImageRepo(db, imageTable)
	ctx := context.Background()

	if err := creds.InsertUnique(ctx, &model.Credential{Username: "alice", PasswordHash: "h", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("InsertUnique failed: %v", err)
	}

	now := time.Now()
	cat := &model.Image{ID: uuid.New().String(), Src: "/uploads/cat.png", Name: "Sleepy Cat", OwnerID: "alice", CreatedAt: now.Add(-time.Minute)}
	dog := &model.Image{ID: uuid.New().String(), Src: "/uploads/dog.jpg", Name: "100% dog", OwnerID: "alice", CreatedAt: now}
	for _, img := range []*model.Image{cat, dog} {
		if err := repo.Insert(ctx, img); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	t.Run("FindByID", func(t *testing.T) {
		got, err := repo.FindByID(ctx, cat.ID)
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if got == nil || got.Name != "Sleepy Cat" || got.OwnerID != "alice" {
			t.Errorf("unexpected image: %+v", got)
		}

		missing, err := repo.FindByID(ctx, uuid.New().String())
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if missing != nil {
			t.Error("expected nil for missing image")
		}
	})

	t.Run("List all newest first", func(t *testing.T) {
		got, err := repo.List(ctx, "")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(got) != 2 || got[0].ID != dog.ID {
			t.Errorf("unexpected list order: %+v", got)
		}
	})

	t.Run("List with case-insensitive filter", func(t *testing.T) {
		got, err := repo.List(ctx, "cAt")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(got) != 1 || got[0].ID != cat.ID {
			t.Errorf("unexpected filtered list: %+v", got)
		}
	})

	t.Run("List treats percent literally", func(t *testing.T) {
		got, err := repo.List(ctx, "%")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(got) != 1 || got[0].ID != dog.ID {
			t.Errorf("unexpected filtered list: %+v", got)
		}
	})

	t.Run("UpdateName", func(t *testing.T) {
		n, err := repo.UpdateName(ctx, cat.ID, "Awake Cat")
		if err != nil {
			t.Fatalf("UpdateName failed: %v", err)
		}
		if n != 1 {
			t.Errorf("matched = %d, want 1", n)
		}

		got, _ := repo.FindByID(ctx, cat.ID)
		if got.Name != "Awake Cat" || got.OwnerID != "alice" {
			t.Errorf("unexpected image after rename: %+v", got)
		}

		n, err = repo.UpdateName(ctx, uuid.New().String(), "x")
		if err != nil {
			t.Fatalf("UpdateName failed: %v", err)
		}
		if n != 0 {
			t.Errorf("matched = %d, want 0", n)
		}
	})
}
