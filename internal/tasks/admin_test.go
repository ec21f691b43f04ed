package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/acervomestre/acervo/internal/models"
	"github.com/acervomestre/acervo/internal/shared"
	th "github.com/acervomestre/acervo/internal/testing"
)

func TestUsers(t *testing.T) {
	ctx := context.Background()

	load := func(t *testing.T, f *fakeCatalog) *Users {
		t.Helper()
		u := NewUsers(f)
		if err := u.Load(ctx); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		return u
	}

	t.Run("Filter", func(t *testing.T) {
		u := load(t, seededCatalog())
		tests := []struct {
			query string
			want  int
		}{
			{"", 3},
			{"ana", 1},
			{"ESCOLA.BR", 3},
			{"bruno@", 1},
			{"zé", 0},
		}
		for _, tt := range tests {
			if got := u.Filter(tt.query); len(got) != tt.want {
				t.Errorf("Filter(%q): expected %d users, got %d", tt.query, tt.want, len(got))
			}
		}
	})

	t.Run("Toggle Active Deactivates", func(t *testing.T) {
		f := seededCatalog()
		u := load(t, f)
		var prompts []string

		if err := u.ToggleStatus(ctx, u.All[0], th.ConfirmFunc(true, &prompts)); err != nil {
			t.Fatalf("toggle failed: %v", err)
		}
		if len(prompts) != 1 || prompts[0] != "Tem certeza que deseja desativar o usuário Ana Souza?" {
			t.Errorf("unexpected prompts %v", prompts)
		}
		if f.called("DeleteUser") != 1 || f.called("ListUsers") != 2 {
			t.Errorf("expected delete then refetch, calls %v", f.calls)
		}
		if u.All[0].Status != models.StatusInactive {
			t.Errorf("expected refetched status Inativo, got %s", u.All[0].Status)
		}
		if u.Processing(7) {
			t.Error("guard should be released")
		}
	})

	t.Run("Toggle Anything Else Restores", func(t *testing.T) {
		for _, idx := range []int{1, 2} {
			f := seededCatalog()
			u := load(t, f)
			user := u.All[idx]
			if got := ToggleAction(user); got != "ativar" {
				t.Errorf("expected ativar for %s, got %s", user.Status, got)
			}
			if err := u.ToggleStatus(ctx, user, nil); err != nil {
				t.Fatal(err)
			}
			if f.called("RestoreUser") != 1 {
				t.Errorf("expected restore for status %s", user.Status)
			}
		}
	})

	t.Run("Declined", func(t *testing.T) {
		f := seededCatalog()
		u := load(t, f)
		if err := u.ToggleStatus(ctx, u.All[0], th.ConfirmFunc(false, nil)); !errors.Is(err, shared.ErrCancelled) {
			t.Fatalf("expected ErrCancelled, got %v", err)
		}
		if f.called("DeleteUser") != 0 {
			t.Error("declined toggle must not call the catalog")
		}
	})

	t.Run("Processing Guard", func(t *testing.T) {
		f := seededCatalog()
		u := load(t, f)
		if err := u.BeginToggle(7); err != nil {
			t.Fatal(err)
		}
		if err := u.ToggleStatus(ctx, u.All[0], nil); !errors.Is(err, shared.ErrBusy) {
			t.Errorf("expected ErrBusy, got %v", err)
		}
		if err := u.ToggleStatus(ctx, u.All[1], nil); err != nil {
			t.Errorf("other users are not blocked: %v", err)
		}
		u.EndToggle(7, nil)
		if u.Processing(7) || len(u.All) != 3 {
			t.Error("EndToggle without listing keeps the directory")
		}
	})

	t.Run("Toggle Failure", func(t *testing.T) {
		f := seededCatalog()
		u := load(t, f)
		f.failOn("DeleteUser", shared.ErrForbidden)
		if err := u.ToggleStatus(ctx, u.All[0], nil); !errors.Is(err, shared.ErrForbidden) {
			t.Fatalf("expected forbidden, got %v", err)
		}
		if u.Processing(7) || u.All[0].Status != models.StatusActive {
			t.Error("failure must release the guard and keep the listing")
		}
	})

	t.Run("Create Validates", func(t *testing.T) {
		f := seededCatalog()
		u := load(t, f)

		_, err := u.Create(ctx, models.UserForm{Name: "Davi", Email: "davi@escola.br"})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected validation error, got %v", err)
		}
		_, err = u.Create(ctx, models.UserForm{Name: "Davi", Email: "davi", Role: models.RoleStudent, BirthDate: "2008-04-01"})
		if !errors.Is(err, shared.ErrInvalidEmail) {
			t.Fatalf("expected invalid email, got %v", err)
		}
		if f.called("CreateUser") != 0 {
			t.Error("invalid forms must not reach the catalog")
		}

		created, err := u.Create(ctx, models.UserForm{Name: " Davi ", Email: "davi@escola.br", Role: models.RoleStudent, BirthDate: "2008-04-01"})
		if err != nil {
			t.Fatal(err)
		}
		if created.Name != "Davi" || len(u.All) != 4 {
			t.Errorf("unexpected create result %+v, %d users", created, len(u.All))
		}
	})

	t.Run("Update Validates", func(t *testing.T) {
		f := seededCatalog()
		u := load(t, f)
		if _, err := u.Update(ctx, 7, models.UserForm{Name: "Ana"}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected validation error, got %v", err)
		}
		updated, err := u.Update(ctx, 7, models.UserForm{Name: "Ana S.", Email: "ana@escola.br", Role: models.RoleCoordinator})
		if err != nil {
			t.Fatal(err)
		}
		if updated.Role != models.RoleCoordinator || f.called("ListUsers") != 2 {
			t.Errorf("unexpected update %+v", updated)
		}
	})
}

func TestTags(t *testing.T) {
	ctx := context.Background()

	load := func(t *testing.T, f *fakeCatalog) *Tags {
		t.Helper()
		tags := NewTags(f)
		if err := tags.Load(ctx); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		return tags
	}

	t.Run("Add", func(t *testing.T) {
		f := seededCatalog()
		tags := load(t, f)
		tag, err := tags.Add(ctx, "  História ")
		if err != nil {
			t.Fatal(err)
		}
		if tag.Name != "História" || len(tags.All) != 4 {
			t.Errorf("unexpected tags %+v", tags.All)
		}
	})

	t.Run("Duplicate Rejected Locally", func(t *testing.T) {
		f := seededCatalog()
		tags := load(t, f)
		for _, name := range []string{"física", "FÍSICA", " Física "} {
			if _, err := tags.Add(ctx, name); !errors.Is(err, shared.ErrDuplicateTag) {
				t.Errorf("Add(%q): expected ErrDuplicateTag, got %v", name, err)
			}
		}
		if _, err := tags.Add(ctx, "   "); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected blank name rejected, got %v", err)
		}
		if f.called("CreateTag") != 0 {
			t.Error("rejected names must not reach the catalog")
		}
	})

	t.Run("Remove", func(t *testing.T) {
		f := seededCatalog()
		tags := load(t, f)
		var prompts []string
		if err := tags.Remove(ctx, 2, th.ConfirmFunc(true, &prompts)); err != nil {
			t.Fatal(err)
		}
		if len(tags.All) != 2 || prompts[0] != DeleteTagPrompt {
			t.Errorf("unexpected state %+v %v", tags.All, prompts)
		}
	})

	t.Run("Remove Rejected Keeps List", func(t *testing.T) {
		f := seededCatalog()
		tags := load(t, f)
		f.failOn("DeleteTag", shared.ErrConflict)
		if err := tags.Remove(ctx, 2, nil); !errors.Is(err, shared.ErrConflict) {
			t.Fatalf("expected conflict, got %v", err)
		}
		if len(tags.All) != 3 {
			t.Errorf("list must stay intact, got %d", len(tags.All))
		}
	})

	t.Run("Remove Declined", func(t *testing.T) {
		f := seededCatalog()
		tags := load(t, f)
		if err := tags.Remove(ctx, 2, th.ConfirmFunc(false, nil)); !errors.Is(err, shared.ErrCancelled) {
			t.Fatalf("expected ErrCancelled, got %v", err)
		}
		if f.called("DeleteTag") != 0 {
			t.Error("declined removal must not reach the catalog")
		}
	})
}
