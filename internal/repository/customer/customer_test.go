package customer

import (
	"context"
	"errors"
	"testing"

	"cartbuilder/internal/domain"
	"cartbuilder/internal/testutil"
)

func TestPostgres_CreateAndGetByIDs(t *testing.T) {
	ctx := context.Background()
	pool := testutil.Pool(t)
	repo := NewPostgres(pool, nil)

	created, err := repo.Create(ctx, domain.Customer{Email: "Jane@Example.com", FirstName: "Jane", LastName: "Doe"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" || created.Email != "jane@example.com" {
		t.Fatalf("unexpected customer %+v", created)
	}

	got, err := repo.GetByIDs(ctx, created.ID, "missing")
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(got) != 1 || got[0].FullName() != "Jane Doe" {
		t.Fatalf("unexpected customers %+v", got)
	}

	byEmail, err := repo.GetByEmail(ctx, "JANE@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("expected %s, got %s", created.ID, byEmail.ID)
	}
}

func TestPostgres_CreateDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	pool := testutil.Pool(t)
	repo := NewPostgres(pool, nil)

	if _, err := repo.Create(ctx, domain.Customer{Email: "dup@example.com"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := repo.Create(ctx, domain.Customer{Email: "DUP@example.com"})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}
