package repos_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/outloud-backend/internal/data/repos"
	"github.com/yungbote/outloud-backend/internal/data/repos/testutil"
	"github.com/yungbote/outloud-backend/internal/domain"
	"github.com/yungbote/outloud-backend/internal/pkg/dbctx"
)

func TestUserUniqueUsername(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.WithTx(context.Background(), tx)
	users := repos.NewUserRepo(db, testutil.Logger(t))

	username := "u_" + uuid.NewString()
	hash := "not-a-real-hash"
	if _, err := users.Create(dbc, &domain.User{Username: username, PasswordHash: &hash}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	_, err := users.Create(dbc, &domain.User{Username: username, IsGuest: true})
	if err == nil {
		t.Fatalf("duplicate username should fail")
	}
	if !repos.IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
}

func TestUserGetByUsername(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.WithTx(context.Background(), tx)
	users := repos.NewUserRepo(db, testutil.Logger(t))

	username := "u_" + uuid.NewString()
	created, err := users.Create(dbc, &domain.User{Username: username, IsGuest: true})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	got, err := users.GetByUsername(dbc, username)
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("wrong user returned")
	}

	if _, err := users.GetByUsername(dbc, "nobody_"+uuid.NewString()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}
