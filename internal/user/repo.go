package user

import (
	"context"
	"errors"
	"fmt"

	"gatekeeper/internal/db"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// Store is the credential store the auth flow depends on.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, u *User) error
}

type Repo struct {
	Pool *db.Pool
}

func NewRepo(pool *db.Pool) *Repo {
	return &Repo{Pool: pool}
}

func (r *Repo) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *Repo) FindByID(ctx context.Context, id string) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return r.first(ctx, "id = ?", id)
}

func (r *Repo) first(ctx context.Context, query string, arg any) (*User, error) {
	gdb, err := r.Pool.Get(ctx)
	if err != nil {
		return nil, err
	}

	var u User
	if err := gdb.Where(query, arg).Take(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// Create inserts u. The unique index on email is the authority for duplicates.
func (r *Repo) Create(ctx context.Context, u *User) error {
	gdb, err := r.Pool.Get(ctx)
	if err != nil {
		return err
	}

	if err := gdb.Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation"
}
