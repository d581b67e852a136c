// Package directory implements the business rules for provisioning and
// deprovisioning users on top of a database.DB.
package directory

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/oktasim/internal/database"
)

// ProvisionInput is the validated payload for creating a user.
type ProvisionInput struct {
	Username string
	Email    string
}

// Service applies validation and maps store results to typed errors.
type Service struct {
	db database.DB
}

func New(db database.DB) *Service {
	return &Service{db: db}
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
// It is applied before every lookup and insert so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Provision creates a new user. Nothing is written if validation fails.
func (s *Service) Provision(ctx context.Context, in ProvisionInput) (*database.User, error) {
	username := strings.TrimSpace(in.Username)
	email := NormalizeEmail(in.Email)
	if username == "" || email == "" {
		return nil, InvalidInput(MsgMissingFields, nil)
	}

	_, err := s.db.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, conflict()
	case !errors.Is(err, database.ErrUserNotFound):
		return nil, internal("lookup email", err)
	}

	// the unique index still guards against a concurrent insert between check and create
	user, err := s.db.CreateUser(ctx, username, email)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			return nil, conflict()
		}
		return nil, internal("create user", err)
	}

	log.Info("user provisioned", "id", user.ID, "username", user.Username)
	return user, nil
}

// List returns all users in ID order.
func (s *Service) List(ctx context.Context) ([]database.User, error) {
	users, err := s.db.GetAllUsers(ctx)
	if err != nil {
		return nil, internal("list users", err)
	}
	return users, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*database.User, error) {
	user, err := s.db.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, notFound()
		}
		return nil, internal("get user", err)
	}
	return user, nil
}

// Deprovision deletes the user with the given ID.
func (s *Service) Deprovision(ctx context.Context, id uint) error {
	existed, err := s.db.DeleteUser(ctx, id)
	if err != nil {
		return internal("delete user", err)
	}
	if !existed {
		return notFound()
	}
	log.Info("user deprovisioned", "id", id)
	return nil
}
