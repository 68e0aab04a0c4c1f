package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sellersoft/shopauth/internal/auth/domain"
	"github.com/sellersoft/shopauth/internal/auth/store"
	"github.com/sellersoft/shopauth/pkg/idx"
)

var (
	ErrUserNotFound = errors.New("user_not_found")
	ErrRoleNotFound = errors.New("role_not_found")
)

// UserService manages the user and role projections tokens are minted
// from. It is deliberately thin: shopauth is not the system of record for
// users, it only needs enough of them to compute scope.
type UserService struct {
	Store store.Store
}

// GetUserByEmail fetches a user with roles and permissions loaded.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// CreateUser inserts a user and links the named roles in one transaction.
// Every role must already exist; an unknown name rolls the whole thing
// back with ErrRoleNotFound.
func (s *UserService) CreateUser(ctx context.Context, email string, roleNames []string) (domain.User, error) {
	now := time.Now().UTC()
	user := domain.User{
		ID:        idx.New().String(),
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}

		for _, name := range roleNames {
			role, err := tx.Roles().GetRoleByName(ctx, name)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("%w: %s", ErrRoleNotFound, name)
				}
				return err
			}
			if err := tx.Users().AssignRole(ctx, user.ID, role.ID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	return s.GetUserByEmail(ctx, email)
}

// EnsureRole creates the role with the given permissions if it does not
// exist yet. Used at startup to seed the fixed role catalogue.
func (s *UserService) EnsureRole(ctx context.Context, name string, permissions []string) error {
	_, err := s.Store.Roles().GetRoleByName(ctx, name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	role := domain.Role{
		ID:   idx.New().String(),
		Name: name,
	}
	for _, p := range permissions {
		role.Permissions = append(role.Permissions, domain.Permission{
			ID:   idx.New().String(),
			Name: p,
		})
	}

	if err := s.Store.Roles().CreateRole(ctx, role); err != nil {
		// A concurrent EnsureRole may have won the race.
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil
		}
		return err
	}

	return nil
}
