package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/materiku/materiku-backend/internal/authz"
	"github.com/materiku/materiku-backend/internal/model"
	"github.com/materiku/materiku-backend/internal/repository"
	"github.com/materiku/materiku-backend/internal/response"
	"github.com/rs/zerolog"
)

// User management errors.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email is already registered")
	ErrRoleNotFound = errors.New("role not found")
)

// UserService handles registration, user administration, and password changes.
type UserService struct {
	userRepo *repository.UserRepository
	roleRepo *repository.RoleRepository
	auth     *AuthService
	perms    *authz.PermissionService
	log      zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo *repository.UserRepository, roleRepo *repository.RoleRepository, auth *AuthService, perms *authz.PermissionService, log zerolog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		auth:     auth,
		perms:    perms,
		log:      log.With().Str("component", "user_service").Logger(),
	}
}

// Register creates a new account and grants the default student role.
func (s *UserService) Register(ctx context.Context, email, name, password string) (*model.User, error) {
	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	student, err := s.roleRepo.GetRoleByName(ctx, model.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("lookup student role: %w", err)
	}
	if student != nil {
		if err := s.userRepo.GrantRole(ctx, user.ID, student.ID); err != nil {
			return nil, fmt.Errorf("grant default role: %w", err)
		}
	} else {
		// Seeding has not run; the account still works, it just starts with
		// no role at all.
		s.log.Warn().Int("user_id", user.ID).Msg("Student role missing, user registered without a role")
	}

	s.log.Info().Int("user_id", user.ID).Str("email", email).Msg("User registered")
	return s.userRepo.GetByID(ctx, user.ID)
}

// Get retrieves a user with roles and capabilities.
func (s *UserService) Get(ctx context.Context, id int) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// List retrieves users with pagination.
func (s *UserService) List(ctx context.Context, page, perPage int) ([]model.User, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	users, total, err := s.userRepo.ListPaginated(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if users == nil {
		users = []model.User{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return users, pagination, nil
}

// GrantRole assigns a role to a user.
func (s *UserService) GrantRole(ctx context.Context, actor *model.User, userID, roleID int) error {
	if err := s.perms.Authorize(actor, authz.ActionManageUserRoles, 0); err != nil {
		return err
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}
	if _, err := s.roleRepo.GetRoleByID(ctx, roleID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("get role: %w", err)
	}

	if err := s.userRepo.GrantRole(ctx, userID, roleID); err != nil {
		return fmt.Errorf("grant role: %w", err)
	}

	s.log.Info().
		Int("user_id", userID).
		Int("role_id", roleID).
		Int("granted_by", actor.ID).
		Msg("Role granted")
	return nil
}

// RevokeRole removes a role from a user. Takes effect on the holder's next
// request since capabilities are loaded per call.
func (s *UserService) RevokeRole(ctx context.Context, actor *model.User, userID, roleID int) error {
	if err := s.perms.Authorize(actor, authz.ActionManageUserRoles, 0); err != nil {
		return err
	}

	if err := s.userRepo.RevokeRole(ctx, userID, roleID); err != nil {
		return fmt.Errorf("revoke role: %w", err)
	}

	s.log.Info().
		Int("user_id", userID).
		Int("role_id", roleID).
		Int("revoked_by", actor.ID).
		Msg("Role revoked")
	return nil
}

// ChangePassword replaces the target user's password. Strictly owner-only:
// holding every capability in the catalog does not let an administrator
// change someone else's password.
func (s *UserService) ChangePassword(ctx context.Context, actor *model.User, targetID int, oldPassword, newPassword string) error {
	if err := s.perms.Authorize(actor, authz.ActionChangePassword, targetID); err != nil {
		return err
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}

	if err := s.auth.CheckPassword(target.PasswordHash, oldPassword); err != nil {
		return err
	}

	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, targetID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	// Force re-login everywhere after a password change.
	if err := s.auth.Logout(ctx, targetID); err != nil {
		s.log.Warn().Err(err).Int("user_id", targetID).Msg("Failed to drop session after password change")
	}

	s.log.Info().Int("user_id", targetID).Msg("Password changed")
	return nil
}
