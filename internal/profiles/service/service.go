package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campus-events/internal/apperror"
	"campus-events/internal/logger"
	"campus-events/internal/models"
	"campus-events/internal/validation"
)

type ProfileDBLayer interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	CreateProfile(ctx context.Context, profile *models.Profile) error
	UpdateProfile(ctx context.Context, profile *models.Profile) error
}

type RoleDBLayer interface {
	ListRoles(ctx context.Context, userID string) ([]string, error)
	ListRoleGrants(ctx context.Context) ([]models.UserRole, error)
	GrantRole(ctx context.Context, grant *models.UserRole) error
	RevokeRole(ctx context.Context, userID, role string) error
}

// RoleCacher is satisfied by auth.RoleCache.
type RoleCacher interface {
	Get(ctx context.Context, userID string) ([]string, bool, error)
	Set(ctx context.Context, userID string, roles []string) error
	Invalidate(ctx context.Context, userID string) error
}

type ProfileService struct {
	DB     ProfileDBLayer
	Logger *logger.Logger
	Now    func() time.Time
}

func NewProfileService(db ProfileDBLayer, log *logger.Logger) *ProfileService {
	return &ProfileService{DB: db, Logger: log, Now: func() time.Time { return time.Now().UTC() }}
}

// GetOrCreate returns the caller's profile, seeding it from token claims on first access.
func (s *ProfileService) GetOrCreate(ctx context.Context, claims *models.Claims) (*models.Profile, error) {
	if claims == nil || claims.Subject == "" {
		return nil, apperror.Unauthorized("missing identity")
	}

	profile, err := s.DB.GetProfile(ctx, claims.Subject)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	name := strings.TrimSpace(claims.Name)
	if name == "" {
		name, _, _ = strings.Cut(claims.Email, "@")
	}
	profile = &models.Profile{
		UserID:    claims.Subject,
		FullName:  name,
		Email:     claims.Email,
		CreatedAt: s.Now(),
	}
	if err := s.DB.CreateProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	s.Logger.LogDatabase("INSERT", "profiles", claims.Subject)

	// a concurrent first request may have won the insert
	return s.DB.GetProfile(ctx, claims.Subject)
}

func (s *ProfileService) Update(ctx context.Context, claims *models.Claims, update models.ProfileUpdate) (*models.Profile, error) {
	if err := validation.Struct(update); err != nil {
		return nil, err
	}
	profile, err := s.GetOrCreate(ctx, claims)
	if err != nil {
		return nil, err
	}

	profile.FullName = strings.TrimSpace(update.FullName)
	profile.Department = strings.TrimSpace(update.Department)
	profile.Year = update.Year
	profile.AvatarURL = update.AvatarURL
	profile.Bio = update.Bio
	profile.UpdatedAt = s.Now()

	if err := s.DB.UpdateProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile, nil
}

// RoleService resolves roles through the cache and falls back to the user_roles table.
type RoleService struct {
	DB     RoleDBLayer
	Cache  RoleCacher
	Logger *logger.Logger
	Now    func() time.Time
}

func NewRoleService(db RoleDBLayer, cache RoleCacher, log *logger.Logger) *RoleService {
	return &RoleService{DB: db, Cache: cache, Logger: log, Now: func() time.Time { return time.Now().UTC() }}
}

// Roles returns userID's roles. Cache failures are logged and the table is read instead.
func (s *RoleService) Roles(ctx context.Context, userID string) ([]string, error) {
	if s.Cache != nil {
		roles, ok, err := s.Cache.Get(ctx, userID)
		if err != nil {
			s.Logger.Warn("AUTH", fmt.Sprintf("Role cache read failed for %s: %v", userID, err))
		} else if ok {
			return roles, nil
		}
	}

	roles, err := s.DB.ListRoles(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, userID, roles); err != nil {
			s.Logger.Warn("AUTH", fmt.Sprintf("Role cache write failed for %s: %v", userID, err))
		}
	}
	return roles, nil
}

func (s *RoleService) HasAnyRole(ctx context.Context, userID string, roles ...string) (bool, error) {
	held, err := s.Roles(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, h := range held {
		for _, want := range roles {
			if h == want {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *RoleService) ListGrants(ctx context.Context) ([]models.UserRole, error) {
	return s.DB.ListRoleGrants(ctx)
}

func (s *RoleService) Grant(ctx context.Context, grant models.RoleGrant, grantedBy string) error {
	if err := validation.Struct(grant); err != nil {
		return err
	}
	err := s.DB.GrantRole(ctx, &models.UserRole{
		UserID:    grant.UserID,
		Role:      grant.Role,
		GrantedBy: grantedBy,
		CreatedAt: s.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to grant role: %w", err)
	}
	s.invalidate(ctx, grant.UserID)
	s.Logger.LogSecurity("ROLE_GRANTED", fmt.Sprintf("%s granted %s to %s", grantedBy, grant.Role, grant.UserID))
	return nil
}

func (s *RoleService) Revoke(ctx context.Context, grant models.RoleGrant, revokedBy string) error {
	if err := validation.Struct(grant); err != nil {
		return err
	}
	if err := s.DB.RevokeRole(ctx, grant.UserID, grant.Role); err != nil {
		return err
	}
	s.invalidate(ctx, grant.UserID)
	s.Logger.LogSecurity("ROLE_REVOKED", fmt.Sprintf("%s revoked %s from %s", revokedBy, grant.Role, grant.UserID))
	return nil
}

func (s *RoleService) invalidate(ctx context.Context, userID string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx, userID); err != nil {
		s.Logger.Warn("AUTH", fmt.Sprintf("Role cache invalidation failed for %s: %v", userID, err))
	}
}
