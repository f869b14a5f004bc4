package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"campus-events/internal/apperror"
	"campus-events/internal/logger"
	"campus-events/internal/utils"

	"github.com/go-redis/redis/v8"
)

const roleKeyPrefix = "user_roles:"

// RoleCache keeps each user's role list in Redis for a short TTL.
type RoleCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRoleCache(client *redis.Client, ttl time.Duration) *RoleCache {
	return &RoleCache{Client: client, TTL: ttl}
}

// Get returns the cached roles and whether the entry existed.
func (c *RoleCache) Get(ctx context.Context, userID string) ([]string, bool, error) {
	rolesJSON, err := c.Client.Get(ctx, roleKeyPrefix+userID).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get roles from Redis: %w", err)
	}

	var roles []string
	if err := json.Unmarshal([]byte(rolesJSON), &roles); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached roles: %w", err)
	}
	return roles, true, nil
}

// Set caches roles. An empty list is cached too so unprivileged users don't hit the DB each request.
func (c *RoleCache) Set(ctx context.Context, userID string, roles []string) error {
	if roles == nil {
		roles = []string{}
	}
	rolesJSON, err := json.Marshal(roles)
	if err != nil {
		return fmt.Errorf("failed to marshal roles: %w", err)
	}
	if err := c.Client.Set(ctx, roleKeyPrefix+userID, rolesJSON, c.TTL).Err(); err != nil {
		return fmt.Errorf("failed to store roles in Redis: %w", err)
	}
	return nil
}

func (c *RoleCache) Invalidate(ctx context.Context, userID string) error {
	return c.Client.Del(ctx, roleKeyPrefix+userID).Err()
}

// RoleChecker answers whether a user holds at least one of the given roles.
type RoleChecker interface {
	HasAnyRole(ctx context.Context, userID string, roles ...string) (bool, error)
}

// RequireRole must run after Middleware. It answers 403 when the caller holds none of roles.
func RequireRole(checker RoleChecker, log *logger.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := UserID(r.Context())
			if userID == "" {
				utils.WriteError(w, "Authentication required", apperror.Unauthorized("missing identity"))
				return
			}

			ok, err := checker.HasAnyRole(r.Context(), userID, roles...)
			if err != nil {
				log.Error("AUTH", fmt.Sprintf("Role lookup failed for %s: %v", userID, err))
				utils.WriteError(w, "Failed to check permissions", err)
				return
			}
			if !ok {
				log.LogSecurity("FORBIDDEN", fmt.Sprintf("user %s lacks %v for %s %s", userID, roles, r.Method, r.URL.Path))
				utils.WriteError(w, "Insufficient permissions", apperror.Forbidden("insufficient permissions"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
