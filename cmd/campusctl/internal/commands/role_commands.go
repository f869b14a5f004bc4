package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"campus-events/internal/auth"
	"campus-events/internal/models"
	profile_db "campus-events/internal/profiles/db"
	profiles "campus-events/internal/profiles/service"

	"github.com/spf13/cobra"
)

const cliActor = "campusctl"

func (e *Env) roleService(ctx context.Context) (*profiles.RoleService, error) {
	db, err := e.DB(ctx)
	if err != nil {
		return nil, err
	}

	// without Redis, cached roles simply expire on their own
	var cache profiles.RoleCacher
	if rdb, err := e.Redis(ctx); err != nil {
		e.Logger.Warn("REDIS", fmt.Sprintf("Role cache unavailable: %v", err))
	} else {
		cache = auth.NewRoleCache(rdb, e.Config.Redis.RoleCacheTTL)
	}

	return profiles.NewRoleService(&profile_db.DB{Bun: db}, cache, e.Logger), nil
}

// InitRoleCommands registers `roles list|grant|revoke`.
func InitRoleCommands(rootCmd *cobra.Command, env *Env) {
	rolesCmd := &cobra.Command{
		Use:   "roles",
		Short: "Manage admin and scanner role grants",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List every role grant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := env.roleService(cmd.Context())
			if err != nil {
				return err
			}
			grants, err := svc.ListGrants(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(env.Out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "USER\tROLE\tGRANTED BY\tGRANTED AT")
			for _, g := range grants {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", g.UserID, g.Role, g.GrantedBy, g.CreatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}

	grantCmd := &cobra.Command{
		Use:   "grant <user-id> <role>",
		Short: "Grant a role to a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := env.roleService(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.Grant(cmd.Context(), models.RoleGrant{UserID: args[0], Role: args[1]}, cliActor); err != nil {
				return err
			}
			env.printf("granted %s to %s\n", args[1], args[0])
			return nil
		},
	}

	revokeCmd := &cobra.Command{
		Use:   "revoke <user-id> <role>",
		Short: "Revoke a role from a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := env.roleService(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.Revoke(cmd.Context(), models.RoleGrant{UserID: args[0], Role: args[1]}, cliActor); err != nil {
				return err
			}
			env.printf("revoked %s from %s\n", args[1], args[0])
			return nil
		},
	}

	rolesCmd.AddCommand(listCmd, grantCmd, revokeCmd)
	rootCmd.AddCommand(rolesCmd)
}
