package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/medcamp/medcamp/internal/config"
	"github.com/medcamp/medcamp/internal/domain/user"
	"github.com/medcamp/medcamp/internal/platform/auth"
	"github.com/medcamp/medcamp/internal/platform/db"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			schema, dir := migrationTarget(cmd, cfg)

			ctx := cmd.Context()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Running migrations from %s on schema: %s\n", dir, schema)
			count, err := db.NewMigrator(pool, dir).Up(ctx, schema)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	addMigrationFlags(upCmd)
	cmd.AddCommand(upCmd)

	// migrate status
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			schema, dir := migrationTarget(cmd, cfg)

			ctx := cmd.Context()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx, schema)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migration status for schema: %s\n", schema)
			printMigrationStatus(cmd.OutOrStdout(), statuses)
			return nil
		},
	}
	addMigrationFlags(statusCmd)
	cmd.AddCommand(statusCmd)

	return cmd
}

func addMigrationFlags(cmd *cobra.Command) {
	cmd.Flags().String("schema", "", "Target schema (default DB_SCHEMA)")
	cmd.Flags().String("dir", "", "Path to migrations directory (default MIGRATIONS_DIR)")
}

func migrationTarget(cmd *cobra.Command, cfg *config.Config) (schema, dir string) {
	schema, _ = cmd.Flags().GetString("schema")
	dir, _ = cmd.Flags().GetString("dir")
	if schema == "" {
		schema = cfg.DBSchema
	}
	if dir == "" {
		dir = cfg.MigrationsDir
	}
	return schema, dir
}

func printMigrationStatus(w io.Writer, statuses []db.MigrationStatus) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tNAME\tSTATUS\tAPPLIED AT")
	for _, s := range statuses {
		status, appliedAt := "pending", ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.Version, s.Name, status, appliedAt)
	}
	tw.Flush()
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			mobile, _ := cmd.Flags().GetString("mobile")
			password, _ := cmd.Flags().GetString("password")
			roleName, _ := cmd.Flags().GetString("role")
			email, _ := cmd.Flags().GetString("email")

			if password == "" {
				password = os.Getenv("MEDCAMP_USER_PASSWORD")
			}
			role, err := auth.ParseRole(roleName)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := user.NewService(user.NewRepo(pool), nil, nil, newLogger(cfg), nil)
			roleID, err := lookupRoleID(ctx, svc, role)
			if err != nil {
				return err
			}

			nu := &user.NewUser{Username: username, Mobile: mobile, Password: password, RoleID: roleID}
			if email != "" {
				nu.Email = &email
			}
			id, err := svc.Create(ctx, nu)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s user %q with id %d\n", role, username, id)
			return nil
		},
	}
	createCmd.Flags().String("username", "", "Login name")
	createCmd.Flags().String("mobile", "", "Mobile number, also accepted as login")
	createCmd.Flags().String("password", "", "Password (default $MEDCAMP_USER_PASSWORD)")
	createCmd.Flags().String("role", string(auth.RoleAdmin), "admin, doctor or user")
	createCmd.Flags().String("email", "", "Optional email address")
	_ = createCmd.MarkFlagRequired("username")
	_ = createCmd.MarkFlagRequired("mobile")

	cmd.AddCommand(createCmd)
	return cmd
}

func lookupRoleID(ctx context.Context, svc *user.Service, role auth.Role) (int, error) {
	roles, err := svc.Roles(ctx)
	if err != nil {
		return 0, err
	}
	for _, r := range roles {
		if r.Name == role {
			return r.ID, nil
		}
	}
	return 0, fmt.Errorf("role %q is not seeded; run migrate up first", role)
}

func verifyDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-db",
		Short: "Check that every core table exists and print its row count",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			counts := db.CountRows(ctx, pool, db.CoreTables)
			if missing := printTableCounts(cmd.OutOrStdout(), counts); missing > 0 {
				return fmt.Errorf("%d table(s) could not be read", missing)
			}
			return nil
		},
	}
}

// printTableCounts writes one line per table and returns how many failed.
func printTableCounts(w io.Writer, counts []db.TableCount) int {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tROWS")
	failed := 0
	for _, tc := range counts {
		if tc.Err != nil {
			failed++
			fmt.Fprintf(tw, "%s\tERROR: %v\n", tc.Table, tc.Err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\n", tc.Table, tc.Rows)
	}
	tw.Flush()
	return failed
}
