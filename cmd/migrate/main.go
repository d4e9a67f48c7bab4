package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/erp/procurement/internal/infrastructure/config"
	"github.com/erp/procurement/internal/infrastructure/logger"
	"github.com/erp/procurement/internal/infrastructure/migration"
	"github.com/erp/procurement/migrations"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

// cli holds state shared by all subcommands
type cli struct {
	path     string
	logLevel string
	log      *zap.Logger
}

func main() {
	c := &cli{}
	if err := c.rootCmd().Execute(); err != nil {
		if c.log != nil {
			c.log.Error("Command failed", zap.Error(err))
			_ = c.log.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
	if c.log != nil {
		_ = c.log.Sync()
	}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "migrate",
		Short: "Procurement database migration tool",
		Long: `Applies and authors the procurement schema migrations.

Migrations are embedded in the binary; --path reads them from a directory
instead. Connection settings come from the PROCUREMENT_DATABASE_* variables
or the config file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			log, err := logger.New(logger.Config{Level: c.logLevel, Format: "console"})
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			c.log = log
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.path, "path", "", "read migrations from this directory instead of the embedded set")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		c.migrateCmd("up", "Apply all pending migrations", cobra.NoArgs, func(m *migration.Migrator, _ []string) error {
			return m.Up()
		}),
		c.migrateCmd("down", "Roll back all migrations", cobra.NoArgs, func(m *migration.Migrator, _ []string) error {
			return m.Down()
		}),
		c.migrateCmd("steps <n>", "Apply n migrations (negative rolls back)", cobra.ExactArgs(1), func(m *migration.Migrator, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			return m.Steps(n)
		}),
		c.migrateCmd("goto <version>", "Migrate to a specific version", cobra.ExactArgs(1), func(m *migration.Migrator, args []string) error {
			v, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return m.GoTo(uint(v))
		}),
		c.migrateCmd("version", "Show the current migration version", cobra.NoArgs, func(m *migration.Migrator, _ []string) error {
			v, dirty, err := m.Version()
			if err != nil {
				return err
			}
			if v == 0 {
				c.log.Info("No migrations applied")
				return nil
			}
			c.log.Info("Current migration version", zap.Uint("version", v), zap.Bool("dirty", dirty))
			return nil
		}),
		c.migrateCmd("force <version>", "Force the recorded version without running migrations", cobra.ExactArgs(1), func(m *migration.Migrator, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			c.log.Warn("Forcing migration version", zap.Int("version", v))
			return m.Force(v)
		}),
		c.createCmd(),
		c.listCmd(),
		c.seedCmd(),
	)
	return root
}

// migrateCmd builds a subcommand that runs fn against an open migrator
func (c *cli) migrateCmd(use, short string, args cobra.PositionalArgs, fn func(*migration.Migrator, []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			db, err := sql.Open("postgres", cfg.Database.DSN())
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()
			if err := db.PingContext(cmd.Context()); err != nil {
				return fmt.Errorf("ping database: %w", err)
			}

			m, err := migration.New(db, c.source(), c.log)
			if err != nil {
				return err
			}
			defer m.Close()
			return fn(m, args)
		},
	}
}

func (c *cli) source() migration.Source {
	if c.path != "" {
		return migration.Source{Dir: c.path}
	}
	return migration.Source{FS: migrations.FS}
}

// authoringDir is where create writes new files
func (c *cli) authoringDir() (string, error) {
	dir := c.path
	if dir == "" {
		dir = defaultMigrationsPath
	}
	return filepath.Abs(dir)
}

func (c *cli) createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name> [description]",
		Short: "Create the next numbered migration pair",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			dir, err := c.authoringDir()
			if err != nil {
				return err
			}
			description := ""
			if len(args) > 1 {
				description = args[1]
			}
			mf, err := migration.CreateMigration(dir, args[0], description)
			if err != nil {
				return err
			}
			c.log.Info("Migration created",
				zap.String("version", mf.Version),
				zap.String("up_file", mf.UpPath),
				zap.String("down_file", mf.DownPath),
			)
			return nil
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src := c.source()
			fsys := src.FS
			if src.Dir != "" {
				fsys = os.DirFS(src.Dir)
			}
			entries, err := migration.ListMigrations(fsys)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				c.log.Info("No migrations found")
				return nil
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				down := ""
				if !e.HasDown {
					down = " (no down)"
				}
				fmt.Fprintf(out, "  %06d  %s%s\n", e.Version, e.Name, down)
			}
			return nil
		},
	}
}
