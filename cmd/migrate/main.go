package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path"

	"finstat/pkg/config"
	"finstat/pkg/core/store"

	"github.com/google/subcommands"
)

var configPath = flag.String("config", os.Getenv("FINSTAT_CONFIG"), "path to a YAML config file")

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&dbCmd{name: "up", synopsis: "apply all pending migrations", run: migrateUp}, "")
	commander.Register(&dbCmd{name: "down", synopsis: "roll back the latest migration", run: rollback}, "")
	commander.Register(&dbCmd{name: "version", synopsis: "print the schema version", run: printVersion}, "")
	commander.Register(&dbCmd{name: "seed", synopsis: "load the industry catalog into the reference tables", run: seed}, "")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// dbCmd runs one operation against the configured database.
type dbCmd struct {
	name, synopsis string
	run            func(ctx context.Context, cfg config.Config, db *sql.DB) error
}

func (c *dbCmd) Name() string     { return c.name }
func (c *dbCmd) Synopsis() string { return c.synopsis }
func (c *dbCmd) Usage() string {
	return fmt.Sprintf("migrate [-config <file>] %s\n\n  %s.\n", c.name, c.synopsis)
}

func (c *dbCmd) SetFlags(*flag.FlagSet) {}

func (c *dbCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if cfg.DatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "Error: no database configured (set FINSTAT_DATABASE_URL or DATABASE_URL)")
		return subcommands.ExitUsageError
	}
	db, err := store.Connect(ctx, cfg.DatabaseURL, store.DefaultOptions())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	if err := c.run(ctx, cfg, db); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func migrateUp(ctx context.Context, _ config.Config, db *sql.DB) error {
	return store.Migrate(ctx, db)
}

func rollback(ctx context.Context, _ config.Config, db *sql.DB) error {
	return store.Rollback(ctx, db)
}

func seed(ctx context.Context, cfg config.Config, db *sql.DB) error {
	catalog, err := cfg.Industries()
	if err != nil {
		return err
	}
	industries := catalog.All()
	if err := store.NewIndustryRepo(db).Seed(ctx, industries); err != nil {
		return err
	}
	fmt.Printf("seeded %d industries\n", len(industries))
	return nil
}

func printVersion(ctx context.Context, _ config.Config, db *sql.DB) error {
	v, err := store.MigrationVersion(ctx, db)
	if err != nil {
		return err
	}
	fmt.Printf("schema version %d\n", v)
	return nil
}
