// Command migrate manages the client_states schema used by the SQL state backend.
//
//	migrate [-dir migrations] up|down|status
//	migrate to <YYYYMMDDHHMMSS>
//	migrate create <name>
//	migrate validate
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/greengrocer-web/pkg/config"
	"github.com/angelmondragon/greengrocer-web/pkg/db"
	"github.com/angelmondragon/greengrocer-web/pkg/logger"
	"github.com/angelmondragon/greengrocer-web/pkg/migrate"
)

const usage = "usage: migrate [-dir path] up|down|status|to <version>|create <name>|validate"

func main() {
	dir := flag.String("dir", migrate.DefaultDir, "migrations directory; the default reads the embedded files")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(context.Background(), cfg, logg, *dir, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger, dir string, args []string) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	command, rest := args[0], args[1:]
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "cmd": command, "dir": dir})

	// Files on disk are the only thing create and validate touch.
	onDisk := dir
	if onDisk == migrate.DefaultDir {
		onDisk = migrate.SourceDir
	}
	switch command {
	case "create":
		if len(rest) != 1 {
			return errors.New("create needs exactly one name")
		}
		path, err := migrate.CreateSQLMigration(onDisk, rest[0])
		if err != nil {
			return err
		}
		logg.Info(logg.WithField(ctx, "path", path), "migration.created")
		return nil
	case "validate":
		if err := migrate.ValidateDir(onDisk); err != nil {
			return err
		}
		logg.Info(ctx, "migration.valid")
		return nil
	}

	if !cfg.State.UsesSQL() {
		logg.Warn(ctx, "state backend is not sql, nothing to migrate")
		return nil
	}

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer client.Close()
	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("unwrap sql db: %w", err)
	}

	switch command {
	case "up", "down", "status":
		err = migrate.Run(ctx, sqlDB, client.Driver(), dir, command)
	case "to":
		if len(rest) != 1 {
			return errors.New("to needs a target version")
		}
		err = migrate.MigrateToVersion(ctx, sqlDB, client.Driver(), dir, rest[0])
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
	if err != nil {
		return err
	}
	logg.Info(ctx, "migration.done")
	return nil
}
