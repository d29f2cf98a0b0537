// Command migrate manages the ledger schema. The server never migrates on
// start; deployments run "migrate up" first.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	"github.com/sahelbuild/backend/internal/infrastructure/config"
	"github.com/sahelbuild/backend/internal/infrastructure/logger"
	"github.com/sahelbuild/backend/internal/infrastructure/migration"
	"go.uber.org/zap"
)

type command struct {
	usage string
	help  string
	args  int  // required positional arguments after the command name
	db    bool // needs a database connection
	run   func(env *runEnv, args []string) error
}

type runEnv struct {
	dir      string
	log      *zap.Logger
	migrator *migration.Migrator
}

var commands = map[string]command{
	"up": {usage: "up", help: "apply every pending migration", db: true,
		run: func(e *runEnv, _ []string) error { return e.migrator.Up() }},
	"down": {usage: "down -confirm", help: "roll back every migration", db: true,
		run: func(e *runEnv, args []string) error {
			if err := confirmed(args); err != nil {
				return err
			}
			return e.migrator.Down()
		}},
	"step": {usage: "step <n>", help: "apply n migrations, or roll back when n is negative", args: 1, db: true,
		run: func(e *runEnv, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n == 0 {
				return fmt.Errorf("step count %q must be a non-zero integer", args[0])
			}
			return e.migrator.Steps(n)
		}},
	"goto": {usage: "goto <version>", help: "migrate up or down to version", args: 1, db: true,
		run: func(e *runEnv, args []string) error {
			v, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("version %q: %w", args[0], err)
			}
			return e.migrator.To(uint(v))
		}},
	"status": {usage: "status", help: "show the applied version and pending count", db: true,
		run: func(e *runEnv, _ []string) error {
			s, err := e.migrator.Status()
			if err != nil {
				return err
			}
			e.log.Info("Schema status",
				zap.Uint("version", s.Version),
				zap.Uint("latest", s.Latest),
				zap.Int("pending", s.Pending),
				zap.Bool("dirty", s.Dirty),
			)
			if s.Dirty {
				e.log.Warn("Repair the failed migration by hand, then run: migrate force <version>")
			}
			return nil
		}},
	"force": {usage: "force <version>", help: "mark version applied and clean", args: 1, db: true,
		run: func(e *runEnv, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("version %q: %w", args[0], err)
			}
			return e.migrator.Force(v)
		}},
	"drop": {usage: "drop -confirm", help: "drop every ledger table", db: true,
		run: func(e *runEnv, args []string) error {
			if err := confirmed(args); err != nil {
				return err
			}
			return e.migrator.Drop()
		}},
	"create": {usage: "create <name> [description]", help: "scaffold an up/down pair", args: 1,
		run: func(e *runEnv, args []string) error {
			desc := ""
			if len(args) > 1 {
				desc = args[1]
			}
			p, err := migration.Scaffold(e.dir, args[0], desc, time.Now())
			if err != nil {
				return err
			}
			e.log.Info("Migration created", zap.String("up", p.UpPath), zap.String("down", p.DownPath))
			return nil
		}},
	"list": {usage: "list", help: "list the migrations on disk",
		run: func(e *runEnv, _ []string) error {
			entries, err := migration.List(e.dir)
			if err != nil {
				return err
			}
			for _, m := range entries {
				rollback := ""
				if !m.HasDown {
					rollback = "  (no rollback)"
				}
				fmt.Printf("%d  %s%s\n", m.Version, m.Name, rollback)
			}
			return nil
		}},
}

var order = []string{"up", "step", "goto", "status", "down", "force", "drop", "create", "list"}

func main() {
	dir := flag.String("path", "", "migrations directory (default: ./migrations, or ../../migrations from the binary)")
	level := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}
	cmd, ok := commands[args[0]]
	if !ok || len(args)-1 < cmd.args {
		usage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{Level: *level, Format: "console", Output: "stdout", TimeFormat: time.DateTime})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	env := &runEnv{dir: migrationsDir(*dir), log: log}
	if cmd.db {
		cfg, err := config.Load()
		if err != nil {
			log.Fatal("Failed to load configuration", zap.Error(err))
		}
		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			log.Fatal("Failed to open database", zap.Error(err))
		}
		if err := db.Ping(); err != nil {
			log.Fatal("Database unreachable", zap.String("host", cfg.Database.Host), zap.Error(err))
		}
		if env.migrator, err = migration.Open(db, env.dir, log); err != nil {
			log.Fatal("Failed to load migrations", zap.String("path", env.dir), zap.Error(err))
		}
		defer func() { _ = env.migrator.Close() }()
	}

	if err := cmd.run(env, args[1:]); err != nil {
		if errors.Is(err, migration.ErrDirty) {
			log.Error("Schema is dirty; run status for details")
		}
		log.Fatal("Migration command failed", zap.String("command", args[0]), zap.Error(err))
	}
}

func confirmed(args []string) error {
	for _, a := range args {
		if a == "-confirm" || a == "--confirm" {
			return nil
		}
	}
	return errors.New("destructive command: repeat with -confirm")
}

// migrationsDir resolves the directory from the flag, the working directory
// or the binary's location, in that order.
func migrationsDir(flagValue string) string {
	candidates := []string{flagValue, "migrations"}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), "..", "..", "migrations"))
	}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if st, err := os.Stat(c); err == nil && st.IsDir() {
			abs, _ := filepath.Abs(c)
			return abs
		}
	}
	if flagValue != "" {
		return flagValue
	}
	return "migrations"
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "Ledger schema migrations\n\nUsage: migrate [flags] <command> [args]\n\nCommands:")
	for _, name := range order {
		c := commands[name]
		fmt.Fprintf(out, "  %-30s %s\n", c.usage, c.help)
	}
	fmt.Fprintln(out, "\nFlags:")
	flag.PrintDefaults()
	fmt.Fprintln(out, "\nThe database comes from LEDGER_DATABASE_* (host, port, user, password, dbname, sslmode).")
}
