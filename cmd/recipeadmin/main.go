// Command recipeadmin runs administrative user operations against the recipe database.
//
// Usage:
//
//	recipeadmin list-users
//	recipeadmin set-admin -id 3 -value=true
//	recipeadmin clear-users -yes
//	recipeadmin purge-sessions
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"recipebook/internal/app/di"
	"recipebook/internal/config"
	authadapters "recipebook/internal/feature/auth/adapters"
	"recipebook/internal/feature/auth/domain/entity"
	authusecase "recipebook/internal/feature/auth/usecase"
	recipeentity "recipebook/internal/feature/recipes/domain/entity"
	platformdb "recipebook/internal/platform/db"
	"recipebook/internal/platform/logging"
	platformredis "recipebook/internal/platform/redis"
)

// Exit codes.
const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2
	exitConfig   = 3
	usageMessage = "usage: recipeadmin <list-users|set-admin|clear-users|purge-sessions> [flags]"
)

// errUsage marks invocation errors.
var errUsage = errors.New(usageMessage)

// Admin is the set of user operations the command exposes.
type Admin interface {
	ListUsers(ctx context.Context) ([]entity.User, error)
	GetUser(ctx context.Context, id uint) (*entity.User, error)
	SetAdministrator(ctx context.Context, id uint, value bool) error
	ClearUsers(ctx context.Context) error
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

func main() {
	logging.Setup()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(exitConfig)
	}

	db, err := platformdb.OpenDB(cfg, &entity.User{}, &authadapters.SessionModel{}, &recipeentity.Recipe{})
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(exitConfig)
	}

	// Sessions live where the server keeps them, so clear-users reaches them too.
	var rdb *redisv9.Client
	if addr := cfg.RedisAddr(); addr != "" {
		if tmp, err := platformredis.NewRedisClient(addr, cfg.RedisPassword); err != nil {
			slog.Warn("Redis unavailable. Using database sessions.", "error", err)
		} else {
			rdb = tmp
		}
	}

	admin := authusecase.NewAuthUsecase(
		authadapters.NewUserRepository(db),
		di.NewSessionRepository(rdb, db),
		cfg.SessionTTL,
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	err = run(ctx, os.Args[1:], os.Stdout, admin)
	switch {
	case err == nil:
		os.Exit(exitOK)
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	default:
		slog.Error("command failed", "error", err)
		os.Exit(exitFailure)
	}
}

// run dispatches one subcommand.
func run(ctx context.Context, args []string, out io.Writer, admin Admin) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "list-users":
		return listUsers(ctx, out, admin)
	case "set-admin":
		return setAdmin(ctx, args[1:], out, admin)
	case "clear-users":
		return clearUsers(ctx, args[1:], out, admin)
	case "purge-sessions":
		n, err := admin.PurgeExpiredSessions(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "purged %d expired sessions\n", n)
		return nil
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
}

func listUsers(ctx context.Context, out io.Writer, admin Admin) error {
	users, err := admin.ListUsers(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSER\tADMIN")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%t\n", u.ID, u.UserName, u.Administrator)
	}
	return tw.Flush()
}

func setAdmin(ctx context.Context, args []string, out io.Writer, admin Admin) error {
	fs := flag.NewFlagSet("set-admin", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	id := fs.Uint("id", 0, "user ID")
	value := fs.Bool("value", true, "administrator flag")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("set-admin: %v: %w", err, errUsage)
	}
	if *id == 0 {
		return fmt.Errorf("set-admin: -id is required: %w", errUsage)
	}

	// The repository update is a silent no-op for unknown IDs; report it here.
	user, err := admin.GetUser(ctx, *id)
	if err != nil {
		return err
	}
	if err := admin.SetAdministrator(ctx, user.ID, *value); err != nil {
		return err
	}
	fmt.Fprintf(out, "user %d (%s) administrator=%t\n", user.ID, user.UserName, *value)
	return nil
}

func clearUsers(ctx context.Context, args []string, out io.Writer, admin Admin) error {
	fs := flag.NewFlagSet("clear-users", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	yes := fs.Bool("yes", false, "confirm deleting every user")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("clear-users: %v: %w", err, errUsage)
	}
	if !*yes {
		return fmt.Errorf("clear-users: pass -yes to delete every user: %w", errUsage)
	}

	if err := admin.ClearUsers(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "all users deleted")
	return nil
}
