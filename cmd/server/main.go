package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	todo "github.com/goliatone/go-todo"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type App struct {
	config *todo.Config
	bunDB  *bun.DB
	repo   todo.RepositoryManager
	auther *todo.Auther
	srv    *fiber.App
	logger *glog.BaseLogger
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("todo"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg, err := todo.ConfigFromEnv()
	if err != nil {
		lgr.GetLogger("config").Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	fmt.Println("============")
	fmt.Println(print.MaybeHighlightJSON(cfg))
	fmt.Println("============")

	app := &App{
		config: cfg,
		logger: lgr,
	}

	ctx := context.Background()

	if err := WithPersistence(ctx, app); err != nil {
		lgr.GetLogger("persistence").Error("persistence setup failed", "error", err)
		os.Exit(1)
	}

	if err := WithAuth(ctx, app); err != nil {
		lgr.GetLogger("auth").Error("auth setup failed", "error", err)
		os.Exit(1)
	}

	WithHTTPServer(ctx, app)

	go func() {
		if err := app.srv.Listen(app.config.Address); err != nil {
			app.GetLogger("http").Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	WaitExitSignal()

	if err := app.srv.Shutdown(); err != nil {
		app.GetLogger("http").Error("shutdown error", "error", err)
	}
}

func WithPersistence(ctx context.Context, app *App) error {
	sqldb, err := sql.Open(sqliteshim.ShimName, app.config.DSN)
	if err != nil {
		return err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if _, err := db.NewCreateTable().
		Model((*todo.User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return err
	}

	if _, err := db.NewCreateTable().
		Model((*todo.Task)(nil)).
		IfNotExists().
		ForeignKey(`("owner_id") REFERENCES "users" ("id")`).
		Exec(ctx); err != nil {
		return err
	}

	repo := todo.NewRepositoryManager(db)
	if err := repo.Validate(); err != nil {
		return err
	}

	app.bunDB = db
	app.repo = repo

	return nil
}

func WithAuth(ctx context.Context, app *App) error {
	provider := todo.NewUserProvider(app.repo.Users())
	provider.WithLogger(app.GetLogger("auth:prv"))

	app.auther = todo.NewAuthenticator(provider, app.config).
		WithLogger(app.GetLogger("auth:authz"))

	return nil
}

func WithHTTPServer(ctx context.Context, app *App) {
	srv := fiber.New(fiber.Config{
		AppName:      "go-todo",
		ErrorHandler: todo.HTTPErrorHandler(app.GetLogger("http")),
	})

	todo.RegisterRoutes(srv, func(c *todo.APIController) *todo.APIController {
		c.Repo = app.repo
		c.Auther = app.auther
		return c.WithLogger(app.GetLogger("api"))
	})

	app.srv = srv
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
