// Package server initializes and runs the loan-intake admin application.
// It opens the record store, applies migrations, ensures the bootstrap
// admin account and serves the HTTP API until a shutdown signal arrives.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/yzt-loan/loanadmin/internal/logging"
	"github.com/yzt-loan/loanadmin/internal/server/accounts"
	"github.com/yzt-loan/loanadmin/internal/server/auth"
	"github.com/yzt-loan/loanadmin/internal/server/config"
	"github.com/yzt-loan/loanadmin/internal/server/files"
	"github.com/yzt-loan/loanadmin/internal/server/httpapi"
	"github.com/yzt-loan/loanadmin/internal/server/resource"
	"github.com/yzt-loan/loanadmin/internal/server/session"
	"github.com/yzt-loan/loanadmin/internal/server/store"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config   *config.Config
	logger   logging.Logger
	store    *store.Postgres
	accounts *accounts.Store
	api      *httpapi.Server
}

func NewApp(c *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	pg, err := store.OpenPostgres(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	acc := accounts.New(pg, c.MaxLoginAttempts, c.LockWindow)
	persons := resource.New(pg, "loanPerson", map[string]string{"create_user": accounts.Collection})
	companies := resource.New(pg, "loanCompany", map[string]string{"loan_person": "loanPerson"})
	gateway := auth.NewGateway([]byte(c.SecretKey), c.TokenValidity)
	codes := session.NewCodes(c.SessionTTL)

	storage, err := newFileStorage(c)
	if err != nil {
		return nil, fmt.Errorf("file storage init error: %w", err)
	}

	api := httpapi.NewServer(logger, acc, persons, companies, gateway, codes, storage)

	return &App{config: c, logger: logger, store: pg, accounts: acc, api: api}, nil
}

func newFileStorage(c *config.Config) (files.Storage, error) {
	if c.FileBackend == "s3" {
		return files.NewS3(files.S3Options{
			User:     c.S3User,
			Password: c.S3Password,
			Bucket:   c.S3Bucket,
			Region:   c.S3Region,
			Endpoint: c.S3Endpoint,
		}), nil
	}
	return files.NewLocal(c.UploadDir)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	srv := &http.Server{Addr: app.config.EndpointAddr, Handler: app.api.Routes()}

	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "starting http server", "addr", app.config.EndpointAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.store.RunMigrations(ctx); err != nil {
		app.logger.Error(ctx, "migration error", "error", err)
		return
	}

	created, err := app.accounts.EnsureSuperAdmin(ctx, app.config.SuperAdminUser, app.config.SuperAdminPass)
	if err != nil {
		app.logger.Error(ctx, "super admin init error", "error", err)
		return
	}
	if created {
		app.logger.Info(ctx, "super admin account created", "username", app.config.SuperAdminUser)
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.store.Close(); err != nil {
		app.logger.Error(ctx, "closing store", "error", err)
	}
}
