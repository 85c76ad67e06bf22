package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/multierr"

	"github.com/frozify/storefront/internal/auth"
	"github.com/frozify/storefront/internal/session"
	"github.com/frozify/storefront/pkg/config"
	"github.com/frozify/storefront/pkg/db"
	"github.com/frozify/storefront/pkg/logger"
	"github.com/frozify/storefront/pkg/migrate"
	"github.com/frozify/storefront/pkg/storage"
	"github.com/frozify/storefront/pkg/storefront"
)

// cliSessionID tags log entries; the local database holds exactly one shopper.
const cliSessionID = "cli"

type storefrontAPI interface {
	session.API
	ListProducts(ctx context.Context) ([]storefront.Product, error)
	GetProduct(ctx context.Context, id string) (*storefront.Product, error)
	Login(ctx context.Context, email, password string) (*storefront.AuthResult, error)
	Register(ctx context.Context, input storefront.RegisterInput) (*storefront.AuthResult, error)
}

type options struct {
	dbPath    string
	baseURL   string
	recipient string
	timeout   time.Duration
	verbose   bool
}

// app is everything a command needs, built once per invocation.
type app struct {
	api     storefrontAPI
	auth    auth.Service
	session *session.Session
	logg    *logger.Logger
	out     io.Writer
	closers []func() error
}

func (a *app) Close() error {
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.closers[i]())
	}
	return err
}

type bootstrapFunc func(ctx context.Context, opts options, out io.Writer) (*app, error)

// openApp persists the shopper's state in a local SQLite file and talks to the live storefront API.
func openApp(ctx context.Context, opts options, out io.Writer) (*app, error) {
	logg := logger.Nop()
	if opts.verbose {
		logg = logger.New(logger.Options{ServiceName: "storefront-cli", Level: logger.ParseLevel("debug")})
	}

	dbClient, err := db.New(ctx, config.DBConfig{Driver: config.DBDriverSQLite, DSN: opts.dbPath}, logg)
	if err != nil {
		return nil, fmt.Errorf("open local database: %w", err)
	}
	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return nil, multierr.Append(err, dbClient.Close())
	}
	if err := migrate.Up(ctx, sqlDB, dbClient.Driver()); err != nil {
		return nil, multierr.Append(err, dbClient.Close())
	}
	store, err := storage.NewSQL(dbClient.DB(), 0)
	if err != nil {
		return nil, multierr.Append(err, dbClient.Close())
	}

	api, err := storefront.NewClient(opts.baseURL, storefront.WithTimeout(opts.timeout))
	if err != nil {
		return nil, multierr.Append(err, dbClient.Close())
	}

	a, err := newApp(ctx, api, store, opts, logg, out)
	if err != nil {
		return nil, multierr.Append(err, dbClient.Close())
	}
	a.closers = append(a.closers, dbClient.Close)
	return a, nil
}

func newApp(ctx context.Context, api storefrontAPI, store storage.Store, opts options, logg *logger.Logger, out io.Writer) (*app, error) {
	svc, err := auth.NewService(api)
	if err != nil {
		return nil, err
	}
	sess, err := session.New(ctx, session.Params{
		ID:        cliSessionID,
		Storage:   store,
		API:       api,
		Recipient: opts.recipient,
		Logger:    logg,
	})
	if err != nil {
		return nil, err
	}
	return &app{api: api, auth: svc, session: sess, logg: logg, out: out}, nil
}
