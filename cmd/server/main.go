package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"volunteerhub/internal/adapters/discord"
	transporthttp "volunteerhub/internal/adapters/http"
	"volunteerhub/internal/application"
	"volunteerhub/internal/clock"
	"volunteerhub/internal/commands"
	"volunteerhub/internal/config"
	"volunteerhub/internal/infrastructure/database"
	"volunteerhub/internal/infrastructure/i18n"
	"volunteerhub/internal/infrastructure/jsonstore"
	"volunteerhub/internal/infrastructure/mongostore"
	"volunteerhub/internal/infrastructure/token"
	"volunteerhub/internal/logging"
	"volunteerhub/internal/ports/output"
	"volunteerhub/internal/scheduler"
	"volunteerhub/pkg/tz"
)

const (
	startupTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
	reminderTimeout = time.Minute
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		if err := commands.HashPassword(os.Args[2:], os.Stdout, os.Stderr); err != nil {
			fmt.Fprintf(os.Stderr, "hash-password: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.LoadServer()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	switch {
	case len(os.Args) > 1 && os.Args[1] == "seed-users":
		if len(os.Args) != 3 {
			fmt.Fprintln(os.Stderr, "Usage: server seed-users FILE.yaml")
			os.Exit(2)
		}
		err = seed(cfg, log, os.Args[2])
	default:
		err = serve(cfg, log)
	}
	if err != nil {
		log.Error("server exited", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

type stores struct {
	events output.EventRepository
	users  output.UserRepository
	close  func()
}

func openStores(ctx context.Context, cfg *config.Server, log *zap.Logger) (*stores, error) {
	switch cfg.Store {
	case config.StorePostgres:
		if err := database.RunMigrations(cfg.DatabaseURL, log); err != nil {
			return nil, err
		}
		pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		return &stores{
			events: database.NewEventRepository(pool),
			users:  database.NewUserRepository(pool),
			close:  pool.Close,
		}, nil

	case config.StoreMongo:
		client, err := mongostore.Connect(ctx, cfg.MongoURI, log)
		if err != nil {
			return nil, err
		}
		ms := mongostore.New(client.Database(cfg.MongoDatabase))
		if err := ms.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return &stores{
			events: ms.Events(),
			users:  ms.Users(),
			close: func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := client.Disconnect(ctx); err != nil {
					log.Warn("mongo disconnect failed", zap.Error(err))
				}
			},
		}, nil

	default:
		js, err := jsonstore.Open(cfg.DBPath, log)
		if err != nil {
			return nil, err
		}
		return &stores{events: js.Events(), users: js.Users(), close: func() {}}, nil
	}
}

func seed(cfg *config.Server, log *zap.Logger, path string) error {
	users, err := commands.LoadSeedFile(path)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	n, err := commands.SeedUsers(ctx, st.users, users, log)
	if err != nil {
		return err
	}
	log.Info("seeding done", zap.Int("created", n), zap.Int("total", len(users)))
	return nil
}

func serve(cfg *config.Server, log *zap.Logger) error {
	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	st, err := openStores(startupCtx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	tokens, err := token.New(cfg.TokenHashKey, cfg.TokenBlockKey, cfg.TokenTTL)
	if err != nil {
		return err
	}
	tr := i18n.NewTranslator(cfg.DefaultLocale, log)

	var notifier output.EventNotifier = output.NopNotifier{}
	if cfg.DiscordEnabled() {
		n, err := discord.New(discord.Config{
			Token:     cfg.DiscordToken,
			ChannelID: cfg.DiscordChannel,
			Locale:    cfg.DefaultLocale,
			Location:  tz.Resolve(cfg.DisplayTimezone),
		}, tr, log.Named("discord"))
		if err != nil {
			return err
		}
		notifier = n
		log.Info("discord announcements enabled", zap.String("channel_id", cfg.DiscordChannel))
	}

	clk := clock.NewSystem()
	opts := []application.Option{
		application.WithClock(clk),
		application.WithNotifier(notifier),
		application.WithLogger(log),
	}
	eventSvc := application.NewEventService(st.events, opts...)
	rosterSvc := application.NewRosterService(st.events, st.users, opts...)
	authSvc := application.NewAuthService(st.users, tokens, opts...)

	jobs := scheduler.New(log.Named("scheduler"), reminderTimeout)
	if cfg.ReminderSchedule != "" {
		reminders := application.NewReminderService(st.events, cfg.ReminderWindow, opts...)
		err := jobs.Add("event-reminders", cfg.ReminderSchedule, func(ctx context.Context) error {
			_, err := reminders.SendDue(ctx)
			return err
		})
		if err != nil {
			return err
		}
	}
	jobs.Start()

	server := &http.Server{
		Addr: cfg.Addr,
		Handler: transporthttp.NewRouter(transporthttp.Deps{
			Events:      eventSvc,
			Roster:      rosterSvc,
			Auth:        authSvc,
			Translator:  tr,
			Clock:       clk,
			Log:         log.Named("http"),
			CORSOrigins: cfg.CORSOrigins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("api listening", zap.String("addr", cfg.Addr), zap.String("store", cfg.Store))
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runErr error
	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("listen: %w", err)
		}
	case <-stopCtx.Done():
		log.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Warn("server shutdown error", zap.Error(err))
	}
	jobs.Stop(shutdownCtx)
	log.Info("server stopped")
	return runErr
}
