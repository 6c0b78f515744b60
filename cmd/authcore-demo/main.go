// Command authcore-demo drives a full login, lockout, and recovery cycle
// against a stub auth gateway and prints the state transitions the UI
// layer would observe.
//
// Run:
//
//	go run ./cmd/authcore-demo
//	go run ./cmd/authcore-demo -store file -path /tmp/authcore-demo.json
//	go run ./cmd/authcore-demo -store redis -redis-addr localhost:6379
//
// A TOML config file can override the lockout policy:
//
//	go run ./cmd/authcore-demo -config demo.toml
//
//	# demo.toml
//	max_attempts = 3
//	lockout_duration = "5s"
//	reconcile_interval = "1s"
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/alicebob/miniredis/v2"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	authcore "github.com/recipeshare/authcore"
	"github.com/recipeshare/authcore/gateway"
	"github.com/recipeshare/authcore/kv"
	"github.com/recipeshare/authcore/session"
)

type fileConfig struct {
	MaxAttempts       int    `toml:"max_attempts"`
	LockoutDuration   string `toml:"lockout_duration"`
	ReconcileInterval string `toml:"reconcile_interval"`
}

func main() {
	var (
		storeKind  = flag.String("store", "memory", "durable store backend: memory, file, sqlite, or redis")
		storePath  = flag.String("path", "authcore-demo.db", "file path for the file and sqlite backends")
		redisAddr  = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		configPath = flag.String("config", "", "optional TOML config file overriding the lockout policy")
		email      = flag.String("email", "demo@recipeshare.dev", "seeded account email")
		password   = flag.String("password", "correct-horse", "seeded account password")
	)
	flag.Parse()

	_ = godotenv.Load()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg := authcore.DefaultConfig()
	// Keep the demo watchable; the production default lock window is
	// three minutes.
	cfg.Lockout.Duration = 5 * time.Second

	if *configPath != "" {
		if err := applyFileConfig(*configPath, &cfg); err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("config load failed")
		}
	}

	store, cleanup, err := buildStore(*storeKind, *storePath, *redisAddr, log)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer cleanup()

	stub := gateway.NewStub([]byte("demo-signing-secret"))
	stub.Seed(session.Identity{
		FirstName: "Demo",
		LastName:  "User",
		Email:     *email,
	}, *password)

	controller, err := authcore.New().
		WithConfig(cfg).
		WithStore(store).
		WithGateway(stub).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		log.Fatal().Err(err).Msg("controller build failed")
	}
	defer controller.Close()

	ctx := context.Background()

	updates, cancelSub := controller.Subscribe()
	defer cancelSub()
	go func() {
		for snap := range updates {
			log.Info().
				Bool("logged_in", snap.LoggedIn()).
				Bool("loading", snap.IsLoading).
				Bool("locked", snap.IsLocked).
				Int("failed_attempts", snap.FailedAttempts).
				Msg("state changed")
		}
	}()

	log.Info().Str("email", *email).Msg("attempting with a wrong password until lockout")
	for i := 0; i < cfg.Lockout.MaxAttempts; i++ {
		err := controller.Login(ctx, *email, "wrong-password")
		logAttempt(log, err)
	}

	log.Info().Msg("attempting while locked")
	logAttempt(log, controller.Login(ctx, *email, *password))

	log.Info().Dur("window", cfg.Lockout.Duration).Msg("waiting for the lock to expire")
	waitUnlocked(controller)

	log.Info().Msg("attempting with the correct password")
	logAttempt(log, controller.Login(ctx, *email, *password))

	snap := controller.Snapshot()
	if snap.User != nil {
		log.Info().
			Str("user_id", snap.User.ID).
			Str("email", snap.User.Email).
			Msg("signed in")
	}

	metrics := controller.MetricsSnapshot()
	log.Info().
		Uint64("login_success", metrics.Counters[authcore.MetricLoginSuccess]).
		Uint64("login_failure", metrics.Counters[authcore.MetricLoginFailure]).
		Uint64("lockout_triggered", metrics.Counters[authcore.MetricLockoutTriggered]).
		Msg("session counters")

	// Rebuild against the same store to show the session surviving a
	// process restart.
	controller.Close()

	restarted, err := authcore.New().
		WithConfig(cfg).
		WithStore(store).
		WithGateway(stub).
		Build()
	if err != nil {
		log.Fatal().Err(err).Msg("controller rebuild failed")
	}
	defer restarted.Close()

	restored := restarted.Snapshot()
	log.Info().Bool("logged_in", restored.LoggedIn()).Msg("state after simulated restart")

	if err := restarted.Logout(ctx); err != nil {
		log.Error().Err(err).Msg("logout failed")
	}
	log.Info().Bool("logged_in", restarted.Snapshot().LoggedIn()).Msg("state after logout")
}

func applyFileConfig(path string, cfg *authcore.Config) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return err
	}
	if fc.MaxAttempts > 0 {
		cfg.Lockout.MaxAttempts = fc.MaxAttempts
	}
	if fc.LockoutDuration != "" {
		d, err := time.ParseDuration(fc.LockoutDuration)
		if err != nil {
			return fmt.Errorf("lockout_duration: %w", err)
		}
		cfg.Lockout.Duration = d
	}
	if fc.ReconcileInterval != "" {
		d, err := time.ParseDuration(fc.ReconcileInterval)
		if err != nil {
			return fmt.Errorf("reconcile_interval: %w", err)
		}
		cfg.Reconcile.Interval = d
	}
	return nil
}

func buildStore(kind, path, redisAddr string, log zerolog.Logger) (kv.Store, func(), error) {
	switch kind {
	case "memory":
		return kv.NewMemory(), func() {}, nil

	case "file":
		store, err := kv.NewFile(path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil

	case "sqlite":
		store, err := kv.NewSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil

	case "redis":
		addr := redisAddr
		if addr == "" {
			addr = os.Getenv("REDIS_ADDR")
		}
		if addr == "" {
			mr, err := miniredis.Run()
			if err != nil {
				return nil, nil, err
			}
			client := redis.NewUniversalClient(&redis.UniversalOptions{
				Addrs: []string{mr.Addr()},
			})
			log.Info().Str("addr", mr.Addr()).Msg("using miniredis")
			return kv.NewRedis(client, "authcore-demo"), func() {
				_ = client.Close()
				mr.Close()
			}, nil
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		log.Info().Str("addr", addr).Msg("using redis")
		return kv.NewRedis(client, "authcore-demo"), func() { _ = client.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", kind)
	}
}

func logAttempt(log zerolog.Logger, err error) {
	switch {
	case err == nil:
		log.Info().Msg("login succeeded")
	case errors.Is(err, authcore.ErrAccountLocked),
		errors.Is(err, authcore.ErrLoginLocked):
		log.Warn().Msg(err.Error())
	default:
		log.Info().Msg(err.Error())
	}
}

func waitUnlocked(c *authcore.Controller) {
	for {
		snap := c.Snapshot()
		if !snap.IsLocked {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
}
