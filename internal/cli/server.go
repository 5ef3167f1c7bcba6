package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quiz-assignment-service/internal/app"
	"quiz-assignment-service/internal/auth"
	"quiz-assignment-service/internal/config"
	"quiz-assignment-service/internal/infra/memory"
	"quiz-assignment-service/internal/infra/postgres"
	infraredis "quiz-assignment-service/internal/infra/redis"
	"quiz-assignment-service/internal/logging"
	"quiz-assignment-service/internal/metrics"
	transport "quiz-assignment-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// stores groups the repositories picked for this run.
type stores struct {
	loader      memory.QuizLoader
	quizzes     app.QuizStore
	users       app.UserRepository
	assignments app.AssignmentRepository
	submissions app.SubmissionRepository
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	metrics.Init()

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var st stores
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		quizStore := postgres.NewQuizStore(pool)
		st = stores{
			loader:      quizStore,
			quizzes:     quizStore,
			users:       postgres.NewUserStore(pool),
			assignments: postgres.NewAssignmentStore(pool),
			submissions: postgres.NewSubmissionStore(pool),
		}
		log.Info("using postgres stores")
	} else {
		quizStore := memory.NewQuizStore()
		assignments := memory.NewAssignmentStore()
		st = stores{
			loader:      quizStore,
			quizzes:     quizStore,
			users:       memory.NewUserStore(),
			assignments: assignments,
			submissions: memory.NewSubmissionStore(assignments),
		}
		log.Warn("postgres not configured, data is kept in memory")
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	lockTTL := config.TTLDuration(cfg.Redis.LockTTL, 10*time.Second)
	var quizRepo app.QuizRepository
	var locks app.Locker
	if redisClient != nil {
		quizRepo = infraredis.NewQuizRepository(redisClient, st.loader, quizTTL)
		locks = infraredis.NewLocker(redisClient, lockTTL)
	} else {
		quizRepo = memory.NewQuizRepository(st.loader, quizTTL)
		locks = memory.NewLocker(lockTTL)
	}

	if cfg.Auth.Secret == "" {
		return fmt.Errorf("auth secret not configured (set auth.secret or JWT_SECRET)")
	}
	tokens := auth.NewTokens(cfg.Auth.Secret, config.TTLDuration(cfg.Auth.TokenTTL, time.Hour))

	userService := app.NewUserService(st.users, tokens, cfg.Auth.AdminCode, log.Named("users"))
	adminService := app.NewAdminService(quizRepo, st.quizzes, st.users, st.assignments, log.Named("admin"))
	quizService := app.NewQuizService(quizRepo, st.assignments, st.submissions, locks, log.Named("quiz"))

	handler := transport.NewHandler(userService, adminService, quizService, log.Named("http"))
	wsHandler := transport.NewWSHandler(userService, quizService, cfg.CORS.AllowedOrigins, log.Named("ws"))
	router := transport.NewRouter(handler, wsHandler, transport.RouterOptions{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting quiz service", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
