package cmd

import (
	"context"
	"database/sql"
	"net"

	"github.com/vibast-solutions/ms-go-users/app/controller"
	usersgrpc "github.com/vibast-solutions/ms-go-users/app/grpc"
	"github.com/vibast-solutions/ms-go-users/app/mail"
	"github.com/vibast-solutions/ms-go-users/app/middleware"
	"github.com/vibast-solutions/ms-go-users/app/repository"
	"github.com/vibast-solutions/ms-go-users/app/service"
	"github.com/vibast-solutions/ms-go-users/config"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC servers",
	Long:  `Start both HTTP (Echo) and gRPC servers for the user account service.`,
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

type application struct {
	userAuthService service.UserAuthService
	guard           service.SessionGuard
	health          map[string]controller.HealthCheck
}

func runServe(cmd *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	notifier := mail.NewQueueNotifier(asynq.NewClient(redisClientOpt(cfg)), cfg.Mail.Queue)
	defer notifier.Close()

	app := newApplication(cfg, db, redisClient, notifier)

	go startGRPCServer(cfg, app)

	startHTTPServer(cfg, app)
}

func newApplication(cfg *config.Config, db *sql.DB, redisClient *redis.Client, notifier service.Notifier) *application {
	userRepo := repository.NewUserRepository(db)
	tokens := service.NewSessionTokenIssuer(cfg.JWT)

	return &application{
		userAuthService: service.NewUserAuthService(
			userRepo,
			service.NewBcryptHasher(cfg.Password.BcryptCost),
			service.NewActivationTicketCodec(cfg.Activation.Secret, cfg.Activation.TTL),
			tokens,
			notifier,
			cfg,
		),
		guard: service.NewSessionGuard(tokens, userRepo),
		health: map[string]controller.HealthCheck{
			"mysql": db.PingContext,
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		},
	}
}

func redisClientOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
}

func newHTTPServer(cfg *config.Config, app *application) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:  []string{"*"},
		ExposeHeaders: []string{"accesstoken", "refreshtoken"},
	}))

	authMiddleware := middleware.NewAuthMiddleware(app.guard, middleware.WithSecureCookies(cfg.HTTP.CookieSecure))
	usersController := controller.NewUserAuthController(app.userAuthService, authMiddleware)
	healthController := controller.NewHealthController(app.health)

	e.GET("/health", healthController.Health)

	users := e.Group("/users")
	users.GET("", usersController.ListUsers)
	users.POST("/register", usersController.Register)
	users.POST("/activate", usersController.Activate)
	users.POST("/login", usersController.Login)

	usersProtected := users.Group("")
	usersProtected.Use(authMiddleware.RequireAuth)
	usersProtected.GET("/me", usersController.Me)
	usersProtected.POST("/logout", usersController.Logout)

	return e
}

func startHTTPServer(cfg *config.Config, app *application) {
	e := newHTTPServer(cfg, app)
	defer e.Close()

	httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
	logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
	if err := e.Start(httpAddr); err != nil {
		logrus.WithError(err).Fatal("Failed to start HTTP server")
	}
}

func newGRPCServer(app *application) *grpc.Server {
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(
		usersgrpc.GuardUnaryInterceptor(app.guard, usersgrpc.MethodMe, usersgrpc.MethodLogout),
	))
	usersgrpc.RegisterUsersServiceServer(grpcServer, usersgrpc.NewUsersServer(app.userAuthService))
	return grpcServer
}

func startGRPCServer(cfg *config.Config, app *application) {
	grpcAddr := net.JoinHostPort(cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to listen on gRPC port")
	}

	grpcServer := newGRPCServer(app)
	defer grpcServer.GracefulStop()

	logrus.WithField("addr", grpcAddr).Info("Starting gRPC server")
	if err := grpcServer.Serve(lis); err != nil {
		logrus.WithError(err).Fatal("Failed to start gRPC server")
	}
}
