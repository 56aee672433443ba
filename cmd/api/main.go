package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"securehire/internal/adapter/api"
	"securehire/internal/adapter/api/handler"
	apimiddleware "securehire/internal/adapter/api/middleware"
	"securehire/internal/adapter/api/router"
	"securehire/internal/adapter/repository"
	domainrepo "securehire/internal/domain/repository"
	"securehire/internal/domain/service"
	"securehire/internal/infrastructure/backend"
	"securehire/internal/infrastructure/firebase"
	"securehire/internal/infrastructure/localstore"
	"securehire/internal/infrastructure/ratelimit"
	"securehire/internal/infrastructure/storage"
	"securehire/internal/infrastructure/websocket"
	"securehire/internal/usecase"
	"securehire/pkg/config"
	"securehire/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	logger.Init(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := credentialOptions()

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		fatal("Failed to initialize Firebase", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		fatal("Failed to initialize Firebase Auth", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		fatal("Failed to create Firestore client", err)
	}
	defer firestoreClient.Close()

	var objectStore service.ObjectStore
	if cfg.StorageBucket != "" {
		storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, opts...)
		if err != nil {
			fatal("Failed to initialize Cloud Storage", err)
		}
		defer storageClient.Close()
		objectStore = storageClient
	} else {
		logger.Warn("STORAGE_BUCKET not set, check-in posters will not be stored")
	}

	kv, err := openLocalStore(ctx, cfg)
	if err != nil {
		fatal("Failed to open local store", err)
	}
	defer kv.Close()
	cache := localstore.NewCache(kv, cfg.ProfileCacheTTL)

	identityRepo := repository.NewFirestoreIdentityRepository(firestoreClient)
	chatRepo := repository.NewFirestoreChatRepository(firestoreClient)

	backendClient := backend.NewClient(backend.Config{
		BaseURL:    cfg.BackendBaseURL,
		UserHeader: cfg.BackendUserHeader,
		Timeout:    cfg.BackendTimeout,
		RetryMax:   cfg.BackendRetryMax,
	}, logger.L().Named("backend"))

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient)

	limiter := ratelimit.NewRateLimiter()
	limiter.StartCleanupRoutine(ctx)

	wsManager := websocket.NewManager()
	notifier := usecase.NewNotifier(wsManager)

	profileGate := usecase.NewProfileGate(backendClient, cache)
	profileUseCase := usecase.NewProfileUseCase(backendClient, cache, profileGate)
	contactSessions := usecase.NewContactSessions(ctx, usecase.LoaderDeps{
		Identities: identityRepo,
		Directory:  backendClient,
		Cache:      cache,
		Presence:   wsManager,
	}, usecase.LoaderConfig{
		PageSize:          cfg.ContactPageSize,
		EnrichConcurrency: cfg.EnrichConcurrency,
		ScrollThreshold:   cfg.ScrollThreshold,
	})
	chatUseCase := usecase.NewChatUseCase(ctx, chatRepo, identityRepo, notifier, limiter)
	jobUseCase := usecase.NewJobUseCase(backendClient, profileUseCase)
	checkInUseCase := usecase.NewCheckInUseCase(backendClient, backendClient, profileUseCase, objectStore, limiter)
	sessionUseCase := usecase.NewSessionUseCase(identityRepo, firebaseAuthClient, contactSessions, chatUseCase)

	wsManager.SetHandler(handler.NewLiveSession(contactSessions, chatUseCase, profileGate, notifier, sessionUseCase))
	wsManager.Start(ctx)

	handler.Setup(contactSessions, chatUseCase, profileUseCase, profileGate, jobUseCase, checkInUseCase, sessionUseCase, notifier)
	handler.SetupHealthHandler(map[string]handler.Pinger{"local_store": kv})

	e := echo.New()
	e.HideBanner = true

	e.Use(requestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
	}))

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(sessionUseCase)
	gateMiddleware := apimiddleware.NewProfileGateMiddleware(profileGate)
	wsHandler := handler.NewWebSocketHandler(ctx, wsManager, cfg.AllowedOrigins)

	router.Setup(e, authMiddleware, gateMiddleware, limiter, wsHandler)

	go func() {
		logger.Info("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			fatal("Server stopped", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
}

// credentialOptions prefers FIREBASE_SERVICE_ACCOUNT_JSON (production), then
// FIREBASE_SERVICE_ACCOUNT_PATH, then application default credentials.
func credentialOptions() []option.ClientOption {
	if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		return []option.ClientOption{option.WithCredentialsJSON([]byte(serviceAccountJSON))}
	}

	if serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"); serviceAccountPath != "" {
		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			fatal("Service account file does not exist: "+serviceAccountPath, err)
		}
		logger.Info("Using Firebase service account from file: %s", serviceAccountPath)
		return []option.ClientOption{option.WithCredentialsFile(serviceAccountPath)}
	}

	logger.Info("Using application default credentials")
	return nil
}

func openLocalStore(ctx context.Context, cfg *config.Config) (domainrepo.KeyValueStore, error) {
	switch cfg.LocalStoreDriver {
	case "redis":
		client, err := localstore.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		logger.Info("Local store: redis at %s", cfg.RedisAddr)
		return localstore.NewRedisStore(client, "securehire:"), nil

	case "memory":
		logger.Info("Local store: in-memory")
		return localstore.NewMemoryStore(), nil
	}

	store, err := localstore.OpenSQLite(cfg.LocalStorePath)
	if err != nil {
		return nil, err
	}
	logger.Info("Local store: sqlite at %s", cfg.LocalStorePath)
	go purgeExpired(ctx, store)
	return store, nil
}

func purgeExpired(ctx context.Context, store *localstore.SQLiteStore) {
	ticker := time.NewTicker(30 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("Local store purge failed: %v", err)
				continue
			}
			if n > 0 {
				logger.Debug("Purged %d expired local store entries", n)
			}
		}
	}
}

func requestLogger() echo.MiddlewareFunc {
	log := logger.L().Named("http")
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				log.Error("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			log.Info("request", fields...)
			return nil
		},
	})
}

func fatal(msg string, err error) {
	logger.Error("%s: %v", msg, err)
	logger.Sync()
	os.Exit(1)
}
