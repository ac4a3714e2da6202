package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	config "github.com/davicafu/cinelab/internal/config"

	authApp "github.com/davicafu/cinelab/internal/auth/application"
	authHttp "github.com/davicafu/cinelab/internal/auth/infra/inbound/http"
	authJwt "github.com/davicafu/cinelab/internal/auth/infra/outbound/jwt"
	directorApp "github.com/davicafu/cinelab/internal/director/application"
	directorHttp "github.com/davicafu/cinelab/internal/director/infra/inbound/http"
	directorRepo "github.com/davicafu/cinelab/internal/director/infra/outbound/db/sqldb"
	genreApp "github.com/davicafu/cinelab/internal/genre/application"
	genreDomain "github.com/davicafu/cinelab/internal/genre/domain"
	genreHttp "github.com/davicafu/cinelab/internal/genre/infra/inbound/http"
	genreMongo "github.com/davicafu/cinelab/internal/genre/infra/outbound/db/mongodb"
	genreSQL "github.com/davicafu/cinelab/internal/genre/infra/outbound/db/sqldb"
	movieApp "github.com/davicafu/cinelab/internal/movie/application"
	movieDomain "github.com/davicafu/cinelab/internal/movie/domain"
	movieEvents "github.com/davicafu/cinelab/internal/movie/infra/inbound/events"
	movieHttp "github.com/davicafu/cinelab/internal/movie/infra/inbound/http"
	movieAnalytics "github.com/davicafu/cinelab/internal/movie/infra/outbound/analytics/clickhouse"
	movieRepo "github.com/davicafu/cinelab/internal/movie/infra/outbound/db/sqldb"
	movieFiles "github.com/davicafu/cinelab/internal/movie/infra/outbound/filesystem"
	userApp "github.com/davicafu/cinelab/internal/user/application"
	userDomain "github.com/davicafu/cinelab/internal/user/domain"
	userHttp "github.com/davicafu/cinelab/internal/user/infra/inbound/http"
	userCrypto "github.com/davicafu/cinelab/internal/user/infra/outbound/crypto"
	userRepo "github.com/davicafu/cinelab/internal/user/infra/outbound/db/sqldb"

	"github.com/davicafu/cinelab/pkg/logger"
	"github.com/davicafu/cinelab/pkg/metrics"
	"github.com/davicafu/cinelab/pkg/utils"

	sharedEvents "github.com/davicafu/cinelab/internal/shared/domain/events"
	infraEvents "github.com/davicafu/cinelab/internal/shared/infra/events"
	sharedBus "github.com/davicafu/cinelab/internal/shared/infra/platform/bus"
	sharedCache "github.com/davicafu/cinelab/internal/shared/infra/platform/cache"
	sharedDB "github.com/davicafu/cinelab/internal/shared/infra/platform/db"
	sharedMongo "github.com/davicafu/cinelab/internal/shared/infra/platform/mongodb"
	infraRelayer "github.com/davicafu/cinelab/internal/shared/infra/relayer"
	sharedUtils "github.com/davicafu/cinelab/internal/shared/infra/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ---------------- Main ----------------
func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.LogLevel) // inicializa zap
	log := logger.Logger()    // obtiene logger estructurado
	defer log.Sync()          // flush buffers al salir

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := utils.RegisterValidators(); err != nil {
		log.Fatal("failed to register validators", zap.Error(err))
	}

	// ---------------- DB ----------------
	dialect, err := sharedDB.DialectFor(cfg.DBDriver)
	if err != nil {
		log.Fatal("invalid DB_DRIVER", zap.Error(err))
	}
	dsn := sharedUtils.Ternary(dialect == sharedDB.Postgres, cfg.PostgresDSN, cfg.SQLitePath)
	db, err := sharedDB.Open(ctx, dialect, dsn)
	if err != nil {
		log.Fatal("failed to open database", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	defer db.Close()

	if err := sharedDB.InitSchema(ctx, db, dialect); err != nil {
		log.Fatal("failed to initialize schema", zap.Error(err))
	}
	log.Info("✅ Base de datos lista", zap.String("driver", cfg.DBDriver))

	// ---------------- Cache ----------------
	cacheInstance := openCache(ctx, cfg, log)

	// --------------- Servicios --------------
	userService := userApp.NewUserService(userRepo.NewUserRepoSQL(db, dialect), userCrypto.NewBcryptHasher(cfg.HashRounds), cacheInstance, log)
	seedAdmin(ctx, cfg, userService, log)

	tokens, err := authJwt.NewTokenManager(authJwt.Config{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	})
	if err != nil {
		log.Fatal("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required", zap.Error(err))
	}
	authService := authApp.NewAuthService(userService, tokens, cacheInstance, log)

	directorService := directorApp.NewDirectorService(directorRepo.NewDirectorRepoSQL(db, dialect), cacheInstance, log)

	var (
		genreRepository genreDomain.GenreRepository = genreSQL.NewGenreRepoSQL(db, dialect)
		mongoClient     *mongo.Client
	)
	if cfg.GenreStore == "mongo" {
		mongoClient, err = sharedMongo.Connect(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatal("failed to connect to MongoDB", zap.Error(err))
		}
		defer mongoClient.Disconnect(context.Background())

		repo := genreMongo.NewGenreRepoMongoDB(mongoClient, cfg.MongoDB)
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Fatal("failed to create genre indexes", zap.Error(err))
		}
		genreRepository = repo
		log.Info("✅ Géneros en MongoDB", zap.String("db", cfg.MongoDB))
	}
	genreService := genreApp.NewGenreService(genreRepository, cacheInstance, log)

	files, err := movieFiles.NewMovieFileStorage(cfg.MediaRoot)
	if err != nil {
		log.Fatal("failed to prepare media folders", zap.Error(err))
	}
	logger.Sugar().Infof("📂 Vídeos en %s", cfg.MediaRoot)
	movieService := movieApp.NewMovieService(movieRepo.NewMovieRepoSQL(db, dialect), directorService, genreService, files, cacheInstance, log)

	// ---------------- Analítica ----------------
	var analytics movieDomain.MovieAnalyticsRepository
	if cfg.ClickHouseAddr != "" {
		chRepo, err := movieAnalytics.NewMovieActivityRepo(cfg.ClickHouseAddr, cfg.ClickHouseDB)
		if err != nil {
			log.Warn("⚠️ ClickHouse no disponible, analítica desactivada", zap.Error(err))
		} else if err := chRepo.InitSchema(ctx); err != nil {
			log.Warn("⚠️ No se pudo crear movie_activity_log, analítica desactivada", zap.Error(err))
			chRepo.Close()
		} else {
			defer chRepo.Close()
			analytics = chRepo
			log.Info("✅ ClickHouse conectado, analítica habilitada")
		}
	}
	activityService := movieApp.NewActivityService(analytics, 100, log)
	go activityService.Start(ctx, 5*time.Second)

	// ---------------- Events ---------------
	movieConsumer := movieEvents.NewMovieConsumer(activityService, log)
	genreConsumer := movieEvents.NewGenreConsumer(movieService, log)
	topics := map[string]infraEvents.MessageHandler{
		movieDomain.MovieTopic: movieConsumer,
		genreDomain.GenreTopic: genreConsumer,
	}

	publishers := make(map[string]sharedBus.EventBus, len(topics))
	if cfg.UseKafka {
		log.Info("🚀 Usando Kafka como bus de eventos")
		for topic, handler := range topics {
			writer := &kafka.Writer{
				Addr:     kafka.TCP(cfg.KafkaBrokers...),
				Topic:    topic,
				Balancer: &kafka.Hash{}, // misma clave, misma partición
			}
			defer writer.Close()
			publishers[topic] = infraEvents.NewKafkaPublisher(writer, log)

			reader := kafka.NewReader(kafka.ReaderConfig{
				Brokers:  cfg.KafkaBrokers,
				Topic:    topic,
				GroupID:  "cinelab-" + topic,
				MinBytes: 1,
				MaxBytes: 10e6, // 10MB
			})
			defer reader.Close()
			infraEvents.NewConsumerAdapter(reader, handler, log).Start(ctx)
		}
	} else {
		log.Info("⚡️Usando bus de eventos en memoria (canales de Go)")
		for topic, handler := range topics {
			bus := infraEvents.NewInMemoryEventBus(topic)
			publishers[topic] = bus

			log.Info("🎧 Iniciando listener en memoria", zap.String("topic", topic))
			infraEvents.BackgroundConsumerChan(ctx, bus.Subscribe(100), handler)
		}
	}

	// ------------ Outbox Workers ------------
	eventRegistry := sharedEvents.MergeRegistries(movieDomain.NewEventRegistry(), genreDomain.NewEventRegistry())

	go infraRelayer.NewOutboxWorker(sharedDB.NewOutboxRepoSQL(db, dialect), publishers, eventRegistry, cfg.OutboxPeriod, cfg.OutboxLimit, log).Start(ctx)
	if mongoClient != nil {
		go infraRelayer.NewOutboxWorker(sharedMongo.NewOutboxRepoMongoDB(mongoClient, cfg.MongoDB), publishers, eventRegistry, cfg.OutboxPeriod, cfg.OutboxLimit, log).Start(ctx)
	}

	// ---------------- HTTP ----------------
	if !cfg.IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(logger.GinMiddleware(log), metrics.GinMiddleware(), gin.Recovery())
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.MaxMultipartMemory = 10 << 20

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.Static("/public/movie", cfg.MediaRoot+"/"+movieFiles.MovieFolder)

	// register/login llevan Basic: van fuera del grupo con BearerAuth
	bearer := router.Group("/")
	bearer.Use(authHttp.BearerAuth(authService, log))

	authHttp.RegisterAuthRoutes(&router.RouterGroup, bearer, authHttp.NewAuthHandler(authService))
	movieHttp.RegisterMovieRoutes(bearer, movieHttp.NewMovieHandler(movieService, activityService))
	directorHttp.RegisterDirectorRoutes(bearer, directorHttp.NewDirectorHandler(directorService))
	genreHttp.RegisterGenreRoutes(bearer, genreHttp.NewGenreHandler(genreService))
	userHttp.RegisterUserRoutes(bearer, userHttp.NewUserHandler(userService))

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("🚀 Server running", zap.String("url", "http://localhost:"+cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("🛑 Apagando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown failed", zap.Error(err))
	}
}

// openCache usa Redis si responde y si no cae a la cache en memoria.
func openCache(ctx context.Context, cfg *config.Config, log *zap.Logger) sharedCache.Cache {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("⚠️ Redis no disponible, cache en memoria:", zap.Error(err))
		_ = rdb.Close()
		return sharedCache.NewInMemoryCache(cfg.CacheTTL, 3*cfg.CacheTTL)
	}
	log.Info("✅ Redis conectado, cache habilitado")
	return sharedCache.NewRedisCache(rdb, cfg.CacheTTL)
}

// seedAdmin garantiza una cuenta admin si ADMIN_EMAIL y ADMIN_PASSWORD están definidos.
func seedAdmin(ctx context.Context, cfg *config.Config, users *userApp.UserService, log *zap.Logger) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return
	}
	admin, err := users.EnsureUser(ctx, cfg.AdminEmail, cfg.AdminPassword, userDomain.RoleAdmin)
	if err != nil {
		log.Error("failed to seed admin user", zap.Error(err))
		return
	}
	log.Info("👤 Admin disponible", zap.Int64("user_id", admin.ID), zap.String("email", admin.Email))
}
