package router

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"learnhub/internal/api/v1/handler"
	"learnhub/internal/cache"
	"learnhub/internal/config"
	"learnhub/internal/database"
	"learnhub/internal/mailer"
	"learnhub/internal/middleware"
	"learnhub/internal/pgmq"
	"learnhub/internal/pubsub"
	"learnhub/internal/ratelimit"
	"learnhub/internal/repository"
	"learnhub/internal/service"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awsmiddleware "github.com/aws/smithy-go/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

const apiPrefix = "/v1"

// New wires every dependency and returns the API handler together with a
// cleanup function that releases the pool and clients.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (http.Handler, func(), error) {
	logger.Info().Str("environment", cfg.Environment).Msg("App environment loaded")

	// 1. Database pool
	pool, err := database.NewPool(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Msg("Database connection successful")

	// 2. Redis for cache and rate limits
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		// Cache and limiter degrade gracefully, so a cold Redis is not fatal.
		logger.Warn().Err(err).Msg("Redis ping failed")
	}

	// 3. S3-compatible object storage
	s3Client, err := newS3Client(ctx, cfg)
	if err != nil {
		pool.Close()
		_ = rdb.Close()
		return nil, nil, err
	}

	// 4. Pub/Sub events
	var publisher pubsub.Publisher = pubsub.NopPublisher{}
	closePublisher := func() {}
	if cfg.GCPProjectID != "" {
		p, err := pubsub.NewPublisher(ctx, cfg)
		if err != nil {
			pool.Close()
			_ = rdb.Close()
			return nil, nil, err
		}
		publisher = p
		closePublisher = func() { _ = p.Close() }
	} else {
		logger.Warn().Msg("GCP_PROJECT_ID not set, domain events are dropped")
	}
	events := pubsub.NewEmitter(publisher, cfg.PubSubEventsTopic, logger)

	validate := validator.New(validator.WithRequiredStructEnabled())
	respCache := cache.NewRedisCache(rdb, "learnhub:", logger)
	mail := mailer.NewQueueEnqueuer(pgmq.New(pool), cfg.EmailQueueName)

	// 5. Repositories
	userRepo := repository.NewUserRepo(pool)
	linkRepo := repository.NewProfileLinkRepo(pool)
	courseRepo := repository.NewCourseRepo(pool)
	chapterRepo := repository.NewChapterRepo(pool)
	purchaseRepo := repository.NewPurchaseRepo(pool)
	postRepo := repository.NewPostRepo(pool)
	ideaRepo := repository.NewIdeaRepo(pool)
	calendarRepo := repository.NewCalendarRepo(pool)
	dlqRepo := repository.NewDLQRepository(pool)

	// 6. Services
	activity := service.NewActivityRecorder(calendarRepo, logger)
	uploadSvc := service.NewUploadService(s3.NewPresignClient(s3Client), s3Client, cfg.S3Bucket, imagePublicBase(cfg), logger)
	stripeSvc := service.NewStripeService(service.StripeOptions{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		Currency:      cfg.StripeCurrency,
		AppBaseURL:    cfg.AppBaseURL,
	}, userRepo, logger)
	authSvc := service.NewAuthService(userRepo, service.NewOAuthProviders(cfg), mail, events, service.AuthOptions{
		JWTSecret:  cfg.JWTSecret,
		TokenTTL:   cfg.JWTTTL,
		AppBaseURL: cfg.AppBaseURL,
	}, logger)
	userSvc := service.NewUserService(userRepo, linkRepo, courseRepo, postRepo, respCache, cfg.ProfileCacheTTL, logger)
	courseSvc := service.NewCourseService(courseRepo, chapterRepo, purchaseRepo, uploadSvc, respCache, events, activity,
		service.CourseOptions{CatalogTTL: cfg.CatalogCacheTTL}, logger)
	chapterSvc := service.NewChapterService(courseRepo, chapterRepo, purchaseRepo, respCache, events, logger)
	enrollmentSvc := service.NewEnrollmentService(userRepo, courseRepo, chapterRepo, purchaseRepo, stripeSvc, mail, events, activity, cfg.AppBaseURL, logger)
	dashboardSvc := service.NewDashboardService(enrollmentSvc, purchaseRepo, postRepo, ideaRepo, calendarRepo)
	postSvc := service.NewPostService(postRepo, uploadSvc, activity, logger)
	ideaSvc := service.NewIdeaService(ideaRepo)
	calendarSvc := service.NewCalendarService(calendarRepo)
	dlqSvc := service.NewDLQService(dlqRepo)

	// 7. Middleware
	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret, logger)
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(reg)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	// 8. Routes
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.Recoverer)
	r.Use(middleware.LoggerMiddleware(logger))
	r.Use(c.Handler)
	r.Use(metrics.Middleware)

	handler.NewHealthHandler(pool.Ping, func(ctx context.Context) error { return rdb.Ping(ctx).Err() }, logger).RegisterRoutes(r)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route(apiPrefix, func(v1 chi.Router) {
		v1.Use(middleware.OptionalAuth(cfg.JWTSecret))
		v1.Use(middleware.RateLimitMiddleware(ratelimit.NewRedisLimiter(rdb), apiPrefix, logger))

		handler.NewAuthHandler(authSvc, validate, logger).RegisterRoutes(v1)
		handler.NewUserHandler(userSvc, courseSvc, validate, logger).RegisterRoutes(v1, authMiddleware)
		handler.NewCourseHandler(courseSvc, validate, logger).RegisterRoutes(v1, authMiddleware)
		handler.NewChapterHandler(chapterSvc, validate, logger).RegisterRoutes(v1, authMiddleware)
		handler.NewEnrollmentHandler(enrollmentSvc, validate, logger).RegisterRoutes(v1, authMiddleware)
		handler.NewDashboardHandler(dashboardSvc, logger).RegisterRoutes(v1, authMiddleware)
		handler.NewPostHandler(postSvc, validate, logger).RegisterRoutes(v1, authMiddleware)
		handler.NewIdeaHandler(ideaSvc, validate, logger).RegisterRoutes(v1, authMiddleware)
		handler.NewCalendarHandler(calendarSvc, validate, logger).RegisterRoutes(v1, authMiddleware)
		handler.NewUploadHandler(uploadSvc, validate, logger).RegisterRoutes(v1, authMiddleware)

		if cfg.IsDevelopment() {
			handler.NewDebugHandler(authSvc, dlqSvc, logger).RegisterRoutes(v1, authMiddleware)
			logger.Info().Msg("Debug routes enabled")
		}
	})

	// Redirect /api/* to /v1/* for clients still using the old prefix
	r.HandleFunc("/api/*", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/")
		http.Redirect(w, r, apiPrefix+"/"+rest, http.StatusMovedPermanently)
	})

	logger.Info().Msg("Router initialized")

	cleanup := func() {
		closePublisher()
		_ = rdb.Close()
		pool.Close()
	}
	return r, cleanup, nil
}

func newS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithAPIOptions([]func(*awsmiddleware.Stack) error{removeDisableGzip()}),
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load S3 config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3URL != "" {
			o.BaseEndpoint = aws.String(cfg.S3URL)
			o.UsePathStyle = true
		}
	}), nil
}

// imagePublicBase is the URL prefix uploaded objects are served from.
func imagePublicBase(cfg *config.Config) string {
	if cfg.ImagePublicBaseURL != "" {
		return strings.TrimSuffix(cfg.ImagePublicBaseURL, "/")
	}
	if cfg.S3URL != "" {
		return strings.TrimSuffix(cfg.S3URL, "/") + "/" + cfg.S3Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
}

// removeDisableGzip is a workaround for S3 signature errors with some S3-compatible services.
// See: https://github.com/supabase/storage/issues/577
func removeDisableGzip() func(*awsmiddleware.Stack) error {
	return func(stack *awsmiddleware.Stack) error {
		// Presign requests inspect the stack too, so only remove it when present.
		if _, ok := stack.Finalize.Get("DisableAcceptEncodingGzip"); ok {
			_, err := stack.Finalize.Remove("DisableAcceptEncodingGzip")
			return err
		}
		return nil
	}
}
