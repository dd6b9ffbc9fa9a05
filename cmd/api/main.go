package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/xid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/kindredkeeper/keeper/x/auth"
	"github.com/kindredkeeper/keeper/x/store"
	"github.com/kindredkeeper/keeper/x/util"
)

type CustomHandler struct {
	slog.Handler
}

func (h *CustomHandler) Handle(ctx context.Context, r slog.Record) error {

	r.AddAttrs(slog.String("type", "app"))

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		r.AddAttrs(slog.String("traceID", span.SpanContext().TraceID().String()))
		r.AddAttrs(slog.String("spanID", span.SpanContext().SpanID().String()))
	}

	return h.Handler.Handle(ctx, r)
}

var (
	version      = "unknown"
	buildMachine = "unknown"
	buildTime    = "unknown"
	goVersion    = "unknown"
)

func main() {

	fmt.Fprint(os.Stderr, keeperBanner)

	handler := &CustomHandler{Handler: slog.NewJSONHandler(os.Stdout, nil)}
	slog.SetDefault(slog.New(handler))

	slog.Info(
		fmt.Sprintf("Keeper %s starting...", version),
		slog.String("buildTime", buildTime),
		slog.String("buildMachine", buildMachine),
		slog.String("goVersion", goVersion),
	)

	configPath := os.Getenv("KEEPER_CONFIG")
	if configPath == "" {
		configPath = "/etc/keeper/config.yaml"
	}

	config := util.Config{}
	err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.String("error", err.Error()))
		os.Exit(1)
	}

	e := echo.New()
	e.HidePort = true
	e.HideBanner = true

	if config.Server.EnableTrace {
		cleanup, err := setupTraceProvider(config.Server.TraceEndpoint, "keeper", version)
		if err != nil {
			panic(err)
		}
		defer cleanup()

		skipper := otelecho.WithSkipper(
			func(c echo.Context) bool {
				return c.Path() == "/metrics" || c.Path() == "/health"
			},
		)
		e.Use(otelecho.Middleware("keeper", skipper))
	}

	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace: "keeper",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health"
		},
	}))

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return xid.New().String()
		},
	}))
	e.Use(middleware.Recover())

	db, err := store.Open(config.Server)
	if err != nil {
		slog.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		panic("failed to connect database")
	}
	defer sqlDB.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr: config.Server.RedisAddr,
		DB:   config.Server.RedisDB,
	})
	err = redisotel.InstrumentTracing(
		rdb,
		redisotel.WithAttributes(
			attribute.KeyValue{
				Key:   "db.name",
				Value: attribute.StringValue("redis"),
			},
		),
	)
	if err != nil {
		panic("failed to setup tracing plugin")
	}

	mc := memcache.New(config.Server.MemcachedAddr)
	defer mc.Close()

	characterService := SetupCharacterService(db, rdb, mc)
	transactionService := SetupTransactionService(db, rdb, mc)

	characterHandler := SetupCharacterHandler(db, rdb, mc, config)
	transactionHandler := SetupTransactionHandler(db, rdb, mc, config)
	feedHandler := SetupFeedHandler(rdb)

	api := e.Group("", auth.ReceiveGatewayAuthPropagation(config))

	// character
	api.GET("/character/:name", characterHandler.Get)
	api.POST("/character", characterHandler.Create, auth.Restrict(auth.ISKNOWN))
	api.DELETE("/character/:name", characterHandler.Delete, auth.Restrict(auth.ISGM))
	api.GET("/characters", characterHandler.List)
	api.GET("/leaderboard", characterHandler.Leaderboard)

	// ledger
	api.GET("/character/:name/log", transactionHandler.Log)
	api.GET("/character/:name/history", transactionHandler.History)
	api.POST("/character/:name/buy", transactionHandler.Buy, auth.Restrict(auth.ISKNOWN))
	api.POST("/character/:name/add", transactionHandler.Add, auth.Restrict(auth.ISGM))
	api.POST("/character/:name/remove", transactionHandler.Remove, auth.Restrict(auth.ISGM))
	api.GET("/transaction/:id", transactionHandler.Get)
	api.POST("/transaction/:id/refund", transactionHandler.Refund, auth.Restrict(auth.ISKNOWN))
	api.DELETE("/transaction/:id", transactionHandler.Erase, auth.Restrict(auth.ISGM))

	// feed
	api.GET("/feed", feedHandler.Connect)

	e.GET("/health", func(c echo.Context) (err error) {
		ctx := c.Request().Context()

		err = store.Ping(ctx, db)
		if err != nil {
			return c.String(http.StatusInternalServerError, "db error")
		}

		err = rdb.Ping(ctx).Err()
		if err != nil {
			return c.String(http.StatusInternalServerError, "redis error")
		}

		return c.String(http.StatusOK, "ok")
	})

	var resourceCountMetrics = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "keeper_resources_count",
			Help: "resources count",
		},
		[]string{"type"},
	)
	prometheus.MustRegister(resourceCountMetrics)

	go func() {
		for {
			time.Sleep(15 * time.Second)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

			count, err := characterService.Count(ctx)
			if err != nil {
				slog.Error(fmt.Sprintf("failed to count characters: %v", err))
			} else {
				resourceCountMetrics.WithLabelValues("character").Set(float64(count))
			}

			count, err = transactionService.Count(ctx)
			if err != nil {
				slog.Error(fmt.Sprintf("failed to count transactions: %v", err))
			} else {
				resourceCountMetrics.WithLabelValues("transaction").Set(float64(count))
			}

			cancel()
		}
	}()

	e.GET("/metrics", echoprometheus.NewHandler())

	slog.Info("listening", slog.String("addr", config.Server.Listen))
	e.Logger.Fatal(e.Start(config.Server.Listen))
}

func setupTraceProvider(endpoint string, serviceName string, serviceVersion string) (func(), error) {

	exporter, err := otlptracehttp.New(
		context.Background(),
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	resource := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
		semconv.ServiceVersionKey.String(serviceVersion),
	)

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(resource),
	)
	otel.SetTracerProvider(tracerProvider)

	propagator := propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
	otel.SetTextMapPropagator(propagator)

	cleanup := func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			slog.Error(fmt.Sprintf("Failed to shutdown tracer provider: %v", err))
		}
	}
	return cleanup, nil
}
