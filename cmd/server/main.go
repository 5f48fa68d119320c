package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	glog "github.com/labstack/gommon/log"

	"github.com/iliyamo/travel-booking/internal/config"
	"github.com/iliyamo/travel-booking/internal/database"
	"github.com/iliyamo/travel-booking/internal/handler"
	"github.com/iliyamo/travel-booking/internal/middleware"
	"github.com/iliyamo/travel-booking/internal/queue"
	"github.com/iliyamo/travel-booking/internal/repository"
	"github.com/iliyamo/travel-booking/internal/router"
	"github.com/iliyamo/travel-booking/internal/service"
)

func logLevel(s string) glog.Lvl {
	switch strings.ToLower(s) {
	case "debug":
		return glog.DEBUG
	case "warn":
		return glog.WARN
	case "error":
		return glog.ERROR
	case "off":
		return glog.OFF
	}
	return glog.INFO
}

func main() {
	cfg := config.Load()

	if cfg.AutoMigrate {
		if err := database.Migrate(cfg); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	gdb, err := database.OpenGorm(db, cfg.LogLevel == "debug")
	if err != nil {
		log.Fatalf("gorm: %v", err)
	}
	xdb := sqlx.NewDb(db, "mysql")

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable: cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	pub := queue.NewPublisher(cfg.RabbitURL)
	defer pub.Close()

	// repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	hotels := repository.NewHotelRepo(db)
	rooms := repository.NewRoomRepo(db)
	cars := repository.NewCarRepo(db)
	packages := repository.NewPackageRepo(db)
	bundles := repository.NewBundleRepo(db)
	bookings := repository.NewBookingRepo(db)
	content := repository.NewContentRepo(gdb)
	search := repository.NewSearchRepo(xdb)

	bookingSvc := service.NewBookingService(service.NewSQLBookingStore(db), pub)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	catalogH := handler.NewCatalogHandler(hotels, rooms, cars, packages, bundles, search)
	bookingH := handler.NewBookingHandler(bookingSvc)
	manageH := handler.NewManageHandler(users, hotels, rooms, cars, packages, bundles)
	adminH := handler.NewAdminHandler(users, tokens, bookings)
	contentH := handler.NewContentHandler(content, bookings)

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(logLevel(cfg.LogLevel))
	e.Validator = handler.NewValidator()

	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(middleware.CORS(cfg.CORSOrigins))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			if v.Error != nil {
				c.Logger().Errorf("%s %s %d %s id=%s err=%v", v.Method, v.URI, v.Status, v.Latency, v.RequestID, v.Error)
				return nil
			}
			c.Logger().Infof("%s %s %d %s id=%s", v.Method, v.URI, v.Status, v.Latency, v.RequestID)
			return nil
		},
	}))
	e.Use(middleware.Negotiate())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	cacheCfg := config.LoadCacheConfig()
	cache := middleware.NewRedisCache(cacheCfg, rdb)
	invalidate := middleware.Invalidate(cacheCfg, rdb)

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, catalogH, contentH, cache)
	router.RegisterCustomer(e, bookingH, contentH, cfg.JWTSecret)
	router.RegisterOwner(e, bookingH, manageH, cfg.JWTSecret, invalidate)
	router.RegisterAdmin(e, router.AdminHandlers{
		Bookings: bookingH,
		Manage:   manageH,
		Users:    adminH,
		Content:  contentH,
	}, cfg.JWTSecret, invalidate)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
