package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"staynest/internal/app/commands"
	availabilityapp "staynest/internal/app/handlers/availability"
	bookingapp "staynest/internal/app/handlers/booking"
	listingapp "staynest/internal/app/handlers/listings"
	meapp "staynest/internal/app/handlers/me"
	"staynest/internal/app/middleware"
	appoutbox "staynest/internal/app/outbox"
	"staynest/internal/app/queries"
	"staynest/internal/app/uow"
	"staynest/internal/domain/listings"
	domainpricing "staynest/internal/domain/pricing"
	"staynest/internal/domain/shared/guests"
	kafkabroker "staynest/internal/infra/broker/kafka"
	rediscache "staynest/internal/infra/cache/redis"
	"staynest/internal/infra/config"
	mongodb "staynest/internal/infra/db/mongo"
	ginserver "staynest/internal/infra/http/gin"
	"staynest/internal/infra/obs"
	infraoutbox "staynest/internal/infra/outbox"
	"staynest/internal/infra/storage/memory"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	logger := obs.NewLogger(cfg.Env)
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	fixturesPath := getenv("LISTINGS_FIXTURES", filepath.Join("data", "listings.json"))
	if err := app.loadListingFixtures(ctx, fixturesPath, logger); err != nil {
		logger.Warn("listing fixtures load failed", "error", err, "path", fixturesPath)
	}

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	listings listings.Repository
	worker   *infraoutbox.Worker
	ready    func() error
	cleanup  []func() error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{ready: func() error { return nil }}

	var (
		uowFactory uow.UoWFactory
		box        appoutbox.Outbox
	)
	switch cfg.StorageMode {
	case "mongo":
		client, err := mongodb.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		if err := client.Ping(ctx); err != nil {
			return nil, fmt.Errorf("mongo ping: %w", err)
		}
		app.cleanup = append(app.cleanup, func() error {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return client.DB.Client().Disconnect(disconnectCtx)
		})
		app.ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}

		listingsRepo := mongodb.NewListingRepository(client.DB)
		reservationsRepo := mongodb.NewReservationRepository(client.DB)
		app.listings = listingsRepo
		uowFactory = mongodb.Factory{
			DB:               client.DB,
			ListingsRepo:     listingsRepo,
			ReservationsRepo: reservationsRepo,
		}

		store := infraoutbox.NewStore(client.DB)
		box = store

		if len(cfg.KafkaBrokers) > 0 {
			producer, err := kafkabroker.NewProducer(cfg.KafkaBrokers, nil)
			if err != nil {
				return nil, fmt.Errorf("kafka producer: %w", err)
			}
			app.cleanup = append(app.cleanup, producer.Close)
			app.worker = &infraoutbox.Worker{
				Queue:       store,
				Producer:    producer,
				Logger:      logger,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Backoff:     cfg.RetryBackoff,
			}
		} else {
			logger.Warn("no kafka brokers configured, outbox events will accumulate")
		}
	default:
		listingsRepo := memory.NewListingRepository()
		reservationsRepo := memory.NewReservationRepository()
		app.listings = listingsRepo
		uowFactory = memory.Factory{
			ListingsRepo:     listingsRepo,
			ReservationsRepo: reservationsRepo,
		}
		box = memory.NewOutbox()
	}

	var (
		calendarCache       availabilityapp.CalendarCache
		calendarInvalidator bookingapp.CalendarInvalidator
	)
	if cfg.RedisAddr != "" {
		client, err := rediscache.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("redis connect: %w", err)
		}
		app.cleanup = append(app.cleanup, client.Close)
		cache := rediscache.NewCalendarCache(client, cfg.CalendarCacheTTL, logger)
		calendarCache = cache
		calendarInvalidator = cache
	}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.CreateReservationCommand{}.Key(), &bookingapp.CreateReservationHandler{
		UoWFactory: uowFactory,
		Outbox:     box,
		Encoder:    appoutbox.JSONEventEncoder{},
		Calendar:   calendarInvalidator,
	})
	commands.RegisterHandler(commandBus, bookingapp.CancelReservationCommand{}.Key(), &bookingapp.CancelReservationHandler{
		UoWFactory: uowFactory,
		Outbox:     box,
		Encoder:    appoutbox.JSONEventEncoder{},
		Calendar:   calendarInvalidator,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, availabilityapp.GetCalendarQuery{}.Key(), &availabilityapp.GetCalendarHandler{
		UoWFactory: uowFactory,
		Cache:      calendarCache,
	})
	queries.RegisterHandler(queryBus, listingapp.DiscoverListingsQuery{}.Key(), &listingapp.DiscoverListingsHandler{
		UoWFactory: uowFactory,
	})
	queries.RegisterHandler(queryBus, listingapp.GetOverviewQuery{}.Key(), &listingapp.GetOverviewHandler{
		UoWFactory: uowFactory,
	})
	queries.RegisterHandler(queryBus, listingapp.QuoteStayQuery{}.Key(), &listingapp.QuoteStayHandler{
		UoWFactory: uowFactory,
	})
	queries.RegisterHandler(queryBus, meapp.ListGuestReservationsQuery{}.Key(), &meapp.ListGuestReservationsHandler{
		UoWFactory: uowFactory,
	})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(memory.NewIdempotencyStoreTTL(cfg.IdempotencyTTL), nil),
		middleware.Transaction(uowFactory, nil),
		middleware.OutboxFlush(box),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	app.handlers = ginserver.Handlers{
		Reservation:  ginserver.ReservationHandler{Commands: commandBusWithMiddleware},
		Availability: ginserver.AvailabilityHandler{Queries: queryBusWithMiddleware},
		Listing:      ginserver.ListingHandler{Queries: queryBusWithMiddleware},
		Me:           ginserver.MeHandler{Queries: queryBusWithMiddleware, Logger: logger},
	}
	return app, nil
}

func (a *application) close(logger *slog.Logger) {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		if err := a.cleanup[i](); err != nil {
			logger.Warn("cleanup failed", "error", err)
		}
	}
}

func (a *application) loadListingFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("listing fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}

	var fixtures []listingFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now()
	for _, fx := range fixtures {
		limits := make(map[guests.Type]guests.Limit, len(fx.GuestLimits))
		for name, l := range fx.GuestLimits {
			t, err := guests.ParseType(name)
			if err != nil {
				logger.Error("fixture guest limit invalid", "listing_id", fx.ID, "type", name)
				continue
			}
			limits[t] = guests.Limit{Min: l.Min, Max: l.Max}
		}
		promos := make([]domainpricing.Promotion, 0, len(fx.Promotions))
		for _, p := range fx.Promotions {
			promos = append(promos, domainpricing.Promotion{
				MinNights:          p.MinNights,
				DiscountPercentage: p.DiscountPercent,
				Description:        p.Description,
			})
		}
		listing, err := listings.New(listings.CreateParams{
			ID:            listings.ListingID(fx.ID),
			Host:          listings.HostID(fx.Host),
			Title:         fx.Title,
			Description:   fx.Description,
			City:          fx.City,
			Country:       fx.Country,
			NightPrice:    fx.NightPrice,
			Promotions:    promos,
			GuestCapacity: fx.GuestCapacity,
			GuestLimits:   limits,
			MinCancelDays: fx.MinCancelDays,
			Photos:        fx.Photos,
			Now:           now,
		})
		if err != nil {
			logger.Error("fixture invalid", "listing_id", fx.ID, "error", err)
			continue
		}
		if err := listing.Publish(now); err != nil {
			logger.Error("fixture publish failed", "listing_id", fx.ID, "error", err)
			continue
		}
		listing.FavoritesCount = fx.FavoritesCount
		listing.ReservationsCount = fx.ReservationsCount
		listing.Rating = fx.Rating
		listing.ReviewCount = fx.ReviewCount
		listing.ClearEvents()
		if err := a.listings.Save(ctx, listing); err != nil {
			logger.Error("cannot store fixture listing", "listing_id", fx.ID, "error", err)
			continue
		}
		logger.Info("listing fixture imported", "listing_id", listing.ID)
	}
	return nil
}

type listingFixture struct {
	ID                string                  `json:"id"`
	Host              string                  `json:"host"`
	Title             string                  `json:"title"`
	Description       string                  `json:"description"`
	City              string                  `json:"city"`
	Country           string                  `json:"country"`
	NightPrice        float64                 `json:"night_price"`
	Promotions        []fixturePromotion      `json:"promotions"`
	GuestCapacity     int                     `json:"guest_capacity"`
	GuestLimits       map[string]fixtureLimit `json:"guest_limits"`
	MinCancelDays     int                     `json:"min_cancel_days"`
	Photos            []string                `json:"photos"`
	FavoritesCount    int                     `json:"favorites_count"`
	ReservationsCount int                     `json:"reservations_count"`
	Rating            float64                 `json:"rating"`
	ReviewCount       int                     `json:"review_count"`
}

type fixturePromotion struct {
	MinNights       int     `json:"min_nights"`
	DiscountPercent float64 `json:"discount_percent"`
	Description     string  `json:"description"`
}

type fixtureLimit struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
