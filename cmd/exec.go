package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"darshan-system/config"
	"darshan-system/handlers"
	"darshan-system/monitoring"
	"darshan-system/security"
	"darshan-system/services"
	"darshan-system/store"
	"darshan-system/utils"

	_ "darshan-system/migrations"

	"github.com/labstack/echo/v5"
	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	// Initialize PubNub
	var pn *pubnub.PubNub
	if cfg.PubNubPublishKey != "" && cfg.PubNubSubscribeKey != "" {
		pnConfig := pubnub.NewConfig()
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey
		pn = pubnub.NewPubNub(pnConfig)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize services
	st := store.NewPocketBase(app)
	broadcaster := services.NewPubNubBroadcaster(pn)
	slotService := services.NewSlotService(st, redisClient)
	zoneService := services.NewZoneService(st, redisClient)
	bookingService := services.NewBookingService(st, slotService, redisClient, broadcaster, cfg)
	scanService := services.NewScanService(st, zoneService, redisClient, broadcaster, cfg)

	// Initialize handlers
	slotHandler := handlers.NewSlotHandler(slotService)
	ticketHandler := handlers.NewTicketHandler(bookingService)
	zoneHandler := handlers.NewZoneHandler(zoneService)
	verifyHandler := handlers.NewVerifyHandler(scanService)

	rateLimiter := security.NewRateLimiter(redisClient, cfg.ScanRateLimit, cfg.ScanRateWindow)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	// Start background tasks
	if cfg.EnableMetrics {
		go monitoring.NewMonitor(redisClient, cfg.CollectInterval).Run(ctx)
		go startMetricsServer(cfg.MetricsAddr)
	}

	// Setup graceful shutdown
	go handleShutdown(cancel)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		syncOccupancyToRedis(app, redisClient)

		// Slot endpoints
		e.Router.POST("/api/v1/slots", slotHandler.CreateOrUpdateSlot).Bind(apis.RequireSuperuserAuth())
		e.Router.GET("/api/v1/slots", slotHandler.ListSlots)
		e.Router.GET("/api/v1/slots/available", slotHandler.ListAvailableSlots)
		e.Router.GET("/api/v1/slots/calendar", slotHandler.CalendarSummary)

		// Ticket endpoints
		e.Router.POST("/api/v1/tickets", ticketHandler.BookTicket).Bind(apis.RequireAuth())
		e.Router.GET("/api/v1/tickets/my", ticketHandler.MyTickets).Bind(apis.RequireAuth())
		e.Router.GET("/api/v1/tickets/{code}", ticketHandler.GetTicket).Bind(apis.RequireAuth())
		e.Router.POST("/api/v1/tickets/{code}/cancel", ticketHandler.CancelTicket).Bind(apis.RequireAuth())

		// Verify endpoints
		e.Router.POST("/api/v1/verify/scan", verifyHandler.Scan).
			Bind(apis.RequireAuth()).
			BindFunc(rateLimiter.ScanRateLimit())
		e.Router.GET("/api/v1/verify/logs", verifyHandler.Logs).Bind(apis.RequireAuth())

		// Zone endpoints
		e.Router.POST("/api/v1/zones/init", zoneHandler.InitZones).Bind(apis.RequireSuperuserAuth())
		e.Router.GET("/api/v1/zones", zoneHandler.ListZones)

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		setupRecordHooks(app, redisClient)

		return e.Next()
	})

	// Start server
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
	return nil
}

// syncOccupancyToRedis rebuilds the Redis mirror from the database on
// startup, so metrics and dashboards survive a restart.
func syncOccupancyToRedis(app *pocketbase.PocketBase, redisClient *redis.Client) {
	ctx := context.Background()

	var zones []dbx.NullStringMap
	if err := app.DB().NewQuery(
		"SELECT name, current_count, max_capacity FROM zones",
	).All(&zones); err != nil {
		log.Printf("Error fetching zones: %v", err)
	} else if len(zones) > 0 {
		for _, zone := range zones {
			value := fmt.Sprintf("%s|%s", zone["current_count"].String, zone["max_capacity"].String)
			redisClient.HSet(ctx, "zones:occupancy", zone["name"].String, value)
		}
		log.Printf("Synced %d zones to Redis", len(zones))
	}

	var slots []dbx.NullStringMap
	if err := app.DB().NewQuery(
		"SELECT date, time_range, darshan_type, booked_count FROM slots WHERE is_active = TRUE",
	).All(&slots); err != nil {
		log.Printf("Error fetching active slots: %v", err)
		return
	}

	redisClient.Del(ctx, "active_slots")
	for _, slot := range slots {
		field := fmt.Sprintf("%s|%s|%s", slot["date"].String, slot["time_range"].String, slot["darshan_type"].String)
		redisClient.HSet(ctx, "slots:booked", field, slot["booked_count"].String)
		redisClient.SAdd(ctx, "active_slots", field)
	}
	if len(slots) > 0 {
		log.Printf("Synced %d active slots to Redis", len(slots))
	}
}

// setupRecordHooks keeps the Redis mirror in step with edits made
// through the PocketBase dashboard, which bypass the service layer.
func setupRecordHooks(app *pocketbase.PocketBase, redisClient *redis.Client) {
	app.OnRecordUpdateRequest("zones").BindFunc(func(e *core.RecordRequestEvent) error {
		if err := e.Next(); err != nil {
			return err
		}

		ctx := e.Request.Context()
		value := fmt.Sprintf("%d|%d", e.Record.GetInt("current_count"), e.Record.GetInt("max_capacity"))
		if err := redisClient.HSet(ctx, "zones:occupancy", e.Record.GetString("name"), value).Err(); err != nil {
			slog.Error("zone redis sync failed", "zone", e.Record.GetString("name"), "error", err)
		}
		return nil
	})

	app.OnRecordUpdateRequest("slots").BindFunc(func(e *core.RecordRequestEvent) error {
		if err := e.Next(); err != nil {
			return err
		}

		ctx := e.Request.Context()
		field := fmt.Sprintf("%s|%s|%s",
			e.Record.GetString("date"),
			e.Record.GetString("time_range"),
			e.Record.GetString("darshan_type"),
		)
		if err := redisClient.HSet(ctx, "slots:booked", field, e.Record.GetInt("booked_count")).Err(); err != nil {
			slog.Error("slot redis sync failed", "slot", field, "error", err)
			return nil
		}
		if e.Record.GetBool("is_active") {
			redisClient.SAdd(ctx, "active_slots", field)
		} else {
			redisClient.SRem(ctx, "active_slots", field)
		}
		return nil
	})
}

func startMetricsServer(addr string) {
	e := echo.New()
	e.GET("/metrics", func(c echo.Context) error {
		promhttp.Handler().ServeHTTP(c.Response(), c.Request())
		return nil
	})

	server := &http.Server{Addr: addr, Handler: e}
	log.Printf("Metrics server listening on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("Metrics server error: %v", err)
	}
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	cancel()
}
