package cmd

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"

	"snapwin-admin/config"
	"snapwin-admin/internal/campaign"
	"snapwin-admin/internal/chat"
	"snapwin-admin/internal/functions"
	"snapwin-admin/internal/handlers"
	"snapwin-admin/internal/query"
	"snapwin-admin/internal/realtime"
	"snapwin-admin/monitoring"
	"snapwin-admin/security"
	"snapwin-admin/utils"

	_ "snapwin-admin/migrations"
)

func Start() error {
	app := pocketbase.New()

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	redisClient := utils.NewRedisClient(cfg.RedisURL)
	defer redisClient.Close()

	pnConfig := pubnub.NewConfig()
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey

	pn := pubnub.NewPubNub(pnConfig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Query layer
	lookup := query.NewLookup(app, redisClient, cfg.LookupLimit, cfg.LookupCacheTTL)
	ticketSource := query.NewRecordTicketSource(app)
	lister := query.NewTicketLister(ticketSource, lookup)
	exporter := query.NewExporter(ticketSource, lookup)
	payments := query.NewPaymentsLister(app)

	// Remote functions and campaigns
	fnClient := functions.NewClient(cfg.PublicURL, cfg.PublicAPIKey, cfg.FunctionTimeout)
	campaignService := campaign.NewService(
		campaign.NewRecordResolver(app),
		campaign.NewRecordStore(app),
		fnClient,
	)

	// Support chat
	chatService := chat.NewService(app, pn, chat.Timings{
		TypingIdle:      cfg.TypingIdle,
		TypingExpiry:    cfg.TypingExpiry,
		ReconcileWindow: cfg.ReconcileWindow,
	})
	chatService.Bind(app)
	go chatService.ListenTyping(ctx)

	// Realtime refresh fanout, one coordinator per admin list surface
	publisher := realtime.NewPublisher(pn)
	coordinators := make([]*realtime.Coordinator, 0, 4)
	for _, collection := range []string{"tickets", "raffles", "customers", "support_requests"} {
		collection := collection
		c := realtime.NewCoordinator(collection, cfg.RefreshDebounce, func() {
			publisher.RefreshSignal(collection)
		})
		c.Bind(app)
		coordinators = append(coordinators, c)
	}
	defer func() {
		for _, c := range coordinators {
			c.Stop()
		}
	}()

	// Handlers
	ticketHandler := handlers.NewTicketHandler(app, lister, exporter, payments)
	raffleHandler := handlers.NewRaffleHandler(app, campaignService)
	customerHandler := handlers.NewCustomerHandler(app, lookup)
	supportHandler := handlers.NewSupportHandler(app, chatService)
	campaignHandler := handlers.NewCampaignHandler(campaignService)

	rateLimiter := security.NewRateLimiter(redisClient, cfg.RateLimitPerMinute)

	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	if cfg.EnableMetrics {
		monitoring.NewMonitor(redisClient)
		go serveMetrics(cfg.MetricsPort)
	}

	go handleShutdown(cancel)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		admin := e.Router.Group("/api/v1/admin")
		admin.BindFunc(rateLimiter.Middleware())

		// Tickets
		admin.GET("/tickets", ticketHandler.ListTickets)
		admin.GET("/tickets/export", ticketHandler.ExportTickets)
		admin.GET("/tickets/{ticketId}", ticketHandler.GetTicket)
		admin.GET("/payments", ticketHandler.ListPayments)

		// Raffles
		admin.GET("/raffles", raffleHandler.ListRaffles)
		admin.POST("/raffles", raffleHandler.CreateRaffle)
		admin.GET("/raffles/{raffleId}", raffleHandler.GetRaffle)
		admin.PATCH("/raffles/{raffleId}", raffleHandler.UpdateRaffle)
		admin.POST("/raffles/{raffleId}/image", raffleHandler.UploadImage)
		admin.POST("/raffles/{raffleId}/draw", raffleHandler.DrawWinner)

		// Customers and lookups
		admin.GET("/customers", customerHandler.ListCustomers)
		admin.GET("/customers/{customerId}", customerHandler.GetCustomer)
		admin.GET("/lookup/customers", customerHandler.LookupCustomers)
		admin.GET("/lookup/raffles", customerHandler.LookupRaffles)

		// Support chat
		admin.GET("/support", supportHandler.ListRequests)
		admin.GET("/support/{requestId}", supportHandler.GetThread)
		admin.POST("/support/{requestId}/messages", supportHandler.Reply)
		admin.POST("/support/{requestId}/retry", supportHandler.Retry)
		admin.POST("/support/{requestId}/close", supportHandler.CloseRequest)
		admin.POST("/support/{requestId}/typing", supportHandler.Typing)
		admin.PUT("/support/{requestId}/draft", supportHandler.SetDraft)

		// Campaigns
		admin.POST("/campaigns", campaignHandler.SendCampaign)

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

		return e.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
	return nil
}

func serveMetrics(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Printf("metrics server stopped: %v", err)
	}
}

func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	cancel()
}
