package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mealcraft/api/audit"
	"github.com/mealcraft/api/auth"
	"github.com/mealcraft/api/config"
	"github.com/mealcraft/api/controller"
	"github.com/mealcraft/api/db"
	"github.com/mealcraft/api/idp"
	logger "github.com/mealcraft/api/logging"
	"github.com/mealcraft/api/router"
	"github.com/mealcraft/api/search"
	"github.com/mealcraft/api/service"
	"github.com/mealcraft/api/util"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	// Initialize logger
	logger.InitLogger(config.GetString("log.dir"))
	defer logger.Sync()

	// Initialize Neo4j
	if err := db.InitNeo4j(); err != nil {
		logger.Fatal("Failed to initialize Neo4j", zap.Error(err))
	}
	defer db.CloseNeo4j()

	// Initialize Redis
	if err := db.InitRedis(); err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer db.CloseRedis()

	// Initialize EventBus
	eventBus := util.NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventBus.Start(ctx)

	// Initialize utilities
	validationUtil := util.NewValidationUtil()
	cacheService := util.NewCacheService()

	// Audit trail
	auditRepository, err := audit.NewElasticsearchRepository(config.GetString("elasticsearch.url"))
	if err != nil {
		logger.Fatal("Failed to initialize audit repository", zap.Error(err))
	}
	auditService := audit.NewService(auditRepository)

	// Recipe search index
	searchRepository, err := search.NewElasticsearchRepository(config.GetString("elasticsearch.url"))
	if err != nil {
		logger.Fatal("Failed to initialize search repository", zap.Error(err))
	}

	// Identity provider client
	idpTimeout := config.GetDuration("idp.requestTimeout")
	idpClient := idp.NewClient(
		config.GetString("idp.baseURL"),
		config.GetString("idp.realm"),
		config.GetString("idp.clientID"),
		config.GetString("idp.clientSecret"),
		idpTimeout,
	)

	// Token verification and issuance
	legacySecret := []byte(config.GetString("auth.legacySecret"))
	if len(legacySecret) == 0 {
		logger.Fatal("auth.legacySecret is not configured")
	}
	jwksURI := config.GetString("idp.jwksURI")
	if jwksURI == "" {
		jwksURI = fmt.Sprintf("%s/realms/%s/protocol/openid-connect/certs",
			config.GetString("idp.baseURL"), config.GetString("idp.realm"))
	}
	keyRing := auth.NewKeyRing(jwksURI, idpTimeout)
	legacyVerifier := auth.NewHMACVerifier(legacySecret)
	providerVerifier := auth.NewRSAVerifier(keyRing)
	issuer := auth.NewIssuer(legacySecret, config.GetDuration("auth.tokenTTL"), config.GetString("idp.realm"))

	// Initialize services
	services, err := service.InitializeServices(
		db.Neo4jDriver,
		auditService,
		idpClient,
		issuer,
		searchRepository,
		validationUtil,
		cacheService,
		eventBus,
	)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}

	// Initialize controllers
	controllers := controller.InitializeControllers(services)

	// Set up Gin
	gin.SetMode(gin.ReleaseMode)
	engine := router.SetupRouter(controllers, legacyVerifier, providerVerifier, 100, time.Minute)

	// Set up the server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.GetString("server.port")),
		Handler: engine,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", config.GetString("server.port")))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
