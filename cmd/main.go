package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"
	_ "time/tzdata"

	"github.com/openestate/realty-service/internal/app"
	"github.com/openestate/realty-service/internal/config"
	"github.com/openestate/realty-service/internal/controllers"
	"github.com/openestate/realty-service/internal/events"
	"github.com/openestate/realty-service/internal/middleware"
	"github.com/openestate/realty-service/internal/models"
	"github.com/openestate/realty-service/internal/repositories"
	"github.com/openestate/realty-service/internal/routes"
	"github.com/openestate/realty-service/internal/services"
	"github.com/openestate/realty-service/internal/utils"
)

const (
	reconciliationCronSpec = "0 3 * * *"
	reconciliationTimeout  = 10 * time.Minute
)

func main() {
	utils.InitLogger("realty-service")
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize realty-service:", err)
	}
	defer application.Close()

	// Repositories
	userRepo := repositories.NewUserRepository(application.DB)
	brokerRepo := repositories.NewBrokerRepository(application.DB)
	custRepo := repositories.NewCustomerRepository(application.DB)
	propRepo := repositories.NewPropertyRepository(application.DB)
	dealRepo := repositories.NewDealRepository(application.DB)
	brokerRatingRepo := repositories.NewBrokerRatingRepository(application.DB)
	commentRepo := repositories.NewPropertyCommentRepository(application.DB)

	// Deal-closed events are optional; without a broker URL they are
	// dropped with a debug log.
	var publisher events.DealPublisher
	if cfg.AMQPUrl != "" {
		publisher, err = events.NewAMQPDealPublisher(cfg.AMQPUrl, cfg.DealQueue)
		if err != nil {
			utils.Logger.Fatal("Failed to connect to AMQP broker:", err)
		}
	} else {
		utils.Logger.Info("AMQP_URL not set; deal events disabled")
		publisher = events.NewNoopDealPublisher()
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			utils.Logger.WithError(err).Error("Error closing deal publisher")
		}
	}()

	// Services
	authService := services.NewAuthService(userRepo, brokerRepo, custRepo, cfg.JWTSecret)
	propertyService := services.NewPropertyService(propRepo, brokerRepo, commentRepo)
	dealService := services.NewDealService(dealRepo, propRepo, custRepo, publisher)
	ratingService := services.NewRatingService(brokerRatingRepo, commentRepo, brokerRepo, propRepo)
	brokerService := services.NewBrokerService(brokerRepo, propRepo)
	customerService := services.NewCustomerService(custRepo, propRepo, dealRepo)
	reconciliationService := services.NewReconciliationService(brokerRepo, propRepo, brokerRatingRepo, commentRepo)

	// Controllers
	healthController := controllers.NewHealthController(application)
	authController := controllers.NewAuthController(authService)
	propertyController := controllers.NewPropertyController(propertyService, ratingService, authService)
	brokerController := controllers.NewBrokerController(brokerService, propertyService, ratingService, authService)
	customerController := controllers.NewCustomerController(customerService, authService)
	dealController := controllers.NewDealController(dealService, authService)

	// Router setup
	router := mux.NewRouter()

	// Public routes
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.AuthRegisterBroker, authController.RegisterBrokerHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.AuthRegisterCustomer, authController.RegisterCustomerHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.AuthLogin, authController.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.Properties, propertyController.ListPropertiesHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.PropertySearch, propertyController.SearchPropertiesHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.Property, propertyController.GetPropertyHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.PropertyComments, propertyController.ListCommentsHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.Brokers, brokerController.ListBrokersHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.BrokersTopRated, brokerController.TopRatedBrokersHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.Broker, brokerController.GetBrokerHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.BrokerProperties, brokerController.ListBrokerPropertiesHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.BrokerRatings, brokerController.ListRatingsHandler).Methods(http.MethodGet)

	// Any authenticated user
	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.RequireAuth(cfg.JWTSecret))
	secured.HandleFunc(routes.PropertyComments, propertyController.CommentPropertyHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.Deals, dealController.ListDealsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.Deal, dealController.GetDealHandler).Methods(http.MethodGet)

	// Broker-only
	brokerOnly := router.NewRoute().Subrouter()
	brokerOnly.Use(middleware.RequireAuth(cfg.JWTSecret), middleware.RequireRole(models.RoleBroker))
	brokerOnly.HandleFunc(routes.Properties, propertyController.CreatePropertyHandler).Methods(http.MethodPost)
	brokerOnly.HandleFunc(routes.Property, propertyController.UpdatePropertyHandler).Methods(http.MethodPut)
	brokerOnly.HandleFunc(routes.Property, propertyController.DeletePropertyHandler).Methods(http.MethodDelete)
	brokerOnly.HandleFunc(routes.BrokerMe, brokerController.UpdateProfileHandler).Methods(http.MethodPut)
	brokerOnly.HandleFunc(routes.BrokerMe, brokerController.DeleteAccountHandler).Methods(http.MethodDelete)

	// Customer-only
	customerOnly := router.NewRoute().Subrouter()
	customerOnly.Use(middleware.RequireAuth(cfg.JWTSecret), middleware.RequireRole(models.RoleCustomer))
	customerOnly.HandleFunc(routes.Deals, dealController.CreateDealHandler).Methods(http.MethodPost)
	customerOnly.HandleFunc(routes.BrokerRatings, brokerController.RateBrokerHandler).Methods(http.MethodPost)
	customerOnly.HandleFunc(routes.CustomerMe, customerController.GetProfileHandler).Methods(http.MethodGet)
	customerOnly.HandleFunc(routes.CustomerMe, customerController.UpdateProfileHandler).Methods(http.MethodPut)
	customerOnly.HandleFunc(routes.CustomerMe, customerController.DeleteAccountHandler).Methods(http.MethodDelete)
	customerOnly.HandleFunc(routes.CustomerFavorites, customerController.ListFavoritesHandler).Methods(http.MethodGet)
	customerOnly.HandleFunc(routes.CustomerFavorites, customerController.AddFavoriteHandler).Methods(http.MethodPost)
	customerOnly.HandleFunc(routes.CustomerFavorite, customerController.RemoveFavoriteHandler).Methods(http.MethodDelete)
	customerOnly.HandleFunc(routes.CustomerHoldings, customerController.ListHoldingsHandler).Methods(http.MethodGet)

	// Nightly aggregate reconciliation
	c := cron.New(cron.WithLocation(time.UTC))
	_, err = c.AddFunc(reconciliationCronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), reconciliationTimeout)
		defer cancel()
		utils.Logger.Info("Starting rating reconciliation cron job...")
		if _, err := reconciliationService.Run(ctx); err != nil {
			utils.Logger.WithError(err).Error("Failed to reconcile rating aggregates")
		}
	})
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to schedule reconciliation cron")
	}
	c.Start()
	defer c.Stop()

	co := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("realty-service failed to start:", err)
	}
}
