package main

import (
	"resort/internal/audit"
	auditHandler "resort/internal/audit/handler"
	auditRepository "resort/internal/audit/repository"
	"resort/internal/bookings/events"
	bookingsHandler "resort/internal/bookings/handler"
	bookingsRepository "resort/internal/bookings/repository"
	bookingsService "resort/internal/bookings/service"
	bookingsValidator "resort/internal/bookings/validator"
	inventoryHandler "resort/internal/inventory/handler"
	inventoryRepository "resort/internal/inventory/repository"
	inventoryService "resort/internal/inventory/service"
	inventoryValidator "resort/internal/inventory/validator"
	usersHandler "resort/internal/users/handler"
	usersRepository "resort/internal/users/repository"
	usersService "resort/internal/users/service"
	usersValidator "resort/internal/users/validator"
	"resort/pkg/app"
	"resort/pkg/auth"
	"resort/pkg/config"
	mongotx "resort/pkg/db/mongo"
	"resort/pkg/kafka"
	kafka_config "resort/pkg/kafka/config"
	kafka_middleware "resort/pkg/kafka/middleware"
	"resort/pkg/keylock"
)

const ServiceName = "resort"

type services struct {
	inventory inventoryService.InventoryService
	bookings  bookingsService.BookingService
	users     usersService.UserService
	history   *audit.History
	tokens    *auth.TokenManager
}

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Resort service")
	svc := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(svc.tokens, svc.users,
		inventoryHandler.NewInventoryHandler(svc.inventory, cfg.Log),
		bookingsHandler.NewBookingHandler(svc.bookings, cfg.Log),
		usersHandler.NewUserHandler(svc.users, cfg.Log),
		auditHandler.NewHistoryHandler(svc.history, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config) *services {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	ids := mongotx.NewSequence(db)
	txManager := mongotx.NewTransactionManager(cfg.Client.Mongo)

	bookingRepo := bookingsRepository.NewMongoBookingRepository(cfg, db, ids)
	claimRepo := bookingsRepository.NewClaimRepository(cfg, db)

	inventory := inventoryService.NewInventoryService(
		inventoryRepository.NewMongoRoomRepository(cfg, db, ids),
		inventoryRepository.NewMongoCabinRepository(cfg, db, ids),
		bookingsRepository.NewReferenceGuard(claimRepo, bookingRepo),
		txManager,
		inventoryValidator.NewInventoryValidator(cfg.Log),
		cfg,
	)

	bookings := bookingsService.NewBookingService(
		bookingRepo,
		claimRepo,
		inventory,
		keylock.New(),
		txManager,
		initPublisher(cfg),
		bookingsValidator.NewBookingValidator(cfg.Log),
		cfg,
	)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)
	users := usersService.NewUserService(
		usersRepository.NewMongoUserRepository(cfg, db, ids),
		auth.NewPasswordHasher(cfg.BcryptCost),
		tokens,
		bookings,
		txManager,
		usersValidator.NewUserValidator(cfg.Log),
		cfg,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)
	return &services{
		inventory: inventory,
		bookings:  bookings,
		users:     users,
		history:   audit.NewHistory(auditRepository.NewMongoEventRepository(cfg, db), cfg.Log),
		tokens:    tokens,
	}
}

// initPublisher falls back to a no-op publisher when Kafka is disabled.
func initPublisher(cfg *config.Config) events.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return events.NewNoopPublisher()
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, kafkaCfg.BookingEventsTopic, kafkaCfg.BookingEventsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	cfg.Client.OnShutdown(producer)

	return events.NewKafkaPublisher(producer, cfg.Log)
}
