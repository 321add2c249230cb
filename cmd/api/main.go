package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/stocker-api/internal/application/alerts"
	"github.com/jhoicas/stocker-api/internal/application/inventory"
	"github.com/jhoicas/stocker-api/internal/application/purchasing"
	"github.com/jhoicas/stocker-api/internal/application/reporting"
	"github.com/jhoicas/stocker-api/internal/application/usecase"
	"github.com/jhoicas/stocker-api/internal/infrastructure/eventbus"
	"github.com/jhoicas/stocker-api/internal/infrastructure/mail"
	"github.com/jhoicas/stocker-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/stocker-api/internal/infrastructure/pdf"
	infraredis "github.com/jhoicas/stocker-api/internal/infrastructure/redis"
	"github.com/jhoicas/stocker-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/stocker-api/internal/interfaces/http"
	"github.com/jhoicas/stocker-api/pkg/config"
	"github.com/jhoicas/stocker-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	repos, err := storage.Open(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacén de datos")
	}
	defer repos.Close()

	// Marcadores de enfriamiento: Redis si está configurado (compartido entre instancias), si no en memoria.
	var cooldown alerts.CooldownStore = memory.NewCooldownStore(time.Now)
	if cfg.Redis.Enabled() {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		cooldown = infraredis.NewCooldownStore(rdb)
	}

	var recipients []string
	if cfg.Alerts.ManagerEmail != "" {
		recipients = []string{cfg.Alerts.ManagerEmail}
	}
	notifier := alerts.NewLowStockNotifier(cooldown, mail.New(cfg.SMTP, log), recipients, cfg.Alerts.Cooldown(), log)

	bus := eventbus.New(cfg.Alerts.EventBufferSize, log)
	bus.Subscribe(notifier.HandleMovementApplied)

	ledger := inventory.NewLedgerUseCase(repos.TxRunner, repos.Items, repos.Movements, bus, log)
	purchasingUC := purchasing.NewUseCase(repos.TxRunner, repos.Orders, repos.Suppliers, repos.Items, ledger, log).
		WithPDF(infrapdf.NewMarotoPDFGenerator(cfg.App.Name))
	reportingUC := reporting.NewUseCase(repos.Reports, repos.Items, cfg.App.Location())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Stocker API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		ItemUC:        usecase.NewItemUseCase(repos.TxRunner, repos.Items, repos.Categories, repos.Suppliers, ledger),
		CategoryUC:    usecase.NewCategoryUseCase(repos.Categories, repos.Items),
		SupplierUC:    usecase.NewSupplierUseCase(repos.TxRunner, repos.Suppliers),
		Ledger:        ledger,
		Replenishment: inventory.NewReplenishmentUseCase(repos.Items),
		Purchasing:    purchasingUC,
		Reporting:     reportingUC,
		ExpiryDays:    cfg.Alerts.ExpiryDays,
		JWTSecret:     cfg.JWT.Secret,
		AppName:       cfg.App.Name,
		Logger:        log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	// Entrega las alertas pendientes antes de cerrar el almacén.
	if err := bus.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("cierre del bus de eventos")
	}

	log.Info().Msg("aplicación detenida")
}
