package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/labreservas-api/internal/application/admission"
	"github.com/jhoicas/labreservas-api/internal/application/usecase"
	"github.com/jhoicas/labreservas-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/labreservas-api/internal/interfaces/http"
	"github.com/jhoicas/labreservas-api/pkg/config"
	"github.com/jhoicas/labreservas-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	laboratoryRepo := postgres.NewLaboratoryRepository(pool)
	requirementRepo := postgres.NewRequirementRepository(pool)
	resourceRepo := postgres.NewResourceRepository(pool)
	reservationRepo := postgres.NewReservationRepository(pool)
	movementRepo := postgres.NewInventoryMovementRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	recorder := admission.NewRecorder(auditRepo, log)
	engine := admission.NewEngine(
		txRunner, laboratoryRepo, requirementRepo,
		resourceRepo, reservationRepo, recorder, log,
	)

	laboratoryUC := usecase.NewLaboratoryUseCase(laboratoryRepo)
	resourceUC := usecase.NewResourceUseCase(resourceRepo)
	movementUC := usecase.NewMovementUseCase(movementRepo)
	reservationUC := usecase.NewReservationQueryUseCase(reservationRepo)
	auditUC := usecase.NewAuditUseCase(auditRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "LabReservas API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Engine:        engine,
		LaboratoryUC:  laboratoryUC,
		ResourceUC:    resourceUC,
		MovementUC:    movementUC,
		ReservationUC: reservationUC,
		AuditUC:       auditUC,
		JWTSecret:     cfg.JWT.Secret,
		EvalTimeout:   time.Duration(cfg.Admission.EvalTimeoutSeconds) * time.Second,
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

	log.Info().Msg("aplicación detenida")
}
