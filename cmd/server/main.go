package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/fadilmartias/invest-analyzer/internal/config"
	"github.com/fadilmartias/invest-analyzer/internal/domain/fiber/handler"
	"github.com/fadilmartias/invest-analyzer/internal/invest"
	"github.com/fadilmartias/invest-analyzer/internal/middleware"
	"github.com/fadilmartias/invest-analyzer/internal/model"
	"github.com/fadilmartias/invest-analyzer/internal/repository"
	"github.com/fadilmartias/invest-analyzer/internal/service"
	"github.com/fadilmartias/invest-analyzer/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Load .env file
	ctx := context.Background()
	err := godotenv.Load()
	if err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()

	app := fiber.New(fiber.Config{
		AppName: appConfig.Name,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			// Status code defaults to 500
			code := fiber.StatusInternalServerError

			// Retrieve the custom status code if it's a *fiber.Error
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}

			return ctx.Status(code).JSON(fiber.Map{"error": message})
		},
	})
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	// Use middleware
	app.Use(recover.New(recover.Config{
		EnableStackTrace: config.LoadAppConfig().Env != "production",
	}))

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // 1
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return config.LoadAppConfig().Env != "production"
		},
	}))
	app.Use(healthcheck.New())

	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	db := ConnectDB()

	agent := BuildAgent(ctx)

	evaluationRepo := repository.NewEvaluationRepository(db)
	historicalRepo := repository.NewHistoricalStoryRepository(db)

	var gemini service.GeminiServiceInterface
	if g, err := service.NewGeminiService(ctx); err != nil {
		log.Printf("Servicio Gemini no disponible, búsqueda de similares deshabilitada: %v", err)
	} else {
		gemini = g
	}

	uc := usecase.NewEvaluationUsecase(agent, evaluationRepo, historicalRepo, gemini)
	handler := handler.NewEvaluateHandler(uc)

	handler.RegisterRoutes(app)

	// Resumen periódico del ledger en curso
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			summary := agent.Summary()
			if summary.Total > 0 {
				log.Printf("Ledger: %d historias, %.1f%% INVEST completo, %.2f criterios de media",
					summary.Total, summary.PercentInvestComplete, summary.AvgCriteriaPassed)
			}
		}
	}()

	log.Println("Server running on ", appConfig.Port)
	if err := app.Listen(appConfig.Port); err != nil {
		log.Fatal(err)
	}
}

// BuildAgent wires the evaluation agent per INVEST_MODE. In semantic mode a
// failed LM Studio handshake is only logged; the agent keeps per-story
// fallback to rules instead of demoting itself at startup.
func BuildAgent(ctx context.Context) *invest.Agent {
	investConfig := config.LoadInvestConfig()
	cfg := invest.AgentConfig{
		Mode:      invest.Mode(investConfig.Mode),
		Estimator: service.NewEstimatorService(),
	}

	if investConfig.Mode == "semantic" {
		lmConfig := config.LoadLMStudioConfig()
		lmStudio := service.NewLMStudioService()

		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if loadedModel, err := lmStudio.Connect(connectCtx); err != nil {
			log.Printf("LM Studio no responde todavía, se usará fallback por historia: %v", err)
		} else {
			log.Printf("LM Studio conectado, modelo %s", loadedModel)
		}

		cfg.Semantic = invest.NewSemanticEvaluator(lmStudio, invest.CompleteOptions{
			Timeout:     lmConfig.Timeout,
			Temperature: lmConfig.Temperature,
			MaxTokens:   lmConfig.MaxTokens,
		})
	}

	agent, err := invest.NewAgent(cfg)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Agente INVEST en modo %s", agent.Mode())
	return agent
}

func ConnectDB() *gorm.DB {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		dbConfig.Host,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.Name,
		dbConfig.Port,
		dbConfig.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	pgDB, err := db.DB()
	if err != nil {
		log.Fatalf("Could not get database instance: %v", err)
	}
	if appConfig.Env != "production" {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	// migración de tablas
	err = db.AutoMigrate(&model.EvaluationRecord{}, &model.BacklogBatch{}, &model.HistoricalStory{})
	if err != nil {
		log.Fatal("migration failed: ", err)
	}
	return db
}
