package main

import (
	"flag"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/robfig/cron/v3"

	httpapi "tradesim/internal/api/http"
	"tradesim/internal/controllers"
	"tradesim/internal/repository"
	mongorepo "tradesim/internal/repository/mongo"
	"tradesim/internal/repository/postgres"
	"tradesim/internal/repository/sqlite"
	"tradesim/internal/usecasees"
	"tradesim/models"
)

func main() {
	var app App
	var confFileName string

	flag.StringVar(&confFileName, "config", ".env", "")
	flag.Parse()

	app.Name = "tradesim"
	app.initLogger()

	if err := app.loadConfig(confFileName); err != nil {
		panic(err)
	}
	app.setLogLevel()

	if app.Config.LokiHost != "" {
		if err := app.initLoki(); err != nil {
			panic(err)
		}
	}

	if err := app.InitDB(); err != nil {
		panic(err)
	}

	app.InitMetrics()

	var tgmController controllers.TgmCtrl
	if app.Config.TelegramApiToken != "" {
		if err := app.initTgBot(); err != nil {
			panic(err)
		}

		chatID, err := strconv.ParseInt(app.Config.TelegramChatID, 10, 64)
		if err != nil {
			panic(err)
		}

		tgmController = controllers.NewTgmController(app.TGM, chatID)
	}

	var (
		accountRepo  repository.AccountRepo
		orderRepo    repository.OrderRepo
		positionRepo repository.PositionRepo
		priceRepo    repository.PriceRepo
		ledgerRepo   repository.LedgerRepo
	)

	switch app.Config.DBDriver {
	case "postgres":
		if err := postgres.Migrate(app.DB); err != nil {
			panic(err)
		}
		accountRepo = postgres.NewAccountRepository(app.DB)
		orderRepo = postgres.NewOrderRepository(app.DB)
		positionRepo = postgres.NewPositionRepository(app.DB)
		priceRepo = postgres.NewPriceRepository(app.DB)
		ledgerRepo = postgres.NewLedgerRepository(app.DB)
	default:
		if err := sqlite.Migrate(app.DB); err != nil {
			panic(err)
		}
		accountRepo = sqlite.NewAccountRepository(app.DB)
		orderRepo = sqlite.NewOrderRepository(app.DB)
		positionRepo = sqlite.NewPositionRepository(app.DB)
		priceRepo = sqlite.NewPriceRepository(app.DB)
		ledgerRepo = sqlite.NewLedgerRepository(app.DB)
	}

	instruments := loadInstruments(&app)

	quoteUseCase := usecasees.NewQuoteUseCase(
		instruments,
		priceRepo,
		time.Now().UnixNano(),
		app.Logger,
	)

	marginCalculator := usecasees.NewMarginCalculator(instruments)

	scheduler := usecasees.NewExecutionScheduler(
		orderRepo,
		ledgerRepo,
		tgmController,
		app.Metrics,
		time.Duration(app.Config.FillDelayMinMS)*time.Millisecond,
		time.Duration(app.Config.FillDelayMaxMS)*time.Millisecond,
		app.Config.SlippageFactor,
		time.Now().UnixNano(),
		app.Logger,
	)
	defer scheduler.Stop()

	accountUseCase := usecasees.NewAccountUseCase(
		accountRepo,
		orderRepo,
		positionRepo,
		quoteUseCase,
		app.Config.DefaultFunding,
		app.Logger,
	)

	orderUseCase := usecasees.NewOrderUseCase(
		accountUseCase,
		accountRepo,
		orderRepo,
		positionRepo,
		ledgerRepo,
		marginCalculator,
		quoteUseCase,
		scheduler,
		tgmController,
		app.Metrics,
		app.Logger,
	)

	positionUseCase := usecasees.NewPositionUseCase(
		accountUseCase,
		orderUseCase,
		accountRepo,
		positionRepo,
		quoteUseCase,
		app.Logger,
	)

	jobs := cron.New()
	if _, err := jobs.AddFunc("@every 1m", positionUseCase.RefreshAll); err != nil {
		panic(err)
	}
	jobs.Start()
	defer jobs.Stop()

	f := fiber.New()

	httpapi.RegisterHTTPEndpoints(
		f,
		accountUseCase,
		orderUseCase,
		positionUseCase,
		quoteUseCase,
		app.Logger,
	)

	if err := f.Listen(app.Config.ListenAddr); err != nil {
		app.Logger.Fatal(err)
	}
}

// loadInstruments prefers the mongo catalog when one is configured, seeding it
// on first run. Without mongo the built-in catalog is used.
func loadInstruments(app *App) []models.Instrument {
	if app.Config.Mongo == nil {
		return usecasees.DefaultInstruments()
	}

	if err := app.initMongo(); err != nil {
		app.Logger.WithError(err).Error("mongo unavailable, using built-in instruments")
		return usecasees.DefaultInstruments()
	}

	instrumentsRepo := mongorepo.NewInstrumentsRepository(app.Mongo)

	if err := instrumentsRepo.SetDefault(); err != nil {
		app.Logger.WithError(err).Error("instrument seed failed, using built-in instruments")
		return usecasees.DefaultInstruments()
	}

	instruments, err := instrumentsRepo.List()
	if err != nil {
		app.Logger.WithError(err).Error("instrument load failed, using built-in instruments")
		return usecasees.DefaultInstruments()
	}

	return instruments
}
