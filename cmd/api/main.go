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

	"github.com/jhoicas/hotel-inventario-api/internal/application/cycle"
	"github.com/jhoicas/hotel-inventario-api/internal/application/reconciliation"
	"github.com/jhoicas/hotel-inventario-api/internal/application/stockcount"
	"github.com/jhoicas/hotel-inventario-api/internal/domain/repository"
	infracache "github.com/jhoicas/hotel-inventario-api/internal/infrastructure/cache"
	"github.com/jhoicas/hotel-inventario-api/internal/infrastructure/memory"
	"github.com/jhoicas/hotel-inventario-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/hotel-inventario-api/internal/infrastructure/pdf"
	"github.com/jhoicas/hotel-inventario-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/hotel-inventario-api/internal/interfaces/http"
	"github.com/jhoicas/hotel-inventario-api/pkg/config"
	"github.com/jhoicas/hotel-inventario-api/pkg/logger"
)

// stores agrupa los adaptadores de persistencia elegidos por STORE_DRIVER.
type stores struct {
	products  repository.ProductRepository
	sectors   repository.SectorRepository
	counts    repository.StockCountRepository
	movements repository.MovementRepository
	cycles    repository.DiscountCycleRepository
	txRunner  cycle.TxRunner
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar persistencia")
	}
	defer st.close()

	m := metrics.New("hotel_inventario")

	var reportCache reconciliation.ResultCache = infracache.NewNoopReportCache()
	if cfg.Redis.Enabled() {
		rc := infracache.NewRedisReportCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rc.Ping(pingCtx); err != nil {
			// Sin Redis los reportes se recalculan; no es motivo para no arrancar.
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, caché de reportes deshabilitada")
		} else {
			reportCache = rc
			defer rc.Close()
		}
		cancel()
	}

	reconcileUC := reconciliation.NewReconcileUseCase(reconciliation.Deps{
		Products:  st.products,
		Sectors:   st.sectors,
		Counts:    st.counts,
		Movements: st.movements,
		Cache:     reportCache,
		CacheKey:  infracache.ReconcileKey,
		CacheTTL:  cfg.Redis.TTL,
		Metrics:   m,
		Logger:    log,
	})
	stockCountUC := stockcount.NewUseCase(st.counts, st.products, st.sectors, log)
	cycleUC := cycle.NewUseCase(cycle.Deps{
		Products:  st.products,
		Cycles:    st.cycles,
		Movements: st.movements,
		TxRunner:  st.txRunner,
		Documents: infrapdf.NewCycleDocumentGenerator(""),
		Metrics:   m,
		Logger:    log,
	})

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
		Title:    "Hotel Inventario API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		ReconcileUC:  reconcileUC,
		StockCountUC: stockCountUC,
		CycleUC:      cycleUC,
		JWTSecret:    cfg.JWT.Secret,
		JWTIssuer:    cfg.JWT.Issuer,
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

func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		log.Warn().Msg("STORE_DRIVER=memory: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return &stores{
			products:  memory.NewProductRepository(s),
			sectors:   memory.NewSectorRepository(s),
			counts:    memory.NewStockCountRepository(s),
			movements: memory.NewMovementRepository(s),
			cycles:    memory.NewDiscountCycleRepository(s),
			txRunner:  memory.NewCycleTxRunner(s),
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &stores{
		products:  postgres.NewProductRepository(pool),
		sectors:   postgres.NewSectorRepository(pool),
		counts:    postgres.NewStockCountRepository(pool),
		movements: postgres.NewMovementRepository(pool),
		cycles:    postgres.NewDiscountCycleRepository(pool),
		txRunner:  postgres.NewCycleTxRunner(pool),
		close:     pool.Close,
	}, nil
}
