package router

import (
	"net/http"

	archsvc "treasury-backend/internal/application/archive"
	authsvc "treasury-backend/internal/application/auth"
	branchsvc "treasury-backend/internal/application/branches"
	fundsvc "treasury-backend/internal/application/funds"
	ledgersvc "treasury-backend/internal/application/ledger"
	reportsvc "treasury-backend/internal/application/reports"
	stmtsvc "treasury-backend/internal/application/statements"
	"treasury-backend/internal/config"
	"treasury-backend/internal/infrastructure/database"
	archhandler "treasury-backend/internal/interfaces/handlers/archive"
	authhandler "treasury-backend/internal/interfaces/handlers/auth"
	branchhandler "treasury-backend/internal/interfaces/handlers/branches"
	entryhandler "treasury-backend/internal/interfaces/handlers/entries"
	fundhandler "treasury-backend/internal/interfaces/handlers/funds"
	healthhandler "treasury-backend/internal/interfaces/handlers/health"
	reporthandler "treasury-backend/internal/interfaces/handlers/reports"
	stmthandler "treasury-backend/internal/interfaces/handlers/statements"
	"treasury-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{Rdb: rdb}
	app.Get("/api/health", hh.JSON)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		hh.DB = &gormDBPinger{db: db}
	}

	if db != nil && rdb != nil {
		cache := &fundsvc.ListCache{Rdb: rdb}

		as := &authsvc.Service{DB: db}
		ah := &authhandler.Handlers{Service: as, Rdb: rdb, Config: sessionCfg}
		app.Post("/api/login", ah.Login)
		app.Get("/api/me", ah.Me)
		app.Post("/api/logout", middleware.RequireAuth(), ah.Logout)
		app.Post("/api/change-password", middleware.RequireAuth(), ah.ChangePassword)

		ls := &ledgersvc.Service{DB: db, Cache: cache}
		rs := &reportsvc.Service{DB: db}
		eh := &entryhandler.Handlers{Ledger: ls, Reports: rs}
		eg := app.Group("/api/entries", middleware.RequireAuth())
		eg.Post("/", eh.PostEntry)
		eg.Get("/", eh.ListMine)
		eg.Get("/:id", eh.GetEntry)
		eg.Put("/:id", eh.UpdateEntry)

		fs := &fundsvc.Service{DB: db, Cache: cache}
		fh := &fundhandler.Handlers{Service: fs}
		fg := app.Group("/api/funds", middleware.RequireAuth())
		fg.Get("/", fh.List)
		fg.Post("/", fh.Create)
		fg.Get("/types", fh.Types)
		fg.Get("/balance", fh.Balance)
		fg.Get("/:id/entries/search", eh.Search)

		arcs := &archsvc.Service{DB: db, Cache: cache}
		arch := &archhandler.Handlers{Service: arcs}
		ag := app.Group("/api/archives", middleware.RequireAuth())
		ag.Get("/", arch.List)
		ag.Get("/:id", arch.Detail)

		bs := &branchsvc.Service{DB: db}
		bh := &branchhandler.Handlers{Service: bs}
		rh := &reporthandler.Handlers{Service: rs}
		sts := &stmtsvc.Service{
			Archives:          arcs,
			InstitutionName:   cfg.InstitutionName,
			InstitutionDetail: cfg.InstitutionDetail,
		}
		sth := &stmthandler.Handlers{Service: sts}

		adm := app.Group("/api/admin", middleware.RequireAuth(), middleware.RequireAdmin())
		adm.Post("/monthly-archive", arch.Run)
		adm.Get("/archives/month-totals", arch.MonthTotals)
		adm.Get("/archives/:id/statement", sth.ArchiveStatement)
		adm.Get("/reports/balances", sth.BalancesReport)
		adm.Get("/balances", rh.AdminBalances)
		adm.Get("/entries", eh.ListAll)
		adm.Get("/branches", bh.List)
		adm.Get("/branches/:id", bh.Get)
		adm.Put("/branches/:id", bh.Rename)
		adm.Get("/branches/:id/fund-balances", fh.LastBalances)
		adm.Post("/branches/:id/reset-funds", arch.Reset)
		adm.Post("/funds/:id/reconcile", fh.Reconcile)
	}

	return app, db, rdb, nil
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
