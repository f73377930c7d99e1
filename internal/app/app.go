package app

import (
	"context"

	"claims-service/internal/config"
	"claims-service/internal/database"
	"claims-service/internal/discussion"
	"claims-service/internal/handler"
	"claims-service/internal/repository"
	"claims-service/internal/service"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// ClaimsApp represents the application with its dependencies.
type ClaimsApp struct {
	cfg *config.Config

	db *pgxpool.Pool
	r  *echo.Echo

	log *zap.Logger
}

// NewClaimsApp creates a new App instance, initializes database, services,
// handlers and routes.
func NewClaimsApp(cfg *config.Config, log *zap.Logger) *ClaimsApp {
	db, err := database.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	r := echo.New()

	retrier := newRepoRetrier(cfg.Retry, isRetryableFunc)

	claimRepo := repository.NewClaimRepository(db, trmpgx.DefaultCtxGetter, retrier)
	projectRepo := repository.NewProjectRepository(db, trmpgx.DefaultCtxGetter, retrier)
	staffRepo := repository.NewStaffRepository(db, trmpgx.DefaultCtxGetter, retrier)
	commentRepo := repository.NewCommentRepository(db, trmpgx.DefaultCtxGetter, retrier)

	trManager := manager.Must(trmpgx.NewDefaultFactory(db))

	claimService := service.NewClaimService(claimRepo, trManager, log)
	projectService := service.NewProjectService(projectRepo, staffRepo, trManager, log)
	discussionService := service.NewDiscussionService(
		claimRepo,
		commentRepo,
		log,
		discussion.WithPageSize(cfg.Discussion.PageSize),
		discussion.WithWindows(cfg.Discussion.InitialLoadTimeout, cfg.Discussion.FirstCommentTimeout),
	)

	claimHandler := handler.NewClaimHandler(claimService, log)
	projectHandler := handler.NewProjectHandler(projectService, log)
	discussionHandler := handler.NewDiscussionHandler(discussionService, log)

	handler.RegisterRoutes(r, claimHandler, projectHandler, discussionHandler)

	r.Use(middleware.Recover())

	return &ClaimsApp{
		cfg: cfg,
		db:  db,
		r:   r,
		log: log,
	}
}

// Run starts the HTTP server and waits for context cancellation.
func (a *ClaimsApp) Run(ctx context.Context) error {
	go func() {
		if err := a.r.Start(":" + a.cfg.App.Port); err != nil {
			a.log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	return a.Shutdown()
}

// Shutdown closes database connections and other resources.
func (a *ClaimsApp) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.App.ShutdownTimeout)
	defer cancel()

	if err := a.r.Shutdown(ctx); err != nil {
		a.log.Fatal("failed to shutdown server",
			zap.Error(err),
		)
		return err
	}

	a.db.Close()

	return nil
}
