package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "recruiting-console/internal/auth"
	"recruiting-console/internal/inventory"
	"recruiting-console/internal/listing"
	"recruiting-console/internal/matchrun"
	"recruiting-console/internal/posting"
	"recruiting-console/internal/selection"
	"recruiting-console/internal/services/health"
	"recruiting-console/internal/shared/config"
	"recruiting-console/internal/shared/server"
	"recruiting-console/internal/shared/storage/db"
	"recruiting-console/internal/talenthub"
)

// App holds the wired application dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB

	Hub            talenthub.Client
	InventoryStore *inventory.Store
	SelectionStore *selection.Store
	Orchestrator   *matchrun.Orchestrator
	Workflow       *posting.Workflow
}

// Build prepares the application with the real hub client.
func Build(cfg config.Config) (*App, error) {
	hub, err := talenthub.NewHTTPClient(cfg.HubBaseURL, cfg.HubToken, cfg.HubTimeout)
	if err != nil {
		return nil, fmt.Errorf("hub client: %w", err)
	}
	return BuildWithHub(cfg, hub)
}

// BuildWithHub wires everything against the given hub client. Tests inject
// fakes here and exercise the full router.
func BuildWithHub(cfg config.Config, hub talenthub.Client) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	inventoryStore := inventory.NewStore()
	selectionStore := selection.NewStore()

	inventorySvc := &inventory.Service{
		Hub:         hub,
		Store:       inventoryStore,
		Reconcilers: []inventory.Reconciler{selectionStore},
	}

	var runRepo matchrun.Repo
	var jobRepo posting.Repo
	if sqlDB != nil {
		runRepo = &matchrun.PGRepo{DB: sqlDB}
		jobRepo = &posting.PGRepo{DB: sqlDB}
	} else {
		runRepo = matchrun.NewMemoryRepo()
		jobRepo = posting.NewMemoryRepo()
	}

	orchestrator := matchrun.NewOrchestrator(hub, runRepo, selectionStore, cfg.MatchPollInterval)
	workflow := posting.NewWorkflow(hub, jobRepo)

	var googleSvc *googleauth.GoogleService
	if cfg.GoogleClientID != "" {
		googleSvc = googleauth.NewGoogleService(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
			cfg.UIRedirectURL,
			cfg.AdminEmails,
		)
	}

	app := &App{
		Config:         cfg,
		DB:             sqlDB,
		Hub:            hub,
		InventoryStore: inventoryStore,
		SelectionStore: selectionStore,
		Orchestrator:   orchestrator,
		Workflow:       workflow,
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           cfg,
		Health:           health.NewService(sqlDB),
		GoogleAuth:       googleSvc,
		InventoryHandler: inventory.NewHandler(inventorySvc),
		SelectionHandler: selection.NewHandler(selectionStore, inventoryStore),
		ListingHandler:   listing.NewHandler(inventoryStore, selectionStore),
		MatchHandler:     matchrun.NewHandler(orchestrator),
		PostingHandler:   posting.NewHandler(workflow),
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.Env != "production" {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required in production")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}
