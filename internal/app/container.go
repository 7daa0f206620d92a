package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Olprog59/go-crudstarter/internal/catalog"
	"github.com/Olprog59/go-crudstarter/internal/config"
	"github.com/Olprog59/go-crudstarter/internal/metrics"
	"github.com/Olprog59/go-crudstarter/internal/repository"
	"github.com/Olprog59/go-crudstarter/internal/repository/db"
	"github.com/Olprog59/go-crudstarter/internal/service"
	"github.com/prometheus/client_golang/prometheus"
)

const defaultStatsInterval = 15 * time.Second

// Container holds application dependencies / Contient les dépendances de l'application
type Container struct {
	DB            *sql.DB
	DBType        db.DatabaseType
	SchemaVersion uint
	Config        *config.Config
	Metrics       *metrics.Metrics
	Resources     []*catalog.Resource
	Services      map[string]*service.RecordService

	ctxCancel context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewContainer initializes application container / Initialise le conteneur de l'application
//
// reg receives the application metrics; nil uses the Prometheus default registry.
func NewContainer(cfg *config.Config, reg prometheus.Registerer) (*Container, error) {
	c := &Container{
		Config:    cfg,
		Resources: catalog.All(),
		Services:  make(map[string]*service.RecordService),
	}

	// Catalog errors are programming errors; fail before touching the database
	if err := catalog.Check(c.Resources); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	// Initialize metrics first (no dependencies)
	c.Metrics = metrics.NewMetrics(reg)

	if err := c.initDatabase(); err != nil {
		return nil, fmt.Errorf("database init: %w", err)
	}

	if err := c.runMigrations(); err != nil {
		c.Close() // Ensure database connection is closed on migration failure
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	if err := c.initServices(); err != nil {
		c.Close()
		return nil, fmt.Errorf("service init: %w", err)
	}

	c.startBackgroundTasks()

	return c, nil
}

// initDatabase initializes database connection / Initialise la connexion à la base de données
func (c *Container) initDatabase() error {
	dbType, ok := db.ParseDatabaseType(c.Config.Database.Type)
	if !ok {
		return fmt.Errorf("%w: %q", db.ErrUnsupportedDatabase, c.Config.Database.Type)
	}
	c.DBType = dbType

	dbConfig := db.DatabaseConfig{
		Type:            dbType,
		DSN:             c.Config.Database.DSN,
		MaxOpenConns:    c.Config.Database.MaxOpenConns,
		MaxIdleConns:    c.Config.Database.MaxIdleConns,
		ConnMaxLifetime: c.Config.Database.ConnMaxLifetime,
	}

	// Use Factory Pattern to create appropriate initializer
	initializer, err := db.NewDatabaseInitializer(dbType)
	if err != nil {
		return err
	}

	database, err := initializer.Initialize(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize %s database: %w", dbType, err)
	}

	c.DB = database
	return nil
}

// runMigrations applies database migrations / Applique les migrations de base de données
func (c *Container) runMigrations() error {
	version, err := db.NewMigrationDriverRegistry().Migrate(c.DB, c.DBType, c.Config.Database.MigrationsPath)
	if err != nil {
		return err
	}
	c.SchemaVersion = version

	slog.Info("database migrations applied", "type", c.DBType, "version", version)
	return nil
}

// initServices builds one record service per resource / Crée un service par ressource
func (c *Container) initServices() error {
	// Use Adapter Pattern for clean database abstraction
	adapter, err := repository.NewAdapter(c.DB, c.DBType.String())
	if err != nil {
		return err
	}

	for _, res := range c.Resources {
		c.Services[res.Name()] = service.NewRecordService(res, adapter.Gateway(res.Entity), c.Metrics)
	}

	slog.Info("record services initialized", "database", c.DBType, "resources", len(c.Services))
	return nil
}

// Service returns the service for a resource name / Retourne le service d'une ressource
func (c *Container) Service(name string) (*service.RecordService, bool) {
	svc, ok := c.Services[name]
	return svc, ok
}

// startBackgroundTasks starts pool stats and backups / Démarre les statistiques du pool et les sauvegardes
func (c *Container) startBackgroundTasks() {
	ctx, cancel := context.WithCancel(context.Background())
	c.ctxCancel = cancel

	c.updateDatabaseMetrics()

	interval := c.Config.Database.StatsInterval
	if interval <= 0 {
		interval = defaultStatsInterval
	}
	c.runTicker(ctx, "db_stats", interval, func() {
		c.updateDatabaseMetrics()
	})

	// Start automatic backup goroutine if enabled / Démarre la goroutine de backup automatique si activée
	if c.Config.Backup.Enabled {
		if c.DBType != db.SQLite {
			slog.Warn("backups are only supported for sqlite, skipping", "database", c.DBType)
			return
		}
		slog.Info("automatic database backup enabled",
			"interval", c.Config.Backup.Interval,
			"retention_days", c.Config.Backup.RetentionDays,
		)
		c.runTicker(ctx, "database_backup", c.Config.Backup.Interval, func() {
			if _, err := c.performBackup(ctx); err != nil {
				slog.Error("backup failed", "error", err)
			}
			// Clean old backups after creating new one / Nettoie les anciens backups après création
			if err := c.cleanOldBackups(); err != nil {
				slog.Error("backup cleanup failed", "error", err)
			}
		})
	}
}

// runTicker runs fn every interval until ctx is done / Exécute fn à chaque intervalle jusqu'à l'arrêt
func (c *Container) runTicker(ctx context.Context, name string, interval time.Duration, fn func()) {
	c.Metrics.SetBackgroundTaskStatus(name, true)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				fn()
			case <-ctx.Done():
				c.Metrics.SetBackgroundTaskStatus(name, false)
				slog.Debug("background task stopped", "task", name)
				return
			}
		}
	}()
}

// updateDatabaseMetrics updates database metrics / Met à jour les métriques de la BD
func (c *Container) updateDatabaseMetrics() {
	c.Metrics.UpdateDatabaseStats(c.DB.Stats())
}

// Close performs graceful shutdown / Effectue un arrêt gracieux
func (c *Container) Close() error {
	var err error
	c.closeOnce.Do(func() {
		if c.ctxCancel != nil {
			c.ctxCancel()
		}
		c.wg.Wait()
		if c.DB != nil {
			slog.Info("closing database")
			err = c.DB.Close()
		}
	})
	return err
}
