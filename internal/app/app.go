package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"kanban/internal/cache"
	"kanban/internal/config"
	"kanban/internal/repo"
	"kanban/internal/service"
	"kanban/migrations"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
)

type App struct {
	cfg    config.Config
	db     *pgxpool.Pool
	neo    neo4j.DriverWithContext
	redis  *redis.Client
	svc    *service.TaskService
	router *gin.Engine
}

func New(cfg config.Config) (*App, error) {
	a := &App{cfg: cfg}

	store, err := a.openStore(cfg)
	if err != nil {
		return nil, err
	}

	var taskCache *cache.TaskCache
	if cfg.Redis.Enabled {
		rdb, err := newRedis(cfg.Redis)
		if err != nil {
			_ = a.Close(context.Background())
			return nil, err
		}
		a.redis = rdb
		taskCache = cache.NewTaskCache(rdb, cfg.Redis.DefaultTTL.Duration())
	} else {
		log.Printf("cache disabled, reading through to the %s store", cfg.Store.Driver)
	}

	a.svc = service.NewTaskService(store, taskCache)
	a.router = NewRouter(cfg, a.svc)
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Service() *service.TaskService {
	return a.svc
}

func (a *App) Close(ctx context.Context) error {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	if a.neo != nil {
		return a.neo.Close(ctx)
	}
	return nil
}

func (a *App) openStore(cfg config.Config) (repo.TaskRepo, error) {
	switch cfg.Store.Driver {
	case config.DriverNeo4j:
		driver, err := newNeo4j(cfg.Neo4j)
		if err != nil {
			return nil, err
		}
		a.neo = driver
		r := repo.NewNeo4jTaskRepo(driver, cfg.Neo4j.Database)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.EnsureSchema(ctx); err != nil {
			_ = driver.Close(context.Background())
			return nil, err
		}
		return r, nil
	case config.DriverMemory:
		log.Printf("using in-memory store, tasks are lost on restart")
		return repo.NewMemoryTaskRepo(), nil
	default:
		if cfg.PG.MigrateOnBoot {
			if err := RunMigrations(cfg.PG.DSN); err != nil {
				return nil, err
			}
		}
		db, err := newPostgres(cfg.PG.DSN)
		if err != nil {
			return nil, err
		}
		a.db = db
		return repo.NewPGTaskRepo(db), nil
	}
}

func newPostgres(dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func newNeo4j(cfg config.Neo4jConfig) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j driver: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(context.Background())
		return nil, fmt.Errorf("neo4j connectivity: %w", err)
	}
	return driver, nil
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

// RunMigrations applies the embedded goose migrations to the Postgres store.
func RunMigrations(dsn string) error {
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("goose open db: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// NewRouter builds the HTTP engine around a task service.
func NewRouter(cfg config.Config, svc *service.TaskService) *gin.Engine {
	binding.EnableDecoderDisallowUnknownFields = true

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}))

	Setup(r, cfg, svc)
	return r
}
