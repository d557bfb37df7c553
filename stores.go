package main

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/redis/go-redis/v9"
	"github.com/yashrajoria/storefront-service/catalog"
	"github.com/yashrajoria/storefront-service/config"
	"github.com/yashrajoria/storefront-service/database"
	"github.com/yashrajoria/storefront-service/locker"
	aws_pkg "github.com/yashrajoria/storefront-service/pkg/aws"
	"github.com/yashrajoria/storefront-service/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// stores bundles the repositories and the account locker.
type stores struct {
	accounts repository.AccountRepository
	orders   repository.OrderRepository
	// catalog reads the store directly; checkout snapshots prices from it.
	catalog repository.ProductRepository
	// displayCatalog may be cached and serves cart and order views.
	displayCatalog repository.ProductRepository
	locker         locker.Locker

	mongoClient *mongo.Client
	postgres    *gorm.DB
	redis       *redis.Client
}

func openStores(ctx context.Context, cfg *config.Config, awsCfg sdkaws.Config, metrics *aws_pkg.MetricsClient, logger *zap.Logger) (*stores, error) {
	s := &stores{}

	if cfg.StoreBackend == config.BackendMemory {
		logger.Warn("Using in-memory stores, data is lost on restart")
		s.accounts = repository.NewMemoryAccountRepository()
		s.orders = repository.NewMemoryOrderRepository()
		products := repository.NewMemoryProductRepository()
		seeded, err := catalog.Seed(ctx, products)
		if err != nil {
			return nil, err
		}
		logger.Info("Seeded in-memory catalog", zap.Int("products", len(seeded)))
		s.catalog = products
	} else {
		if err := s.openPersistent(ctx, cfg, awsCfg, logger); err != nil {
			s.Close(logger)
			return nil, err
		}
	}

	s.displayCatalog = s.catalog
	if cfg.RedisURL == "" {
		s.locker = locker.NewLocalLocker(cfg.LockWait)
		return s, nil
	}

	client, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		s.Close(logger)
		return nil, err
	}
	logger.Info("Connected to Redis")
	s.redis = client
	s.locker = locker.NewRedisLocker(client, cfg.LockTTL, cfg.LockWait)
	s.displayCatalog = repository.NewCachedProductRepository(s.catalog, client, cfg.ProductCacheTTL, metrics, logger)
	return s, nil
}

func (s *stores) openPersistent(ctx context.Context, cfg *config.Config, awsCfg sdkaws.Config, logger *zap.Logger) error {
	client, db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB, logger)
	if err != nil {
		return err
	}
	s.mongoClient = client

	accounts := repository.NewMongoAccountRepository(db)
	if err := accounts.CreateIndexes(ctx); err != nil {
		return err
	}
	s.accounts = accounts

	switch cfg.OrderStore {
	case config.BackendPostgres:
		gdb, err := database.ConnectPostgres(ctx, cfg.PostgresDSN(), logger)
		if err != nil {
			return err
		}
		s.postgres = gdb
		if err := repository.MigrateOrders(gdb); err != nil {
			return fmt.Errorf("migrate orders: %w", err)
		}
		s.orders = repository.NewGormOrderRepository(gdb)
	default:
		orders := repository.NewMongoOrderRepository(db)
		if err := orders.CreateIndexes(ctx); err != nil {
			return err
		}
		s.orders = orders
	}

	switch cfg.CatalogStore {
	case config.BackendDynamoDB:
		s.catalog = repository.NewDynamoProductRepository(dynamodb.NewFromConfig(awsCfg), cfg.ProductsTable)
	default:
		s.catalog = repository.NewMongoProductRepository(db)
	}

	logger.Info("Stores ready",
		zap.String("accounts", cfg.StoreBackend),
		zap.String("orders", cfg.OrderStore),
		zap.String("catalog", cfg.CatalogStore),
	)
	return nil
}

func (s *stores) Close(logger *zap.Logger) {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			logger.Error("Redis close error", zap.Error(err))
		}
	}
	if err := database.ClosePostgres(s.postgres); err != nil {
		logger.Error("PostgreSQL close error", zap.Error(err))
	}
	if err := database.DisconnectMongo(s.mongoClient); err != nil {
		logger.Error("MongoDB close error", zap.Error(err))
	}
}
