// Command seed resets the storefront data and loads the demo catalog,
// demo users and their order history.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/yashrajoria/storefront-service/config"
	"github.com/yashrajoria/storefront-service/database"
	applogger "github.com/yashrajoria/storefront-service/logger"
	aws_pkg "github.com/yashrajoria/storefront-service/pkg/aws"
	"github.com/yashrajoria/storefront-service/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	var extra int
	var fakeSeed uint64
	var drop bool
	flag.IntVar(&extra, "extra", 12, "number of generated products added after the watches")
	flag.Uint64Var(&fakeSeed, "faker-seed", 0, "gofakeit seed (0 picks a random one)")
	flag.BoolVar(&drop, "drop", true, "drop existing data first")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := applogger.New(cfg.AppEnv, nil)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	if cfg.UseSecrets {
		awsCfg, err := aws_pkg.LoadAWSConfig(ctx)
		if err != nil {
			logger.Fatal("Failed to load AWS config", zap.Error(err))
		}
		cfg.ApplySecrets(ctx, aws_pkg.NewSecretsClient(awsCfg))
	}
	if cfg.MongoURI == "" {
		logger.Fatal("MONGO_URI must be set")
	}

	client, db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB, logger)
	if err != nil {
		logger.Fatal("MongoDB connection failed", zap.Error(err))
	}
	defer database.DisconnectMongo(client)

	if drop {
		if err := db.Drop(ctx); err != nil {
			logger.Fatal("Failed to drop database", zap.Error(err))
		}
	}

	accounts := repository.NewMongoAccountRepository(db)
	if err := accounts.CreateIndexes(ctx); err != nil {
		logger.Fatal("Failed to create account indexes", zap.Error(err))
	}
	s := stores{accounts: accounts}

	switch cfg.CatalogStore {
	case config.BackendDynamoDB:
		awsCfg, err := aws_pkg.LoadAWSConfig(ctx)
		if err != nil {
			logger.Fatal("Failed to load AWS config", zap.Error(err))
		}
		// Existing DynamoDB items are overwritten by id, never dropped.
		s.products = repository.NewDynamoProductRepository(dynamodb.NewFromConfig(awsCfg), cfg.ProductsTable)
	default:
		s.products = repository.NewMongoProductRepository(db)
	}

	switch cfg.OrderStore {
	case config.BackendPostgres:
		gdb, err := database.ConnectPostgres(ctx, cfg.PostgresDSN(), logger)
		if err != nil {
			logger.Fatal("PostgreSQL connection failed", zap.Error(err))
		}
		defer database.ClosePostgres(gdb)
		if err := repository.MigrateOrders(gdb); err != nil {
			logger.Fatal("Migration failed", zap.Error(err))
		}
		if drop {
			if err := gdb.Exec("TRUNCATE order_items, orders").Error; err != nil {
				logger.Fatal("Failed to truncate orders", zap.Error(err))
			}
		}
		s.orders = repository.NewGormOrderRepository(gdb)
	default:
		orders := repository.NewMongoOrderRepository(db)
		if err := orders.CreateIndexes(ctx); err != nil {
			logger.Fatal("Failed to create order indexes", zap.Error(err))
		}
		s.orders = orders
	}

	sum, err := seed(ctx, s, gofakeit.New(fakeSeed), extra, bcrypt.DefaultCost)
	if err != nil {
		logger.Fatal("Seeding failed", zap.Error(err))
	}
	logger.Info("Seeding complete",
		zap.Int("products", sum.Products),
		zap.Int("accounts", sum.Accounts),
		zap.Int("orders", sum.Orders),
	)
}
