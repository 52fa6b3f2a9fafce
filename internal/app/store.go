package app

import (
	"context"
	"fmt"

	"github.com/vadim/campus-market/internal/config"
	"github.com/vadim/campus-market/internal/database"
	convDAO "github.com/vadim/campus-market/internal/domain/conversation/dao"
	convService "github.com/vadim/campus-market/internal/domain/conversation/service"
	itemDAO "github.com/vadim/campus-market/internal/domain/item/dao"
	itemService "github.com/vadim/campus-market/internal/domain/item/service"
	orderDAO "github.com/vadim/campus-market/internal/domain/order/dao"
	orderService "github.com/vadim/campus-market/internal/domain/order/service"
	reportDAO "github.com/vadim/campus-market/internal/domain/report/dao"
	reportEntity "github.com/vadim/campus-market/internal/domain/report/entity"
	reportService "github.com/vadim/campus-market/internal/domain/report/service"
	userDAO "github.com/vadim/campus-market/internal/domain/user/dao"
	userService "github.com/vadim/campus-market/internal/domain/user/service"
)

// Store bundles the repositories of one backend
type Store struct {
	Users         userService.Repository
	Items         itemService.Repository
	Conversations convService.ConversationRepository
	Messages      convService.MessageRepository
	Orders        orderService.Repository
	ItemReports   reportService.Repository
	UserReports   reportService.Repository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Ping checks the backend is reachable
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the backend connections
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// OpenStore connects to the configured backend and prepares its collections or tables
func OpenStore(ctx context.Context, cfg config.Database) (*Store, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		return openMongoStore(ctx, cfg)
	case config.DriverPostgres:
		return openPostgresStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func openMongoStore(ctx context.Context, cfg config.Database) (*Store, error) {
	client, err := database.NewMongoClient(ctx, cfg.MongoURI, database.MongoOptions{
		MaxPoolSize:    uint64(cfg.MaxOpenConns),
		MinPoolSize:    uint64(cfg.MaxIdleConns),
		ConnectTimeout: cfg.ConnectTimeout,
	})
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.MongoDatabase)
	timeout := cfg.QueryTimeout

	users := userDAO.NewUserMongo(db, timeout)
	items := itemDAO.NewItemMongo(db, timeout)
	convs := convDAO.NewConversationMongo(db, timeout)
	msgs := convDAO.NewMessageMongo(db, timeout)
	orders := orderDAO.NewOrderMongo(db, timeout)

	for _, ix := range []indexer{users, items, convs, msgs, orders} {
		if err := ix.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("ensuring indexes: %w", err)
		}
	}

	return &Store{
		Users:         users,
		Items:         items,
		Conversations: convs,
		Messages:      msgs,
		Orders:        orders,
		ItemReports:   reportDAO.NewReportMongo(db, reportEntity.KindItem, timeout),
		UserReports:   reportDAO.NewReportMongo(db, reportEntity.KindUser, timeout),
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		},
		close: client.Disconnect,
	}, nil
}

func openPostgresStore(ctx context.Context, cfg config.Database) (*Store, error) {
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
	}

	pool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN, database.PostgresOptions{
		MaxConns:         int32(cfg.MaxOpenConns),
		MinConns:         int32(cfg.MaxIdleConns),
		StatementTimeout: cfg.QueryTimeout,
	})
	if err != nil {
		return nil, err
	}
	if err := database.EnsurePostgresSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &Store{
		Users:         userDAO.NewUserPostgres(pool),
		Items:         itemDAO.NewItemPostgres(pool),
		Conversations: convDAO.NewConversationPostgres(pool),
		Messages:      convDAO.NewMessagePostgres(pool),
		Orders:        orderDAO.NewOrderPostgres(pool),
		ItemReports:   reportDAO.NewReportPostgres(pool, reportEntity.KindItem),
		UserReports:   reportDAO.NewReportPostgres(pool, reportEntity.KindUser),
		ping:          pool.Ping,
		close: func(context.Context) error {
			pool.Close()
			return nil
		},
	}, nil
}
