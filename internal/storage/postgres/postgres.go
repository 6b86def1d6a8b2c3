// internal/storage/postgres/postgres.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rovshanmuradov/token-launchpad/internal/storage"
	"github.com/rovshanmuradov/token-launchpad/internal/storage/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// gormLogger adapts zap to the GORM logger.Interface.
type gormLogger struct {
	zapLogger *zap.Logger
	logLevel  logger.LogLevel
}

func newGormLogger(zapLogger *zap.Logger) logger.Interface {
	return &gormLogger{
		zapLogger: zapLogger,
		logLevel:  logger.Warn,
	}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newLogger := *l
	newLogger.logLevel = level
	return &newLogger
}

func (l *gormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Info {
		l.zapLogger.Sugar().Infof(msg, data...)
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Warn {
		l.zapLogger.Sugar().Warnf(msg, data...)
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Error {
		l.zapLogger.Sugar().Errorf(msg, data...)
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.logLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.String("sql", sql),
		zap.Int64("rows", rows),
	}

	if err != nil && err != gorm.ErrRecordNotFound {
		l.zapLogger.Error("trace", append(fields, zap.Error(err))...)
		return
	}

	if l.logLevel >= logger.Info {
		l.zapLogger.Info("trace", fields...)
	}
}

// postgresStore implements storage.Store on top of GORM.
type postgresStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore connects to postgres, retrying the initial dial with
// exponential backoff, and returns a storage.Store.
func NewStore(dsn string, zapLogger *zap.Logger) (storage.Store, error) {
	gormLogger := newGormLogger(zapLogger.Named("gorm"))

	open := func() (*gorm.DB, error) {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormLogger,
			NowFunc: func() time.Time {
				return time.Now().UTC()
			},
			DisableForeignKeyConstraintWhenMigrating: true,
			SkipDefaultTransaction:                   true,
		})
	}

	db, err := backoff.Retry(context.Background(), open,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(30*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &postgresStore{
		db:     db,
		logger: zapLogger,
	}, nil
}

// RunMigrations runs GORM AutoMigrate under an advisory lock so that
// concurrent instances do not race on schema changes.
func (p *postgresStore) RunMigrations() error {
	var lockObtained bool
	err := p.db.Raw("SELECT pg_try_advisory_lock(214)").Scan(&lockObtained).Error
	if err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	if !lockObtained {
		return fmt.Errorf("another migration is in progress")
	}
	defer p.db.Exec("SELECT pg_advisory_unlock(214)")

	err = p.db.AutoMigrate(
		&models.TokenListing{},
		&models.TrackedBalance{},
		&models.LedgerBalance{},
		&models.LedgerState{},
		&models.TradeRecord{},
		&models.LiquidityRecord{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (p *postgresStore) SaveLaunch(ctx context.Context, listing *models.TokenListing, ledger []*models.LedgerBalance) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(listing).Error; err != nil {
			return err
		}
		return upsertLedger(tx, ledger)
	})
}

func (p *postgresStore) SaveTrade(ctx context.Context, trade *models.TradeRecord, tracked *models.TrackedBalance,
	ledger []*models.LedgerBalance, nativeBalance string) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(trade).Error; err != nil {
			return err
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account"}, {Name: "token_handle"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
		}).Create(tracked).Error; err != nil {
			return err
		}
		if err := upsertLedger(tx, ledger); err != nil {
			return err
		}
		return saveNativeBalance(tx, nativeBalance)
	})
}

func (p *postgresStore) SaveLiquidity(ctx context.Context, rec *models.LiquidityRecord, ledger []*models.LedgerBalance) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		return upsertLedger(tx, ledger)
	})
}

func upsertLedger(tx *gorm.DB, ledger []*models.LedgerBalance) error {
	for _, row := range ledger {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token_handle"}, {Name: "account"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
		}).Create(row).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func saveNativeBalance(tx *gorm.DB, balance string) error {
	state := &models.LedgerState{NativeBalance: balance}
	state.ID = 1
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"native_balance", "updated_at"}),
	}).Create(state).Error
}

func (p *postgresStore) LoadListings(ctx context.Context) ([]*models.TokenListing, error) {
	var listings []*models.TokenListing
	err := p.db.WithContext(ctx).Order("launch_index asc").Find(&listings).Error
	return listings, err
}

func (p *postgresStore) LoadTrackedBalances(ctx context.Context) ([]*models.TrackedBalance, error) {
	var rows []*models.TrackedBalance
	err := p.db.WithContext(ctx).Find(&rows).Error
	return rows, err
}

func (p *postgresStore) LoadLedgerBalances(ctx context.Context) ([]*models.LedgerBalance, error) {
	var rows []*models.LedgerBalance
	err := p.db.WithContext(ctx).Find(&rows).Error
	return rows, err
}

func (p *postgresStore) LoadNativeBalance(ctx context.Context) (string, error) {
	var state models.LedgerState
	err := p.db.WithContext(ctx).First(&state, 1).Error
	if err == gorm.ErrRecordNotFound {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return state.NativeBalance, nil
}

func (p *postgresStore) ListTrades(ctx context.Context, tokenHandle string, limit, offset int) ([]*models.TradeRecord, error) {
	var trades []*models.TradeRecord
	err := p.db.WithContext(ctx).
		Where("token_handle = ?", tokenHandle).
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&trades).Error
	return trades, err
}

func (p *postgresStore) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
