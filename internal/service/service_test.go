package service

import (
	"context"
	"testing"
	"time"

	"ai-imagegen-be/internal/constant"
	"ai-imagegen-be/internal/entity"
	"ai-imagegen-be/internal/model"
	"ai-imagegen-be/internal/repository/specification"
	"ai-imagegen-be/internal/repository/unitofwork"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an in-memory sqlite database with the pool capped at one
// connection, so concurrent test goroutines serialize at the driver while the
// conditional-update semantics stay observable.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Transaction{}))
	return db
}

func newTestFactory(t *testing.T) unitofwork.RepositoryFactory {
	t.Helper()
	return unitofwork.NewRepositoryFactory(newTestDB(t))
}

func createTestUser(t *testing.T, factory unitofwork.RepositoryFactory, balance int) *entity.User {
	t.Helper()

	user := &entity.User{
		Id:            uuid.New(),
		Email:         uuid.New().String() + "@example.com",
		FullName:      "Test User",
		CreditBalance: balance,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	uow := factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.UserRepository().Create(context.Background(), user))
	return user
}

func userBalance(t *testing.T, factory unitofwork.RepositoryFactory, userId uuid.UUID) int {
	t.Helper()

	uow := factory.NewUnitOfWork(context.Background())
	user, err := uow.UserRepository().FindOne(context.Background(), specification.ByID{ID: userId})
	require.NoError(t, err)
	require.NotNil(t, user)
	return user.CreditBalance
}

// nopLogger satisfies logger.ILogger for tests.
type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func basicPlan(t *testing.T) *constant.CreditPlan {
	t.Helper()
	plan := constant.PlanById("Basic")
	require.NotNil(t, plan)
	return plan
}
