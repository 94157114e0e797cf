package postgres_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/DanielPopoola/vpnshop-gateway/internal/application"
	"github.com/DanielPopoola/vpnshop-gateway/internal/config"
	"github.com/DanielPopoola/vpnshop-gateway/internal/domain"
	"github.com/DanielPopoola/vpnshop-gateway/internal/infrastructure/persistence/postgres"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type LedgerRepositoryTestSuite struct {
	suite.Suite
	container testcontainers.Container
	db        *postgres.DB
	repo      *postgres.LedgerRepository
}

func TestLedgerRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container tests in short mode")
	}
	suite.Run(t, new(LedgerRepositoryTestSuite))
}

func (suite *LedgerRepositoryTestSuite) SetupSuite() {
	t := suite.T()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "testuser",
				"POSTGRES_PASSWORD": "testpass",
				"POSTGRES_DB":       "testdb",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	suite.container = container

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := &config.DatabaseConfig{
		Enabled:         true,
		Host:            host,
		Port:            port.Int(),
		User:            "testuser",
		Password:        "testpass",
		Name:            "testdb",
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	suite.db, err = postgres.Connect(ctx, cfg, logger)
	require.NoError(t, err)
	require.NoError(t, postgres.RunMigrations(suite.db))
	require.NoError(t, postgres.RunMigrations(suite.db), "second run is a no-op")

	suite.repo = postgres.NewLedgerRepository(suite.db)
}

func (suite *LedgerRepositoryTestSuite) TearDownSuite() {
	if suite.db != nil {
		suite.db.Close()
	}
	if suite.container != nil {
		require.NoError(suite.T(), suite.container.Terminate(context.Background()))
	}
}

func (suite *LedgerRepositoryTestSuite) SetupTest() {
	_, err := suite.db.Pool.Exec(context.Background(), "TRUNCATE TABLE credential_issuances")
	require.NoError(suite.T(), err)
}

func record(userID int64, source domain.IssuanceSource, reference string, issuedAt time.Time) application.IssuanceRecord {
	return application.IssuanceRecord{
		CredentialID: uuid.NewString(),
		UserID:       userID,
		Plan:         "1 месяц",
		Source:       source,
		Reference:    reference,
		IssuedAt:     issuedAt,
		ExpiresAt:    issuedAt.Add(30 * 24 * time.Hour),
	}
}

func (suite *LedgerRepositoryTestSuite) Test_Record_AndFindByUser() {
	t := suite.T()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	older := record(42, domain.SourceCryptoPay, "inv1", base)
	newer := record(42, domain.SourceStars, "charge-1", base.Add(time.Hour))
	require.NoError(t, suite.repo.Record(ctx, older))
	require.NoError(t, suite.repo.Record(ctx, newer))
	require.NoError(t, suite.repo.Record(ctx, record(7, domain.SourceCryptoPay, "inv2", base)))

	got, err := suite.repo.FindByUser(ctx, 42, 10)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer.CredentialID, got[0].CredentialID)
	assert.Equal(t, domain.SourceStars, got[0].Source)
	assert.Equal(t, "inv1", got[1].Reference)
	assert.True(t, older.ExpiresAt.Equal(got[1].ExpiresAt))
}

func (suite *LedgerRepositoryTestSuite) Test_Record_DuplicateReference() {
	t := suite.T()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, suite.repo.Record(ctx, record(42, domain.SourceCryptoPay, "inv1", now)))
	err := suite.repo.Record(ctx, record(42, domain.SourceCryptoPay, "inv1", now))

	assert.ErrorIs(t, err, postgres.ErrAlreadyRecorded)
}

func (suite *LedgerRepositoryTestSuite) Test_Record_EmptyReferencesDoNotCollide() {
	t := suite.T()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, suite.repo.Record(ctx, record(42, domain.SourceStars, "", now)))
	require.NoError(t, suite.repo.Record(ctx, record(42, domain.SourceStars, "", now)))

	got, err := suite.repo.FindByUser(ctx, 42, 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
