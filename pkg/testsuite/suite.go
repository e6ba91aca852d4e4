// Package testsuite boots the containers integration suites run against:
// Postgres with every migration applied, Kafka and Redis.
package testsuite

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/db"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

type BaseSuite struct {
	suite.Suite
	PgContainer    *postgres.PostgresContainer
	KafkaContainer *kafka.KafkaContainer
	RedisContainer *tcredis.RedisContainer
	DbPool         *pgxpool.Pool
	Redis          *redis.Client
	KafkaBrokers   []string
	DatabaseURL    string
	Ctx            context.Context
}

func (s *BaseSuite) SetupInfrastructure(migrationsRelPath string) {
	s.Ctx = context.Background()

	var err error
	s.PgContainer, err = postgres.Run(
		s.Ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)

	s.DatabaseURL, err = s.PgContainer.ConnectionString(s.Ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.KafkaContainer, err = kafka.Run(
		s.Ctx,
		"confluentinc/cp-kafka:7.5.0",
		kafka.WithClusterID("test-cluster"),
	)
	s.Require().NoError(err)

	s.KafkaBrokers, err = s.KafkaContainer.Brokers(s.Ctx)
	s.Require().NoError(err)

	s.RedisContainer, err = tcredis.Run(s.Ctx, "redis:7-alpine")
	s.Require().NoError(err)

	redisURL, err := s.RedisContainer.ConnectionString(s.Ctx)
	s.Require().NoError(err)

	redisOpts, err := redis.ParseURL(redisURL)
	s.Require().NoError(err)
	s.Redis = redis.NewClient(redisOpts)

	log.Printf("running migrations from %s", migrationsRelPath)
	s.Require().NoError(db.MigrateUp(s.DatabaseURL, migrationsRelPath))

	s.DbPool, err = pgxpool.New(s.Ctx, s.DatabaseURL)
	s.Require().NoError(err)
}

func (s *BaseSuite) TearDownInfrastructure() {
	if s.DbPool != nil {
		s.DbPool.Close()
	}
	if s.Redis != nil {
		_ = s.Redis.Close()
	}

	if s.PgContainer != nil {
		terminate("postgres", s.PgContainer)
	}
	if s.KafkaContainer != nil {
		terminate("kafka", s.KafkaContainer)
	}
	if s.RedisContainer != nil {
		terminate("redis", s.RedisContainer)
	}
}

func terminate(name string, c testcontainers.Container) {
	if err := testcontainers.TerminateContainer(c); err != nil {
		log.Printf("Failed to terminate %s container: %v", name, err)
	}
}

func (s *BaseSuite) TruncateTables(tableNames ...string) {
	_, err := s.DbPool.Exec(s.Ctx, fmt.Sprintf("TRUNCATE %s CASCADE", strings.Join(tableNames, ", ")))
	s.Require().NoError(err)
}

func (s *BaseSuite) FlushRedis() {
	s.Require().NoError(s.Redis.FlushAll(s.Ctx).Err())
}
