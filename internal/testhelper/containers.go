// Package testhelper starts postgres and redis containers for integration tests.
package testhelper

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"

	"github.com/Alturino/gearshare/internal/config"
	"github.com/Alturino/gearshare/internal/infra"
	"github.com/Alturino/gearshare/internal/repository"
)

const (
	postgresImage = "postgres:16.6-alpine3.21"
	redisImage    = "redis:7.4.2-alpine3.21"
)

type Env struct {
	Pool    *pgxpool.Pool
	Cache   *redis.Client
	Queries *repository.Queries
}

func migrationPath() string {
	_, file, _, _ := runtime.Caller(0)
	root := filepath.Join(filepath.Dir(file), "..", "..")
	return "file://" + filepath.ToSlash(filepath.Join(root, "migrations"))
}

// Setup skips under -short. Containers are terminated through t.Cleanup.
func Setup(t *testing.T) *Env {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	c := context.Background()

	pgContainer, err := postgres.Run(
		c,
		postgresImage,
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.WithDatabase("gearshare"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed running postgres container with error: %s", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Logf("failed to terminate postgres container: %s", err)
		}
	})

	pgHost, err := pgContainer.Host(c)
	if err != nil {
		t.Fatalf("failed getting postgres host with error: %s", err)
	}
	pgPort, err := pgContainer.MappedPort(c, "5432/tcp")
	if err != nil {
		t.Fatalf("failed getting postgres port with error: %s", err)
	}
	dbConfig := config.Database{
		Name:           "gearshare",
		Host:           pgHost,
		Port:           uint16(pgPort.Int()),
		Username:       "postgres",
		Password:       "postgres",
		MigrationPath:  migrationPath(),
		MaxConnections: 10,
		MinConnections: 1,
	}

	pool, err := infra.NewDatabaseClient(c, dbConfig)
	if err != nil {
		t.Fatalf("failed connecting to postgres with error: %s", err)
	}
	t.Cleanup(pool.Close)

	if err = infra.Migrate(c, pool, dbConfig); err != nil {
		t.Fatalf("failed migrating postgres with error: %s", err)
	}

	redisContainer, err := testRedis.Run(c, redisImage)
	if err != nil {
		t.Fatalf("failed running redis container with error: %s", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(redisContainer); err != nil {
			t.Logf("failed to terminate redis container: %s", err)
		}
	})

	redisHost, err := redisContainer.Host(c)
	if err != nil {
		t.Fatalf("failed getting redis host with error: %s", err)
	}
	redisPort, err := redisContainer.MappedPort(c, "6379/tcp")
	if err != nil {
		t.Fatalf("failed getting redis port with error: %s", err)
	}
	cache, err := infra.NewCacheClient(c, config.Cache{Host: redisHost, Port: uint16(redisPort.Int())})
	if err != nil {
		t.Fatalf("failed connecting to redis with error: %s", err)
	}
	t.Cleanup(func() { _ = cache.Close() })

	return &Env{Pool: pool, Cache: cache, Queries: repository.New(pool)}
}

func (e *Env) SeedUser(t *testing.T, role string) repository.User {
	t.Helper()
	return e.SeedUserWithPassword(t, role, "password")
}

func (e *Env) SeedUserWithPassword(t *testing.T, role string, password string) repository.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed hashing password with error: %s", err)
	}
	name := "user-" + uuid.NewString()[:8]
	user, err := e.Queries.CreateUser(context.Background(), repository.CreateUserParams{
		Username:    name,
		Email:       fmt.Sprintf("%s@gearshare.test", name),
		Password:    string(hashed),
		Role:        role,
		PhoneNumber: "081234567890",
	})
	if err != nil {
		t.Fatalf("failed seeding user with error: %s", err)
	}
	return user
}

func (e *Env) SeedProduct(t *testing.T, name string, price string) repository.Product {
	t.Helper()
	product, err := e.Queries.CreateProduct(context.Background(), repository.CreateProductParams{
		Name:     name,
		Image:    name + ".png",
		Price:    repository.NumericFromDecimal(decimal.RequireFromString(price)),
		Category: "camping",
	})
	if err != nil {
		t.Fatalf("failed seeding product with error: %s", err)
	}
	return product
}
