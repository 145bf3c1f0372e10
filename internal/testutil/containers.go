// Package testutil starts throwaway infrastructure containers for
// integration tests. Tests that use it must call SkipUnlessIntegration
// first; the containers need a working Docker daemon.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// SkipUnlessIntegration skips the test unless INTEGRATION_TESTS=1.
func SkipUnlessIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("INTEGRATION_TESTS") != "1" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests")
	}
}

// StartPostgres launches a temporary Postgres container and returns its
// DSN plus a terminate function.
func StartPostgres(ctx context.Context, t *testing.T) (string, func()) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16",
		Env:          map[string]string{"POSTGRES_PASSWORD": "postgres", "POSTGRES_USER": "postgres", "POSTGRES_DB": "buyerms"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(30 * time.Second),
	}

	container, host, port := start(ctx, t, req, "5432/tcp")
	dsn := fmt.Sprintf("postgres://postgres:postgres@%s:%s/buyerms?sslmode=disable", host, port)
	return dsn, terminator(t, container)
}

// StartRedis launches a temporary Redis container and returns its
// address plus a terminate function.
func StartRedis(ctx context.Context, t *testing.T) (string, func()) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}

	container, host, port := start(ctx, t, req, "6379/tcp")
	return fmt.Sprintf("%s:%s", host, port), terminator(t, container)
}

// StartRabbitMQ launches a temporary RabbitMQ container and returns its
// AMQP URL plus a terminate function.
func StartRabbitMQ(ctx context.Context, t *testing.T) (string, func()) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "rabbitmq:3-management",
		ExposedPorts: []string{"5672/tcp", "15672/tcp"},
		WaitingFor:   wait.ForListeningPort("5672/tcp").WithStartupTimeout(30 * time.Second),
	}

	container, host, port := start(ctx, t, req, "5672/tcp")
	return fmt.Sprintf("amqp://guest:guest@%s:%s/", host, port), terminator(t, container)
}

func start(ctx context.Context, t *testing.T, req testcontainers.ContainerRequest, port string) (testcontainers.Container, string, string) {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start container %s: %v", req.Image, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	mappedPort, err := container.MappedPort(ctx, nat.Port(port))
	if err != nil {
		t.Fatalf("container port: %v", err)
	}
	return container, host, mappedPort.Port()
}

func terminator(t *testing.T, container testcontainers.Container) func() {
	return func() {
		terminateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := container.Terminate(terminateCtx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	}
}
