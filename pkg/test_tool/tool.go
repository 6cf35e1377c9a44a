package testtool

import (
	"context"
	"fmt"
	"strings"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// SetupContainer start a container and return host and the mapped first exposed port
func SetupContainer(ctx context.Context, req testcontainers.ContainerRequest) (testcontainers.Container, string, string, error) {
	if len(req.ExposedPorts) == 0 {
		return nil, "", "", fmt.Errorf("container %s exposes no port", req.Image)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, "", "", err
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, "", "", err
	}

	natPort, err := nat.NewPort("tcp", strings.TrimSuffix(req.ExposedPorts[0], "/tcp"))
	if err != nil {
		return nil, "", "", err
	}

	port, err := container.MappedPort(ctx, natPort)
	if err != nil {
		return nil, "", "", err
	}

	return container, host, port.Port(), nil
}

// StartMongo start mongo:7 and return its connection uri
func StartMongo(ctx context.Context) (testcontainers.Container, string, error) {
	c, host, port, err := SetupContainer(ctx, testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp"),
	})
	if err != nil {
		return nil, "", err
	}
	return c, fmt.Sprintf("mongodb://%s:%s", host, port), nil
}

// StartRedis start redis:7 and return host:port
func StartRedis(ctx context.Context) (testcontainers.Container, string, error) {
	c, host, port, err := SetupContainer(ctx, testcontainers.ContainerRequest{
		Image:        "redis:7",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	})
	if err != nil {
		return nil, "", err
	}
	return c, fmt.Sprintf("%s:%s", host, port), nil
}

// StartPostgres start postgres:16 and return its connection string
func StartPostgres(ctx context.Context) (testcontainers.Container, string, error) {
	c, host, port, err := SetupContainer(ctx, testcontainers.ContainerRequest{
		Image:        "postgres:16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "focushub",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	})
	if err != nil {
		return nil, "", err
	}
	return c, fmt.Sprintf("postgres://test:test@%s:%s/focushub?sslmode=disable", host, port), nil
}

// StartMinIO start minio with minioadmin credentials and return host:port
func StartMinIO(ctx context.Context) (testcontainers.Container, string, error) {
	c, host, port, err := SetupContainer(ctx, testcontainers.ContainerRequest{
		Image:        "minio/minio:latest",
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     "minioadmin",
			"MINIO_ROOT_PASSWORD": "minioadmin",
		},
		Cmd:        []string{"server", "/data"},
		WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp"),
	})
	if err != nil {
		return nil, "", err
	}
	return c, fmt.Sprintf("%s:%s", host, port), nil
}
