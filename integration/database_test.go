//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startContainer starts req and returns the mapped host:port of exposed.
func startContainer(t *testing.T, req testcontainers.ContainerRequest, exposed string) (string, string) {
	t.Helper()
	ctx := context.Background()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, nat.Port(exposed))
	require.NoError(t, err)
	return host, port.Port()
}

// runBackendLifecycle clears, fills and inspects the stores named by env.
func runBackendLifecycle(t *testing.T, env []string, tracked bool) {
	t.Helper()
	f := writeFixture(t)
	env = append(env, "HOME="+f.Dir)

	_, err := runCommand(t, f.Dir, env, "cache", "clear")
	require.NoError(t, err)
	if tracked {
		_, err = runCommand(t, f.Dir, env, "analysis", "migrate")
		require.NoError(t, err)
		_, err = runCommand(t, f.Dir, env, "analysis", "clear")
		require.NoError(t, err)
	}

	args := append([]string{"rates", "--limit", "5"}, f.inputArgs()...)
	_, err = runCommand(t, f.Dir, env, args...)
	require.NoError(t, err)

	// The second run is served from the cache
	_, err = runCommand(t, f.Dir, env, args...)
	require.NoError(t, err)

	stdout, err := runCommand(t, f.Dir, env, "cache", "status")
	require.NoError(t, err)
	require.Contains(t, stdout, "Total Entries: 1")

	if tracked {
		stdout, err = runCommand(t, f.Dir, env, "analysis", "status")
		require.NoError(t, err)
		require.Contains(t, stdout, "Total Runs: 2")
	}
}

// TestEpigrowthWithMySQL tests the epigrowth CLI with a MySQL backend.
func TestEpigrowthWithMySQL(t *testing.T) {
	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "epigrowth",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}, "3306")

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/epigrowth?parseTime=true", host, port)
	runBackendLifecycle(t, []string{
		"EPIGROWTH_CACHE_BACKEND=mysql",
		"EPIGROWTH_CACHE_DB_CONNECT=" + connStr,
		"EPIGROWTH_ANALYSIS_BACKEND=mysql",
		"EPIGROWTH_ANALYSIS_DB_CONNECT=" + connStr,
	}, true)
}

// TestEpigrowthWithPostgres tests the epigrowth CLI with a PostgreSQL backend.
func TestEpigrowthWithPostgres(t *testing.T) {
	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}, "5432")

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port)
	runBackendLifecycle(t, []string{
		"EPIGROWTH_CACHE_BACKEND=postgresql",
		"EPIGROWTH_CACHE_DB_CONNECT=" + connStr,
		"EPIGROWTH_ANALYSIS_BACKEND=postgresql",
		"EPIGROWTH_ANALYSIS_DB_CONNECT=" + connStr,
	}, true)
}

// TestEpigrowthWithRedis tests the estimate cache on Redis. Redis holds no analysis runs.
func TestEpigrowthWithRedis(t *testing.T) {
	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}, "6379")

	runBackendLifecycle(t, []string{
		"EPIGROWTH_CACHE_BACKEND=redis",
		"EPIGROWTH_CACHE_DB_CONNECT=" + fmt.Sprintf("redis://%s:%s/0", host, port),
	}, false)
}
