//go:build integration

package integration

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/homa/homa/internal/platform/db"
)

const defaultPostgresImage = "postgres:16-alpine"

// startPostgresContainer runs a throwaway Postgres through the Docker CLI,
// letting Docker pick the host port, and returns the connection string and a
// cleanup function. HOMA_TEST_PG_IMAGE overrides the image.
func startPostgresContainer(ctx context.Context) (string, func(), error) {
	if _, err := exec.LookPath("docker"); err != nil {
		return "", nil, fmt.Errorf("docker not found: %w", err)
	}
	image := os.Getenv("HOMA_TEST_PG_IMAGE")
	if image == "" {
		image = defaultPostgresImage
	}

	out, err := docker(ctx, "run", "-d", "--rm",
		"-p", "127.0.0.1::5432",
		"-e", "POSTGRES_USER=homa",
		"-e", "POSTGRES_PASSWORD=homa",
		"-e", "POSTGRES_DB=homa_test",
		"--label", "homa.integration=true",
		image,
	)
	if err != nil {
		return "", nil, err
	}
	containerID := out
	cleanup := func() {
		exec.Command("docker", "rm", "-f", containerID).Run()
	}

	hostPort, err := mappedPort(ctx, containerID)
	if err != nil {
		cleanup()
		return "", nil, err
	}

	connStr := fmt.Sprintf("postgres://homa:homa@%s/homa_test?sslmode=disable", hostPort)
	if err := waitForPostgres(ctx, connStr, 30*time.Second); err != nil {
		cleanup()
		return "", nil, err
	}
	return connStr, cleanup, nil
}

func docker(ctx context.Context, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, "docker", args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("docker %s: %w\noutput: %s", args[0], err, out)
	}
	return strings.TrimSpace(string(out)), nil
}

// mappedPort reads the host address Docker bound to the container's 5432.
func mappedPort(ctx context.Context, containerID string) (string, error) {
	out, err := docker(ctx, "port", containerID, "5432/tcp")
	if err != nil {
		return "", err
	}
	// One line per address family, e.g. "127.0.0.1:49153".
	first := strings.SplitN(out, "\n", 2)[0]
	if _, _, err := net.SplitHostPort(first); err != nil {
		return "", fmt.Errorf("unexpected docker port output %q: %w", out, err)
	}
	return first, nil
}

// waitForPostgres retries db.NewPool until the server accepts TCP connections.
func waitForPostgres(ctx context.Context, connStr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		attemptCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		pool, err := db.NewPool(attemptCtx, connStr, 2, 0)
		cancel()
		if err == nil {
			pool.Close()
			return nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
	return fmt.Errorf("postgres not ready after %v: %w", timeout, lastErr)
}
