package ledger_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/ledger/pkg/idx"
	"github.com/aussiebroadwan/ledger/pkg/ledgersdk"
)

/*
 * End-to-end tests run the SDK against the real backend image. They are
 * skipped unless LEDGER_E2E_IMAGE names an image to start, for example
 * LEDGER_E2E_IMAGE=ledger-backend:latest go test ./test/e2e/...
 */

const (
	imageEnv    = "LEDGER_E2E_IMAGE"
	backendPort = "8000/tcp"
	apiPrefix   = "/api/v1"

	testPassword = "Sup3r-secret-pass!"
)

// setupBackendContainer starts the backend and returns the API base URL.
func setupBackendContainer(t *testing.T) string {
	t.Helper()

	image := os.Getenv(imageEnv)
	if image == "" {
		t.Skipf("%s not set", imageEnv)
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        image,
		ExposedPorts: []string{backendPort},
		Env: map[string]string{
			"DEBUG":         "False",
			"ALLOWED_HOSTS": "*",
			"SECRET_KEY":    "e2e-only-secret-key",
		},
		// Any answer below 500 means the app is serving; GET on a POST-only
		// endpoint gives 405.
		WaitingFor: wait.ForHTTP(apiPrefix+"/auth/login/").
			WithPort(backendPort).
			WithStatusCodeMatcher(func(status int) bool { return status < 500 }).
			WithStartupTimeout(90 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, backendPort)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s%s", host, mappedPort.Port(), apiPrefix)
}

type recordingNavigator struct {
	routes []string
}

func (n *recordingNavigator) Navigate(_ context.Context, route string, _ bool) error {
	n.routes = append(n.routes, route)
	return nil
}

// newSession builds a fresh client and session against baseURL.
func newSession(baseURL string) (*ledgersdk.Session, *recordingNavigator) {
	nav := &recordingNavigator{}
	client := ledgersdk.NewClient(baseURL, ledgersdk.WithNavigator(nav))
	return ledgersdk.NewSession(client), nav
}

// registerUser creates a uniquely named user and leaves the session
// signed in.
func registerUser(t *testing.T, session *ledgersdk.Session) *ledgersdk.User {
	t.Helper()

	name := "e2e" + strings.ToLower(idx.New().String()[14:])
	res := session.Register(t.Context(), ledgersdk.RegisterRequest{
		Username: name,
		Email:    name + "@example.com",
		Password: testPassword,
	})
	require.True(t, res.Success, "register: %s %v", res.Error, res.Errors)
	return res.Data
}
