package app

import (
	"bytes"
	"os"
	"testing"

	"github.com/vk/pipedef/internal/config"
	"github.com/vk/pipedef/internal/testutil"
)

// SetupAppTest creates a new app instance for system testing. Command output
// and debug logs are captured in separate buffers.
func SetupAppTest(t *testing.T, cfg Config, loader config.Loader) (*App, *bytes.Buffer, *testutil.SafeBuffer) {
	t.Helper()

	cfg.LogLevel = "debug"
	validated, err := NewConfig(cfg)
	if err != nil {
		t.Fatalf("invalid app config: %v", err)
	}

	out := &bytes.Buffer{}
	logs := &testutil.SafeBuffer{}
	testApp := NewApp(out, logs, validated, loader)

	t.Cleanup(func() {
		if os.Getenv("PIPEDEF_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})

	return testApp, out, logs
}
