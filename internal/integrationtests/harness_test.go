package integration_tests

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vk/pipedef/internal/app"
	"github.com/vk/pipedef/internal/cli"
	"github.com/vk/pipedef/internal/hcl"
	"github.com/vk/pipedef/internal/testutil"
)

// runResult captures everything a single end-to-end run produced.
type runResult struct {
	Err       error
	Output    string
	LogOutput string
	Dir       string
}

// runIntegrationTest writes files into a temporary directory and runs the
// CLI command line against it. "{dir}" in args is replaced with that
// directory.
func runIntegrationTest(t *testing.T, files map[string]string, args ...string) runResult {
	t.Helper()

	dir := testutil.WriteFiles(t, files)
	expanded := make([]string, 0, len(args)+2)
	for _, a := range args {
		if a == "{dir}" {
			a = dir
		} else if rest, ok := strings.CutPrefix(a, "{dir}/"); ok {
			a = filepath.Join(dir, rest)
		}
		expanded = append(expanded, a)
	}
	expanded = append(expanded, "--log-level", "debug")

	cfg, shouldExit, err := cli.Parse(expanded, &bytes.Buffer{})
	if err != nil || shouldExit {
		return runResult{Err: err, Dir: dir}
	}

	out := &bytes.Buffer{}
	logs := &testutil.SafeBuffer{}
	err = app.NewApp(out, logs, cfg, hcl.NewLoader()).Run(context.Background())

	t.Cleanup(func() {
		if t.Failed() {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return runResult{Err: err, Output: out.String(), LogOutput: logs.String(), Dir: dir}
}
