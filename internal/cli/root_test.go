package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/zoorunner/internal/cli"
	"github.com/macropower/zoorunner/pkg/check"
	"github.com/macropower/zoorunner/pkg/config"
	"github.com/macropower/zoorunner/pkg/plan"
	"github.com/macropower/zoorunner/pkg/rule"
)

const testRoutes = `/
/products/<int:id>/info
/admin/users
/contact
`

const testConfig = `[include]
/products/1/info

[exclude]
/admin/.*
`

type result struct {
	stdout string
	stderr string
	err    error
}

// project writes a routes file and, when cfg is not empty, a rule file into
// a temporary directory. It returns the paths of both.
func project(t *testing.T, cfg string) (string, string) {
	t.Helper()

	dir := t.TempDir()
	routesPath := filepath.Join(dir, "routes.txt")
	configPath := filepath.Join(dir, config.DefaultFileName)

	require.NoError(t, os.WriteFile(routesPath, []byte(testRoutes), 0o600))
	if cfg != "" {
		require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0o600))
	}

	return routesPath, configPath
}

func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd := cli.NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(t.Context())

	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

//nolint:paralleltest // Commands replace the default logger.
func TestRunPlan(t *testing.T) {
	routesPath, configPath := project(t, testConfig)

	tcs := map[string]struct {
		args []string
		want string
	}{
		"text": {
			want: "/products/1/info\n/\n/contact\n",
		},
		"base url flag": {
			args: []string{"--base-url", "http://localhost:8000"},
			want: "http://localhost:8000/products/1/info\nhttp://localhost:8000/\nhttp://localhost:8000/contact\n",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			args := append([]string{"--config", configPath, "--routes-file", routesPath}, tc.args...)

			res := execute(t, "", args...)
			require.NoError(t, res.err)
			assert.Equal(t, tc.want, res.stdout)
		})
	}
}

//nolint:paralleltest // Commands replace the default logger.
func TestRunOutputFormats(t *testing.T) {
	routesPath, configPath := project(t, testConfig)

	res := execute(t, "", "--config", configPath, "-f", routesPath, "-o", "json")
	require.NoError(t, res.err)

	var p plan.Plan
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &p))
	assert.Equal(t, []string{"/products/1/info", "/", "/contact"}, p.URLs)
	require.Len(t, p.Entries, 4)
	assert.Equal(t, rule.Skip, p.Entries[2].Decision.Verdict)

	res = execute(t, "", "--config", configPath, "-f", routesPath, "-o", "yaml")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "urls:")

	res = execute(t, "", "--config", configPath, "-f", routesPath, "-o", "table")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "VERDICT")
	assert.Contains(t, res.stdout, "4 routes: 3 tested, 1 skipped; 3 URLs to check")

	res = execute(t, "", "--config", configPath, "-f", routesPath, "-o", "xml")
	require.ErrorIs(t, res.err, plan.ErrUnknownFormat)
}

//nolint:paralleltest // Commands replace the default logger.
func TestRunRunnerSection(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "routes.txt"), []byte(testRoutes), 0o600))

	configPath := filepath.Join(dir, config.DefaultFileName)
	require.NoError(t, os.WriteFile(configPath, []byte(`[runner]
base-url = http://ini.example
routes-file = routes.txt

[exclude]
/admin/
/products/
`), 0o600))

	res := execute(t, "", "--config", configPath)
	require.NoError(t, res.err)
	assert.Equal(t, "http://ini.example/\nhttp://ini.example/contact\n", res.stdout)

	t.Setenv("ZOORUNNER_BASE_URL", "http://env.example")

	res = execute(t, "", "--config", configPath)
	require.NoError(t, res.err)
	assert.Equal(t, "http://env.example/\nhttp://env.example/contact\n", res.stdout)

	res = execute(t, "", "--config", configPath, "--base-url", "http://flag.example")
	require.NoError(t, res.err)
	assert.Equal(t, "http://flag.example/\nhttp://flag.example/contact\n", res.stdout)
}

//nolint:paralleltest // Commands replace the default logger.
func TestRunStdinRoutes(t *testing.T) {
	_, configPath := project(t, "")

	res := execute(t, "/a/\n/b/<slug>/\n", "--config", configPath, "--routes-file", "-")
	require.NoError(t, res.err)
	assert.Equal(t, "/a/\n", res.stdout, "a missing rule file tests everything that can be requested")
}

//nolint:paralleltest // Commands replace the default logger.
func TestRunInvalidRule(t *testing.T) {
	routesPath, configPath := project(t, "[exclude]\n(\n/admin/\n")

	res := execute(t, "", "--config", configPath, "-f", routesPath)
	require.NoError(t, res.err)
	assert.Equal(t, "/\n/contact\n", res.stdout)
	assert.Contains(t, res.stderr, "skipping invalid rule")

	res = execute(t, "", "--config", configPath, "-f", routesPath, "--strict")
	require.ErrorIs(t, res.err, rule.ErrInvalidRule)
	assert.Contains(t, res.err.Error(), `[exclude] #1 "("`)
}

//nolint:paralleltest // Commands replace the default logger.
func TestRunNoRouteSource(t *testing.T) {
	_, configPath := project(t, testConfig)

	res := execute(t, "", "--config", configPath)
	require.ErrorIs(t, res.err, cli.ErrNoRouteSource)
}

//nolint:paralleltest // Commands replace the default logger.
func TestRunRoutesCommand(t *testing.T) {
	_, configPath := project(t, testConfig)

	res := execute(t, "", "--config", configPath, "--routes-command", `printf '/\n/admin/x\n/about/\n'`)
	require.NoError(t, res.err)
	assert.Equal(t, "/products/1/info\n/\n/about/\n", res.stdout)
}

//nolint:paralleltest // Commands replace the default logger.
func TestGatherURLs(t *testing.T) {
	dir := t.TempDir()
	routesPath := filepath.Join(dir, "routes.txt")
	configPath := filepath.Join(dir, config.DefaultFileName)
	require.NoError(t, os.WriteFile(routesPath, []byte("/\n/admin/\n/products/<id>/\n"), 0o600))

	res := execute(t, "", "--config", configPath, "-f", routesPath, "--gather-urls")
	require.NoError(t, res.err)
	assert.Equal(t, "[include]\n/\n/admin/\n/products/<id>/\n", res.stdout)

	res = execute(t, "", "--config", configPath, "-f", routesPath, "--gather-urls", "--categorize")
	require.NoError(t, res.err)
	assert.Equal(t, "[include]\n/\n## /products/<id>/\n\n[exclude]\n/admin/\n", res.stdout)

	require.NoError(t, os.WriteFile(configPath, []byte("[include]\n/\n/old/\n"), 0o600))

	res = execute(t, "", "--config", configPath, "-f", routesPath, "--gather-urls", "--diff")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "-/old/\n")
	assert.Contains(t, res.stdout, "+/admin/\n")

	require.NoError(t, os.WriteFile(configPath, []byte("[include]\n/\n/admin/\n/products/<id>/\n"), 0o600))

	res = execute(t, "", "--config", configPath, "-f", routesPath, "--gather-urls", "--diff")
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)
}

//nolint:paralleltest // Commands replace the default logger.
func TestRunCheck(t *testing.T) {
	routesPath, configPath := project(t, testConfig)

	res := execute(t, "", "--config", configPath, "-f", routesPath, "--check")
	require.ErrorIs(t, res.err, cli.ErrNoChecker)

	res = execute(t, "", "--config", configPath, "-f", routesPath,
		"--check", "--checker", `sh -c 'echo "checking $0 at $1"' {url} {level}`, "--level", "AA")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "checking /products/1/info at AA")
	assert.Contains(t, res.stderr, "checking /contact at AA")

	res = execute(t, "", "--config", configPath, "-f", routesPath,
		"--check", "--checker", `sh -c 'test "$0" != /contact'`)
	require.ErrorIs(t, res.err, check.ErrCheckFailed)
	assert.Contains(t, res.err.Error(), "1 URL of 3")
}

//nolint:paralleltest // Commands replace the default logger.
func TestInit(t *testing.T) {
	routesPath, configPath := project(t, "")

	res := execute(t, "", "init", "--config", configPath, "-f", routesPath, "--yes")
	require.NoError(t, res.err)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, "[include]\n/\n/contact\n## /products/<int:id>/info\n\n[exclude]\n/admin/users\n", string(data))

	res = execute(t, "", "init", "--config", configPath, "-f", routesPath, "--yes")
	require.ErrorIs(t, res.err, config.ErrFileExists)

	res = execute(t, "", "init", "--config", configPath, "-f", routesPath, "--yes", "--force")
	require.NoError(t, res.err)

	entries, err := os.ReadDir(filepath.Dir(configPath))
	require.NoError(t, err)
	assert.Len(t, entries, 3, "routes file, rule file and backup")
}
