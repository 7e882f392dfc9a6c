package execs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/zoorunner/pkg/execs"
)

func TestParse(t *testing.T) {
	t.Setenv("ZOORUNNER_TEST_BIN", "pa11y")

	tcs := map[string]struct {
		line    string
		want    execs.Command
		wantErr error
	}{
		"simple": {
			line: "python manage.py show_urls",
			want: execs.Command{Command: "python", Args: []string{"manage.py", "show_urls"}},
		},
		"quoted argument": {
			line: `checker --title "Home page" {url}`,
			want: execs.Command{Command: "checker", Args: []string{"--title", "Home page", "{url}"}},
		},
		"env prefix": {
			line: "DEBUG_TOOLBAR=False python manage.py show_urls",
			want: execs.Command{
				Command: "python",
				Args:    []string{"manage.py", "show_urls"},
				Env:     []string{"DEBUG_TOOLBAR=False"},
			},
		},
		"env expansion": {
			line: "$ZOORUNNER_TEST_BIN {url}",
			want: execs.Command{Command: "pa11y", Args: []string{"{url}"}},
		},
		"empty": {
			line:    "   ",
			wantErr: execs.ErrEmptyCommand,
		},
		"only env": {
			line:    "A=1",
			wantErr: execs.ErrEmptyCommand,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			got, err := execs.Parse(tc.line)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want.Command, got.Command)
			assert.Equal(t, tc.want.Args, got.Args)
			assert.Equal(t, tc.want.Env, got.Env)
		})
	}
}

func TestCommand_Expand(t *testing.T) {
	t.Parallel()

	cmd := execs.Command{
		Command: "checker",
		Args:    []string{"--level={level}", "{url}", "{unknown}"},
	}

	got := cmd.Expand(map[string]string{
		"url":   "http://localhost:8799/contact/",
		"level": "AA",
	})

	assert.Equal(t, []string{"--level=AA", "http://localhost:8799/contact/", "{unknown}"}, got.Args)
	assert.Equal(t, []string{"--level={level}", "{url}", "{unknown}"}, cmd.Args, "receiver is unchanged")
	assert.True(t, cmd.Mentions("url"))
	assert.False(t, got.Mentions("url"))
}

func TestCommand_WithArgs(t *testing.T) {
	t.Parallel()

	cmd := execs.Command{Command: "echo", Args: []string{"a"}}
	got := cmd.WithArgs("b", "c")

	assert.Equal(t, []string{"a", "b", "c"}, got.Args)
	assert.Equal(t, []string{"a"}, cmd.Args)
	assert.Equal(t, "echo a b c", got.String())
}

func TestExecutor_Exec(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		cmd          execs.Command
		wantStdout   string
		wantExitCode int
		wantErr      error
		wantResult   bool
	}{
		"success": {
			cmd:        execs.Command{Command: "echo", Args: []string{"/contact/"}},
			wantStdout: "/contact/\n",
			wantResult: true,
		},
		"env is passed": {
			cmd: execs.Command{
				Command: "sh",
				Args:    []string{"-c", "echo $ZR_ROUTE"},
				Env:     []string{"ZR_ROUTE=/about/"},
			},
			wantStdout: "/about/\n",
			wantResult: true,
		},
		"failure with output": {
			cmd:          execs.Command{Command: "sh", Args: []string{"-c", "echo broken >&2; exit 3"}},
			wantExitCode: 3,
			wantErr:      execs.ErrCommandExecution,
			wantResult:   true,
		},
		"failure without output": {
			cmd:     execs.Command{Command: "sh", Args: []string{"-c", "exit 1"}},
			wantErr: execs.ErrCommandExecution,
		},
		"empty command": {
			cmd:     execs.Command{},
			wantErr: execs.ErrEmptyCommand,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			res, err := execs.NewExecutor().Exec(context.Background(), tc.cmd, t.TempDir())
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}

			if !tc.wantResult {
				assert.Nil(t, res)

				return
			}

			require.NotNil(t, res)
			assert.Equal(t, tc.wantExitCode, res.ExitCode)
			if tc.wantStdout != "" {
				assert.Equal(t, tc.wantStdout, res.Stdout)
			}
		})
	}
}
