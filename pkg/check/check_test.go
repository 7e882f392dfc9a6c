package check_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/zoorunner/pkg/check"
)

func TestCommand(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		line string
		opts []check.Option
		want string
	}{
		"url appended": {
			line: "zoo-check --strict",
			want: "zoo-check --strict http://h/a/",
		},
		"url placeholder": {
			line: "zoo-check --url={url} --level {level}",
			want: "zoo-check --url=http://h/a/ --level AAA",
		},
		"all placeholders": {
			line: "zoo-check -s {static-path} -l {level} {url}",
			opts: []check.Option{check.WithLevel("AA"), check.WithStaticPath("assets")},
			want: "zoo-check -s assets -l AA http://h/a/",
		},
		"empty options keep defaults": {
			line: "zoo-check -s {static-path} {url}",
			opts: []check.Option{check.WithStaticPath("")},
			want: "zoo-check -s ./static http://h/a/",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r, err := check.NewRunner(tc.line, tc.opts...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, r.Command("http://h/a/").String())
		})
	}
}

func TestNewRunnerEmpty(t *testing.T) {
	t.Parallel()

	_, err := check.NewRunner("")
	require.Error(t, err)
}

func TestRun(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	r, err := check.NewRunner(
		`sh -c 'echo "checked $0"; case "$0" in */bad/) exit 1;; esac' {url}`,
		check.WithOutput(&out),
		check.WithDir(t.TempDir()),
	)
	require.NoError(t, err)

	report := r.Run(t.Context(), []string{"/a/", "/bad/", "/b/"})
	require.Len(t, report.Outcomes, 3, "a failure does not stop later runs")

	assert.False(t, report.Outcomes[0].Failed())
	assert.True(t, report.Outcomes[1].Failed())
	assert.False(t, report.Outcomes[2].Failed())
	assert.Equal(t, 1, report.Outcomes[1].Result.ExitCode)

	assert.Equal(t, "checked /a/\nchecked /bad/\nchecked /b/\n", out.String())

	err = report.Err()
	require.ErrorIs(t, err, check.ErrCheckFailed)
	assert.Contains(t, err.Error(), "1 URL of 3")
	assert.Contains(t, err.Error(), "/bad/")
}

func TestRunAllPass(t *testing.T) {
	t.Parallel()

	r, err := check.NewRunner("true")
	require.NoError(t, err)

	report := r.Run(t.Context(), []string{"/a/", "/b/"})
	require.NoError(t, report.Err())
	assert.Empty(t, report.Failed())
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	r, err := check.NewRunner("true")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	report := r.Run(ctx, []string{"/a/", "/b/"})
	assert.Empty(t, report.Outcomes)
}
