// Package check runs an external accessibility checker once per planned URL.
//
// The checker is an ordinary command line. Before each run, the placeholders
// {url}, {level} and {static-path} in its arguments are replaced. When no
// argument mentions {url}, the URL is appended as the last argument.
package check

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize/english"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/zoorunner/pkg/execs"
	"github.com/macropower/zoorunner/pkg/log"
)

// Placeholder keys substituted in the checker command.
const (
	KeyURL        = "url"
	KeyLevel      = "level"
	KeyStaticPath = "static-path"
)

// Defaults for the checker placeholders.
const (
	DefaultLevel      = "AAA"
	DefaultStaticPath = "./static"
)

// ErrCheckFailed is returned by [Report.Err] when any run failed.
var ErrCheckFailed = errors.New("check failed")

// Outcome is the result of checking one URL.
type Outcome struct {
	Err      error
	Result   *execs.Result
	URL      string
	Command  string
	Duration time.Duration
}

// Failed reports whether the run failed.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Report collects the outcomes of a [Runner.Run], in URL order.
type Report struct {
	Outcomes []Outcome
}

// Failed returns the failed outcomes.
func (r *Report) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Failed() {
			out = append(out, o)
		}
	}

	return out
}

// Err returns an error wrapping [ErrCheckFailed] when any run failed.
func (r *Report) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}

	errs := make([]error, 0, len(failed))
	for _, o := range failed {
		errs = append(errs, fmt.Errorf("%s: %w", o.URL, o.Err))
	}

	return fmt.Errorf("%w: %s of %d: %w",
		ErrCheckFailed, english.Plural(len(failed), "URL", ""), len(r.Outcomes), errors.Join(errs...))
}

// Option configures a [Runner].
type Option func(*Runner)

// WithLevel sets the value substituted for {level}.
func WithLevel(level string) Option {
	return func(r *Runner) {
		if level != "" {
			r.vars[KeyLevel] = level
		}
	}
}

// WithStaticPath sets the value substituted for {static-path}.
func WithStaticPath(path string) Option {
	return func(r *Runner) {
		if path != "" {
			r.vars[KeyStaticPath] = path
		}
	}
}

// WithDir sets the checker's working directory.
func WithDir(dir string) Option {
	return func(r *Runner) {
		r.dir = dir
	}
}

// WithOutput copies each run's standard output and error to w.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.out = w
	}
}

// WithExecutor sets the [execs.Executor] used to run the checker.
func WithExecutor(e execs.Executor) Option {
	return func(r *Runner) {
		r.executor = e
	}
}

// Runner runs the checker command for each URL in turn.
type Runner struct {
	out      io.Writer
	vars     map[string]string
	tracer   trace.Tracer
	dir      string
	command  execs.Command
	executor execs.Executor
}

// NewRunner parses the checker command line.
func NewRunner(line string, opts ...Option) (*Runner, error) {
	cmd, err := execs.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("checker: %w", err)
	}

	r := &Runner{
		command:  cmd,
		executor: execs.NewExecutor(),
		tracer:   otel.Tracer("github.com/macropower/zoorunner/pkg/check"),
		vars: map[string]string{
			KeyLevel:      DefaultLevel,
			KeyStaticPath: DefaultStaticPath,
		},
	}
	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Command returns the checker command as run for url.
func (r *Runner) Command(url string) execs.Command {
	vars := make(map[string]string, len(r.vars)+1)
	for k, v := range r.vars {
		vars[k] = v
	}

	vars[KeyURL] = url

	cmd := r.command.Expand(vars)
	if !r.command.Mentions(KeyURL) {
		cmd = cmd.WithArgs(url)
	}

	return cmd
}

// Run checks each URL sequentially. A failed run does not stop the
// remaining ones; cancelling ctx does.
func (r *Runner) Run(ctx context.Context, urls []string) *Report {
	ctx, span := r.tracer.Start(ctx, "check", trace.WithAttributes(
		attribute.Int("urls", len(urls)),
	))
	defer span.End()

	logger := log.WithContext(ctx)
	report := &Report{Outcomes: make([]Outcome, 0, len(urls))}

	for _, url := range urls {
		if ctx.Err() != nil {
			logger.WarnContext(ctx, "check cancelled", slog.Any("err", ctx.Err()))

			break
		}

		o := r.runOne(ctx, url)
		report.Outcomes = append(report.Outcomes, o)

		if o.Failed() {
			logger.ErrorContext(ctx, "check failed",
				slog.String("url", url),
				slog.Duration("duration", o.Duration),
				slog.Any("err", o.Err),
			)
		} else {
			logger.InfoContext(ctx, "checked",
				slog.String("url", url),
				slog.Duration("duration", o.Duration),
			)
		}
	}

	if failed := len(report.Failed()); failed > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d failed", failed))
	}

	return report
}

func (r *Runner) runOne(ctx context.Context, url string) Outcome {
	cmd := r.Command(url)
	start := time.Now()

	res, err := r.executor.Exec(ctx, cmd, r.dir)

	o := Outcome{
		URL:      url,
		Command:  cmd.String(),
		Result:   res,
		Err:      err,
		Duration: time.Since(start),
	}

	if r.out != nil && res != nil {
		_, werr := io.WriteString(r.out, res.Stdout+res.Stderr)
		if werr != nil {
			slog.DebugContext(ctx, "write checker output", slog.Any("err", werr))
		}
	}

	return o
}
