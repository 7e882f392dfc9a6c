package execs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/zoorunner/pkg/log"
)

// Executor runs [Command]s and traces each run.
type Executor struct {
	tracer trace.Tracer
}

func NewExecutor() Executor {
	return Executor{
		tracer: otel.Tracer("github.com/macropower/zoorunner/pkg/execs"),
	}
}

// Exec runs cmd in dir and waits for it to finish.
//
// When the command fails, the returned [Result] is non-nil if it produced
// any output, so callers can still report it.
func (e Executor) Exec(ctx context.Context, cmd Command, dir string) (*Result, error) {
	if e.tracer == nil {
		e = NewExecutor()
	}

	ctx, span := e.tracer.Start(ctx, "exec", trace.WithAttributes(
		attribute.String("command", cmd.String()),
		attribute.String("path", dir),
	))
	defer span.End()

	if cmd.Command == "" {
		return nil, ErrEmptyCommand
	}

	logger := log.WithContext(ctx).With(
		slog.String("command", cmd.String()),
		slog.String("path", dir),
	)

	start := time.Now()

	//nolint:gosec // G204: Subprocess launched with a potential tainted input or cmd arguments.
	c := exec.CommandContext(ctx, cmd.Command, cmd.Args...)
	c.Dir = dir
	c.Env = cmd.GetEnv()

	var stdout, stderr bytes.Buffer

	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "command failed")

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}

		logger.DebugContext(ctx, "command failed",
			slog.Duration("duration", time.Since(start)),
			slog.Int("exit_code", result.ExitCode),
			slog.Any("err", err),
		)

		if stdout.Len() > 0 || stderr.Len() > 0 {
			return result, fmt.Errorf("%w: %w", ErrCommandExecution, err)
		}

		return nil, fmt.Errorf("%w: %w", ErrCommandExecution, err)
	}

	logger.DebugContext(ctx, "command executed successfully",
		slog.Duration("duration", time.Since(start)),
	)

	return result, nil
}
