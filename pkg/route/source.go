package route

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/macropower/zoorunner/pkg/execs"
)

// ErrNoRoutes is returned by sources that produced an empty route list.
var ErrNoRoutes = errors.New("no routes found")

// Source enumerates the routes of a web application.
type Source interface {
	Routes(ctx context.Context) ([]Route, error)
}

// Static is a [Source] backed by an in-memory list.
type Static []Route

// NewStatic returns a [Static] source for the given raw patterns.
func NewStatic(paths ...string) Static {
	s := make(Static, 0, len(paths))
	for _, p := range paths {
		s = append(s, New(p))
	}

	return s
}

func (s Static) Routes(_ context.Context) ([]Route, error) {
	return append([]Route(nil), s...), nil
}

// Parse reads one route per line. Blank lines and lines starting with "#"
// are ignored. A line may carry a route name after whitespace:
//
//	/products/<int:id>/    product-detail
func Parse(r io.Reader) ([]Route, error) {
	var routes []Route

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		rt := Route{}
		fields := strings.Fields(line)
		rt.Path = Sanitize(fields[0])
		if len(fields) > 1 {
			rt.Name = strings.Join(fields[1:], " ")
		}

		routes = append(routes, rt)
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read routes: %w", err)
	}

	return routes, nil
}

// File is a [Source] reading routes from a file, or from stdin when the path
// is "-".
type File struct {
	Stdin io.Reader
	Path  string
}

func (f File) Routes(_ context.Context) ([]Route, error) {
	if f.Path == "-" {
		in := f.Stdin
		if in == nil {
			in = os.Stdin
		}

		return Parse(in)
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open routes file: %w", err)
	}
	defer func() { _ = file.Close() }()

	routes, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}

	return routes, nil
}

// Command is a [Source] that runs an external command, typically the web
// framework's own route listing, and parses its standard output.
type Command struct {
	Executor execs.Executor
	Dir      string
	Command  execs.Command
}

// NewCommand returns a [Command] source for a shell-style command line.
func NewCommand(line, dir string) (*Command, error) {
	cmd, err := execs.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("routes command: %w", err)
	}

	return &Command{
		Executor: execs.NewExecutor(),
		Command:  cmd,
		Dir:      dir,
	}, nil
}

func (c *Command) Routes(ctx context.Context) ([]Route, error) {
	res, err := c.Executor.Exec(ctx, c.Command, c.Dir)
	if err != nil {
		if res != nil && res.Stderr != "" {
			slog.ErrorContext(ctx, "routes command output", slog.String("stderr", res.Stderr))
		}

		return nil, fmt.Errorf("routes command: %w", err)
	}

	routes, err := Parse(strings.NewReader(res.Stdout))
	if err != nil {
		return nil, err
	}

	if len(routes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoRoutes, c.Command.String())
	}

	return routes, nil
}

// Gin is a [Source] for the routes registered on a [gin.Engine]. Paths
// registered for several methods are reported once, in the order gin walks
// its routing trees.
type Gin struct {
	Engine *gin.Engine
	// Methods limits the routes to these HTTP methods. Empty means GET only.
	Methods []string
}

func (g Gin) Routes(_ context.Context) ([]Route, error) {
	methods := g.Methods
	if len(methods) == 0 {
		methods = []string{"GET"}
	}

	var routes []Route
	for _, info := range g.Engine.Routes() {
		if !containsFold(methods, info.Method) {
			continue
		}

		routes = append(routes, Route{
			Path: Sanitize(info.Path),
			Name: info.Handler,
		})
	}

	return Unique(routes), nil
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}

	return false
}
