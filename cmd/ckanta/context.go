package main

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/ckanta/ckanta/config"
	"github.com/ckanta/ckanta/output"
)

// globalFlags holds the persistent flags that are not settings.
type globalFlags struct {
	configPath string
	urlBase    string
	apiKey     string
	instance   string
	debug      bool
	post       bool
}

// app is the state shared by all commands of one invocation.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	flags globalFlags

	configPath string
	file       *config.File // nil when no config file exists
	settings   *config.Settings
	formatter  output.Formatter
	logger     *slog.Logger
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{stdin: stdin, stdout: stdout, stderr: stderr}
}

// appKey is the context key for storing the app state.
type appKey struct{}

// withApp returns a new context with the app stored.
func withApp(ctx context.Context, a *app) context.Context {
	return context.WithValue(ctx, appKey{}, a)
}

// appFromContext retrieves the app from context.
// Returns an error if app is not found.
func appFromContext(ctx context.Context) (*app, error) {
	a, ok := ctx.Value(appKey{}).(*app)
	if !ok || a == nil {
		return nil, errors.New("app not found in context")
	}
	return a, nil
}
