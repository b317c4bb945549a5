package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inercia/llm-code/internal/cli"
	"github.com/inercia/llm-code/pkg/chat"
	"github.com/inercia/llm-code/pkg/config"
	"github.com/inercia/llm-code/pkg/factory"
	"github.com/inercia/llm-code/pkg/llm"
	"github.com/inercia/llm-code/pkg/workspace"
)

// app holds everything a command needs
type app struct {
	config   *config.Config
	registry *factory.Registry
	session  *chat.Session
	printer  *cli.Printer
}

func newApp() (*app, error) {
	cfg, err := config.Load(config.LoadOptions{
		Path:   configPath,
		Dir:    workDir,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	registry := factory.Default()
	if providerName != "" && !registry.Has(providerName) {
		return nil, fmt.Errorf("%w: %s (choose from %s)",
			llm.ErrUnknownProvider, providerName, strings.Join(registry.Names(), ", "))
	}

	ws, err := workspace.New(workDir, workspace.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	printer := cli.NewPrinter(os.Stdout, cli.IsTerminal())
	session := chat.NewSession(ws, registry, cfg,
		chat.WithLogger(logger),
		chat.WithObserver(printer),
	)

	return &app{
		config:   cfg,
		registry: registry,
		session:  session,
		printer:  printer,
	}, nil
}

// activate switches the session to the requested or default provider
func (a *app) activate() error {
	name := providerName
	if name == "" {
		name = a.config.DefaultProvider
	}
	return a.session.SwitchProvider(name)
}

func runInteractive(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	if err := a.activate(); err != nil {
		logger.Warn("no provider active", zap.Error(err))
		a.printer.Error("Error: %v", err)
	}

	opts := []cli.Option{cli.WithLogger(logger)}
	if path, err := historyPath(); err == nil {
		opts = append(opts, cli.WithHistoryFile(path))
	}
	return cli.New(a.session, a.printer, opts...).Run(cmd.Context())
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.activate(); err != nil {
		return err
	}

	reply, err := a.session.ProcessTurn(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	a.printer.Markdown(reply)
	if llm.IsErrorReply(reply) {
		return errors.New("provider returned an error")
	}
	return nil
}

func runFiles(_ *cobra.Command, _ []string) error {
	ws, err := workspace.New(workDir, workspace.WithLogger(logger))
	if err != nil {
		return err
	}
	for _, f := range ws.ListSupportedFiles() {
		fmt.Println(f)
	}
	return nil
}

func runCheck(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	names := a.config.Usable()
	if providerName != "" {
		names = []string{providerName}
	}
	if len(names) == 0 {
		return fmt.Errorf("%w: set an API key for at least one provider", llm.ErrProviderNotConfigured)
	}

	failed := 0
	for _, name := range names {
		if !checkProvider(cmd.Context(), a, name) {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d providers failed the connection check", failed, len(names))
	}
	return nil
}

func checkProvider(ctx context.Context, a *app, name string) bool {
	cfg, ok := a.config.Lookup(name)
	if !ok || !a.config.IsUsable(name) {
		a.printer.Error("%-12s not configured", name)
		return false
	}
	provider, err := a.registry.Create(name, cfg, logger)
	if err != nil {
		a.printer.Error("%-12s %v", name, err)
		return false
	}
	if !provider.ValidateConnection(ctx) {
		a.printer.Error("%-12s %s: connection failed", name, provider.Model())
		return false
	}
	a.printer.Success("%-12s %s: ok", name, provider.Model())
	return true
}

// historyPath returns the REPL history file, creating its directory
func historyPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "llm-code")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "history"), nil
}
