package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/artpar/stacker/internal/core/domain"
	"github.com/artpar/stacker/internal/shell/compose"
	"github.com/artpar/stacker/internal/shell/discovery"
	"github.com/artpar/stacker/internal/shell/loader"
	"github.com/artpar/stacker/internal/shell/store"
)

// =============================================================================
// Flag Helpers
// =============================================================================

// multiFlag collects a repeatable string flag.
type multiFlag []string

func (m *multiFlag) String() string {
	return strings.Join(*m, ",")
}

func (m *multiFlag) Set(value string) error {
	*m = append(*m, value)
	return nil
}

// commandEnv bundles what every subcommand needs once flags are parsed.
type commandEnv struct {
	cfg    *Config
	logger *slog.Logger
}

func parseAndSetup(flags *flag.FlagSet, configPath *string, args []string) (*commandEnv, int) {
	if err := flags.Parse(args); err != nil {
		return nil, ExitUsage
	}
	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return nil, ExitConfigError
	}
	return &commandEnv{cfg: cfg, logger: SetupLogger(cfg)}, -1
}

func openStore(env *commandEnv) (*store.SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(env.cfg.Registry.DSN), 0o755); err != nil {
		return nil, err
	}
	return store.NewSQLiteStore(env.cfg.Registry.DSN)
}

// loadValues merges the given sources plus inline overrides and
// resolves references. When no values files are given, values.yaml
// files next to the compose template are picked up instead.
func loadValues(env *commandEnv, composeFile string, sources, overrides []string) (map[string]any, error) {
	if len(sources) == 0 {
		found, err := discovery.FilesWithName(filepath.Dir(composeFile), "values.yaml")
		if err != nil {
			return nil, err
		}
		if len(found) > 0 {
			env.logger.Info("discovered values files", "count", len(found))
			sources = found
		}
	}

	all := make([]string, 0, len(sources)+len(overrides))
	all = append(all, sources...)
	all = append(all, overrides...)
	return loader.New(env.logger).Load(all)
}

// =============================================================================
// up
// =============================================================================

func cmdUp(args []string) int {
	flags := flag.NewFlagSet("up", flag.ContinueOnError)
	configPath := flags.String("config", "", "Path to config file")
	name := flags.String("name", "", "Application name")
	file := flags.String("file", "compose.yaml.tmpl", "Compose template file")
	var valueFiles, sets multiFlag
	flags.Var(&valueFiles, "values", "Values YAML file (repeatable)")
	flags.Var(&sets, "set", "Inline override path=value (repeatable)")

	env, code := parseAndSetup(flags, configPath, args)
	if env == nil {
		return code
	}
	if *name == "" {
		fmt.Fprintln(os.Stderr, "up: -name is required")
		return ExitUsage
	}

	tree, err := loadValues(env, *file, valueFiles, sets)
	if err != nil {
		env.logger.Error("failed to load values", "error", err)
		return ExitError
	}

	rendered, err := compose.RenderFile(*file, tree)
	if err != nil {
		env.logger.Error("failed to render compose template", "file", *file, "error", err)
		return ExitError
	}

	services, err := compose.Validate(rendered)
	if err != nil {
		env.logger.Error("rendered compose file is invalid", "error", err)
		return ExitError
	}
	env.logger.Info("compose file rendered", "services", len(services))

	s, err := openStore(env)
	if err != nil {
		env.logger.Error("failed to open registry", "error", err)
		return ExitError
	}
	defer s.Close()

	ctx := context.Background()
	sources := append([]string(nil), valueFiles...)
	sources = append(sources, sets...)

	app, err := s.GetApplicationByName(ctx, *name)
	if errors.Is(err, store.ErrNotFound) {
		app, err = domain.NewApplication(*name, *file, sources)
		if err != nil {
			env.logger.Error("invalid application", "error", err)
			return ExitError
		}
		if err := s.CreateApplication(ctx, app); err != nil {
			env.logger.Error("failed to register application", "error", err)
			return ExitError
		}
	} else if err != nil {
		env.logger.Error("failed to look up application", "error", err)
		return ExitError
	} else {
		app.ComposeFile = *file
		app.ValueSources = sources
	}

	renderedPath := filepath.Join(env.cfg.Compose.RenderDir, app.Slug+".yaml")
	if err := os.MkdirAll(env.cfg.Compose.RenderDir, 0o755); err != nil {
		env.logger.Error("failed to create render directory", "error", err)
		return ExitError
	}
	if err := os.WriteFile(renderedPath, []byte(rendered), 0o644); err != nil {
		env.logger.Error("failed to write rendered compose file", "error", err)
		return ExitError
	}

	runner := compose.NewRunner(env.cfg.Compose.Bin, env.logger)
	if err := runner.Up(ctx, app.Slug, renderedPath); err != nil {
		env.logger.Error("compose up failed", "error", err)
		if tErr := app.Transition(domain.StatusFailed); tErr == nil {
			_ = s.UpdateApplication(ctx, app)
		}
		return ExitError
	}

	if err := app.Transition(domain.StatusRunning); err != nil {
		env.logger.Error("invalid status transition", "error", err)
		return ExitError
	}
	if err := s.UpdateApplication(ctx, app); err != nil {
		env.logger.Error("failed to update application", "error", err)
		return ExitError
	}

	env.logger.Info("application started", "id", app.ReferenceID, "name", app.Name)
	return ExitSuccess
}

// =============================================================================
// down
// =============================================================================

func cmdDown(args []string) int {
	flags := flag.NewFlagSet("down", flag.ContinueOnError)
	configPath := flags.String("config", "", "Path to config file")
	name := flags.String("name", "", "Application name")
	destroy := flags.Bool("destroy", false, "Remove the application from the registry")

	env, code := parseAndSetup(flags, configPath, args)
	if env == nil {
		return code
	}
	if *name == "" {
		fmt.Fprintln(os.Stderr, "down: -name is required")
		return ExitUsage
	}

	s, err := openStore(env)
	if err != nil {
		env.logger.Error("failed to open registry", "error", err)
		return ExitError
	}
	defer s.Close()

	ctx := context.Background()
	app, err := s.GetApplicationByName(ctx, *name)
	if err != nil {
		env.logger.Error("application not found", "name", *name, "error", err)
		return ExitError
	}

	renderedPath := filepath.Join(env.cfg.Compose.RenderDir, app.Slug+".yaml")
	runner := compose.NewRunner(env.cfg.Compose.Bin, env.logger)
	if err := runner.Down(ctx, app.Slug, renderedPath); err != nil {
		env.logger.Error("compose down failed", "error", err)
		return ExitError
	}

	target := domain.StatusStopped
	if *destroy {
		target = domain.StatusDestroyed
	}
	if err := app.Transition(target); err != nil {
		env.logger.Error("invalid status transition", "from", app.Status, "to", target, "error", err)
		return ExitError
	}
	if err := s.UpdateApplication(ctx, app); err != nil {
		env.logger.Error("failed to update application", "error", err)
		return ExitError
	}

	env.logger.Info("application stopped", "id", app.ReferenceID, "status", app.Status)
	return ExitSuccess
}

// =============================================================================
// status
// =============================================================================

func cmdStatus(args []string) int {
	flags := flag.NewFlagSet("status", flag.ContinueOnError)
	configPath := flags.String("config", "", "Path to config file")
	name := flags.String("name", "", "Application name")

	env, code := parseAndSetup(flags, configPath, args)
	if env == nil {
		return code
	}
	if *name == "" {
		fmt.Fprintln(os.Stderr, "status: -name is required")
		return ExitUsage
	}

	s, err := openStore(env)
	if err != nil {
		env.logger.Error("failed to open registry", "error", err)
		return ExitError
	}
	defer s.Close()

	ctx := context.Background()
	app, err := s.GetApplicationByName(ctx, *name)
	if err != nil {
		env.logger.Error("application not found", "name", *name, "error", err)
		return ExitError
	}

	fmt.Printf("%s  %s  %s\n", app.ReferenceID, app.Name, app.Status)

	renderedPath := filepath.Join(env.cfg.Compose.RenderDir, app.Slug+".yaml")
	runner := compose.NewRunner(env.cfg.Compose.Bin, env.logger)
	out, err := runner.Status(ctx, app.Slug, renderedPath)
	if err != nil {
		env.logger.Error("compose ps failed", "error", err)
		return ExitError
	}
	fmt.Print(out)
	return ExitSuccess
}

// =============================================================================
// render
// =============================================================================

func cmdRender(args []string) int {
	flags := flag.NewFlagSet("render", flag.ContinueOnError)
	configPath := flags.String("config", "", "Path to config file")
	file := flags.String("file", "compose.yaml.tmpl", "Compose template file")
	var valueFiles, sets multiFlag
	flags.Var(&valueFiles, "values", "Values YAML file (repeatable)")
	flags.Var(&sets, "set", "Inline override path=value (repeatable)")

	env, code := parseAndSetup(flags, configPath, args)
	if env == nil {
		return code
	}

	tree, err := loadValues(env, *file, valueFiles, sets)
	if err != nil {
		env.logger.Error("failed to load values", "error", err)
		return ExitError
	}

	rendered, err := compose.RenderFile(*file, tree)
	if err != nil {
		env.logger.Error("failed to render compose template", "file", *file, "error", err)
		return ExitError
	}

	fmt.Print(rendered)
	return ExitSuccess
}

// =============================================================================
// values
// =============================================================================

func cmdValues(args []string) int {
	flags := flag.NewFlagSet("values", flag.ContinueOnError)
	configPath := flags.String("config", "", "Path to config file")
	var valueFiles, sets multiFlag
	flags.Var(&valueFiles, "values", "Values YAML file (repeatable)")
	flags.Var(&sets, "set", "Inline override path=value (repeatable)")

	env, code := parseAndSetup(flags, configPath, args)
	if env == nil {
		return code
	}

	tree, err := loadValues(env, ".", valueFiles, sets)
	if err != nil {
		env.logger.Error("failed to load values", "error", err)
		return ExitError
	}

	out, err := compose.EncodeValues(tree)
	if err != nil {
		env.logger.Error("failed to encode values", "error", err)
		return ExitError
	}

	fmt.Print(out)
	return ExitSuccess
}

// =============================================================================
// list
// =============================================================================

func cmdList(args []string) int {
	flags := flag.NewFlagSet("list", flag.ContinueOnError)
	configPath := flags.String("config", "", "Path to config file")

	env, code := parseAndSetup(flags, configPath, args)
	if env == nil {
		return code
	}

	s, err := openStore(env)
	if err != nil {
		env.logger.Error("failed to open registry", "error", err)
		return ExitError
	}
	defer s.Close()

	apps, err := s.ListApplications(context.Background(), store.DefaultListOptions())
	if err != nil {
		env.logger.Error("failed to list applications", "error", err)
		return ExitError
	}

	for _, app := range apps {
		fmt.Printf("%s  %-20s  %-10s  %s\n", app.ReferenceID, app.Name, app.Status, app.ComposeFile)
	}
	return ExitSuccess
}
