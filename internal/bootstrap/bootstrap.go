// Package bootstrap owns the daemon lifecycle: configuration, logging,
// setup validation, clipboard capability negotiation and the run modes.
package bootstrap

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"shotround/internal/app"
	"shotround/internal/domain/clipboard"
	platformconfig "shotround/internal/platform/config"
	platformerrors "shotround/internal/platform/errors"
	platformlogging "shotround/internal/platform/logging"
	"shotround/internal/platform/sysinfo"
)

// Options are the CLI-level run options.
type Options struct {
	ConfigPath string
	SingleFile string
	NoMonitor  bool
	TestOnly   bool
}

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID        string
	Title     string
	DependsOn []string
	Kind      platformerrors.Kind
	Execute   stepFn
}

type appState struct {
	opts         Options
	config       *platformconfig.Config
	configPath   string
	logProvider  *platformlogging.Logger
	bridge       clipboard.Bridge
	orchestrator *app.Orchestrator
}

// Run executes the whole lifecycle for the selected mode and blocks until
// shutdown.
func Run(ctx context.Context, opts Options) error {
	state := &appState{opts: opts}

	if err := executeInitSteps(ctx, InitGraph(), state); err != nil {
		return err
	}

	logger := state.logger()
	defer logger.Close()

	if opts.TestOnly {
		return runSetupReport(state)
	}

	if opts.SingleFile != "" {
		return state.orchestrator.ProcessFile(ctx, opts.SingleFile)
	}

	if opts.NoMonitor {
		logger.InfoTag(platformlogging.TagBoot, "monitoring disabled, use --file to process individual files")
		return nil
	}

	return runDaemon(ctx, state)
}

func (s *appState) logger() *platformlogging.Logger {
	return s.logProvider
}

// InitGraph returns the ordered init steps with their dependencies.
func InitGraph() []initStep {
	return []initStep{
		{
			ID:      "config:load",
			Title:   "Load configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:        "logging:init",
			Title:     "Initialise logging provider",
			DependsOn: []string{"config:load"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initLoggingStep,
		},
		{
			ID:        "setup:validate",
			Title:     "Validate folders",
			DependsOn: []string{"logging:init"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   validateSetupStep,
		},
		{
			ID:        "clipboard:detect",
			Title:     "Negotiate clipboard capability",
			DependsOn: []string{"logging:init"},
			Kind:      platformerrors.KindClipboard,
			Execute:   detectClipboardStep,
		},
		{
			ID:        "app:init",
			Title:     "Assemble orchestrator",
			DependsOn: []string{"setup:validate", "clipboard:detect"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initOrchestratorStep,
		},
	}
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	if state == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"execute init steps",
			"nil bootstrap state",
		)
	}

	completed := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if _, ok := completed[dep]; !ok {
				return platformerrors.New(
					platformerrors.KindBootstrap,
					step.ID,
					fmt.Sprintf("dependency %s not satisfied", dep),
				)
			}
		}
		if step.Execute == nil {
			return platformerrors.New(
				platformerrors.KindBootstrap,
				step.ID,
				"missing execute function",
			)
		}
		if err := step.Execute(ctx, state); err != nil {
			var typed *platformerrors.Error
			if stderrors.As(err, &typed) {
				return err
			}
			kind := step.Kind
			if kind == "" {
				kind = platformerrors.KindBootstrap
			}
			return platformerrors.Wrap(kind, step.ID, "bootstrap step failed", err)
		}
		completed[step.ID] = struct{}{}
	}
	return nil
}

func loadConfigStep(_ context.Context, state *appState) error {
	loader := platformconfig.NewLoader(state.opts.ConfigPath)
	result, err := loader.Load()
	if err != nil {
		return err
	}
	state.config = result.Config
	state.configPath = result.Path
	return nil
}

func initLoggingStep(_ context.Context, state *appState) error {
	if state.config == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"logging:init",
			"config not loaded",
		)
	}

	logProvider, err := platformlogging.New(platformlogging.Config{
		Level:    state.config.Log.Level,
		Dir:      state.config.Log.Dir,
		Filename: state.config.Log.File,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "logging:init", "failed to initialize logging provider", err)
	}
	state.logProvider = logProvider

	source := state.configPath
	if source == "" {
		source = "built-in defaults"
	}
	logProvider.InfoTag(platformlogging.TagBoot, "logging ready [%s] config from %s", state.config.Log.Level, source)
	return nil
}

// validateSetupStep checks the folders the daemon needs. A missing watch
// folder is fatal when watching is enabled; the output folder only has to
// be creatable.
func validateSetupStep(_ context.Context, state *appState) error {
	cfg := state.config
	logger := state.logger()

	if cfg.Watch.Enabled && state.opts.SingleFile == "" {
		info, err := os.Stat(cfg.Watch.Folder)
		if err != nil {
			return platformerrors.Wrap(platformerrors.KindBootstrap, "setup:validate",
				"watch folder does not exist: "+cfg.Watch.Folder, err)
		}
		if !info.IsDir() {
			return platformerrors.New(platformerrors.KindBootstrap, "setup:validate",
				"watch folder is not a directory: "+cfg.Watch.Folder)
		}
	}

	if cfg.Output.SaveToDesktop {
		if err := os.MkdirAll(cfg.Output.Folder, 0o755); err != nil {
			return platformerrors.Wrap(platformerrors.KindBootstrap, "setup:validate",
				"output folder is not creatable: "+cfg.Output.Folder, err)
		}
	}
	if err := os.MkdirAll(cfg.Staging.Dir, 0o755); err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "setup:validate",
			"staging dir is not creatable: "+cfg.Staging.Dir, err)
	}

	logger.InfoTag(platformlogging.TagBoot, "setup validated: watch=%s output=%s", cfg.Watch.Folder, cfg.Output.Folder)
	return nil
}

// detectClipboardStep negotiates clipboard capability once. Absence is a
// permanent downgrade to disk-only operation, never an error.
func detectClipboardStep(_ context.Context, state *appState) error {
	logger := state.logger()

	bridge, err := clipboard.Detect(logger)
	if err != nil {
		logger.WarnTag(platformlogging.TagClip, "clipboard unavailable, running disk-only: %v", err)
		state.bridge = nil
		return nil
	}
	state.bridge = bridge
	return nil
}

func initOrchestratorStep(_ context.Context, state *appState) error {
	orchestrator, err := app.New(state.config, state.logger(), state.bridge)
	if err != nil {
		return err
	}
	state.orchestrator = orchestrator
	return nil
}

// runSetupReport prints the --test diagnostics after the init graph has
// already proven that config, folders and logging work.
func runSetupReport(state *appState) error {
	cfg := state.config

	fmt.Println("setup validation passed")
	fmt.Printf("  config:     %s\n", orDefault(state.configPath, "built-in defaults"))
	fmt.Printf("  watch:      %s (enabled=%v)\n", cfg.Watch.Folder, cfg.Watch.Enabled)
	fmt.Printf("  output:     %s (save=%v replace=%v)\n", cfg.Output.Folder, cfg.Output.SaveToDesktop, cfg.Output.ReplaceOriginal)
	fmt.Printf("  staging:    %s\n", cfg.Staging.Dir)
	fmt.Printf("  clipboard:  available=%v monitor=%v\n", state.bridge != nil, cfg.Clipboard.MonitorEnabled)

	report := sysinfo.Collect()
	fmt.Printf("  host:       %s (%s), up %s\n", report.Hostname, report.Platform, report.Uptime)
	fmt.Printf("  memory:     %d MiB used of %d MiB\n",
		report.UsedMemory/(1024*1024), report.TotalMemory/(1024*1024))
	fmt.Printf("  cpus:       %d\n", report.NumCPU)
	return nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// runDaemon starts the orchestrator and blocks until a signal or a fatal
// trigger error, then shuts down with a deadline.
func runDaemon(ctx context.Context, state *appState) error {
	logger := state.logger()

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(signalCtx)
	group.Go(func() error {
		if err := state.orchestrator.Start(groupCtx); err != nil {
			return err
		}
		<-groupCtx.Done()
		return nil
	})

	<-groupCtx.Done()
	logger.InfoTag(platformlogging.TagBoot, "shutting down: %v", context.Cause(groupCtx))

	done := make(chan error, 1)
	go func() {
		state.orchestrator.Stop()
		done <- group.Wait()
	}()

	select {
	case err := <-done:
		if err != nil && !stderrors.Is(err, context.Canceled) {
			return err
		}
	case <-time.After(15 * time.Second):
		return platformerrors.New(platformerrors.KindBootstrap, "bootstrap.Run", "shutdown timed out")
	}

	logger.InfoTag(platformlogging.TagBoot, "all services stopped")
	return nil
}
