package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/meeting-notes/internal/config"
	"github.com/nguyentantai21042004/meeting-notes/internal/logger"
	"github.com/nguyentantai21042004/meeting-notes/internal/pipeline"
	"github.com/nguyentantai21042004/meeting-notes/internal/storage"
	"github.com/nguyentantai21042004/meeting-notes/internal/watcher"
	"github.com/nguyentantai21042004/meeting-notes/pkg/executor"
)

type options struct {
	input      string
	configPath string
	verbose    bool
	watch      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "meetnotes",
		Short:         "Transcribe meeting recordings and write structured summaries",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "config.yaml", "optional YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "audio file or directory (default: configured input dir)")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "keep running and process new audio dropped into the input dir")

	cmd.AddCommand(newHistoryCmd(opts))
	return cmd
}

// setup loads config and builds the logger shared by every command
func setup(opts *options) (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return nil, nil, err
	}
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}

	log, err := logger.NewWithFile(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.Logs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		return nil, nil, err
	}
	return cfg, log, nil
}

func run(ctx context.Context, opts *options) error {
	cfg, log, err := setup(opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info(ctx, "========================================")
	log.Info(ctx, "Meeting Notes")
	log.Info(ctx, "========================================")
	log.Debug(ctx, "System: %s/%s, CPU cores: %d", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
	log.Info(ctx, "Transcription: %s (%s), languages: %v", cfg.Whisper.Backend, cfg.Whisper.Model, cfg.Whisper.Languages)
	log.Info(ctx, "Summary provider: %s", cfg.LLM.Provider)

	pipeOpts := []pipeline.Option{}
	if cfg.StorageEnabled() {
		store, err := storage.New(cfg.Storage.DBPath)
		if err != nil {
			log.Warn(ctx, "Run history disabled: %v", err)
		} else {
			defer store.Close()
			pipeOpts = append(pipeOpts, pipeline.WithStore(store))
		}
	}

	pipe, err := pipeline.New(cfg, executor.New(), log, pipeOpts...)
	if err != nil {
		log.Error(ctx, "Failed to create pipeline: %v", err)
		return err
	}

	if opts.watch {
		err = watch(ctx, cfg, pipe, log, opts.input)
	} else {
		err = processInput(ctx, cfg, pipe, log, opts.input)
	}
	if err != nil {
		log.Error(ctx, "Error: %v", err)
		return err
	}
	return nil
}

func processInput(ctx context.Context, cfg *config.Config, pipe pipeline.Pipeline, log logger.Logger, input string) error {
	if input == "" {
		input = cfg.Paths.Input
	}

	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("invalid input path %s: %w", input, err)
	}

	var outputs []string
	switch {
	case info.Mode().IsRegular():
		out, err := pipe.ProcessAudio(ctx, input)
		if err != nil {
			return err
		}
		outputs = []string{out}
	case info.IsDir():
		outputs, err = pipe.ProcessDirectory(ctx, input)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid input path %s: not a file or directory", input)
	}

	log.Info(ctx, "Successfully processed %d file(s)", len(outputs))
	log.Info(ctx, "Output saved to: %s", cfg.Paths.Output)
	return nil
}

func watch(ctx context.Context, cfg *config.Config, pipe pipeline.Pipeline, log logger.Logger, dir string) error {
	if dir == "" {
		dir = cfg.Paths.Input
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create input dir: %w", err)
	}

	w, err := watcher.New(dir, pipeline.IsAudioFile, pipe.ProcessAndArchive, log, cfg.Watch.MaxConcurrent)
	if err != nil {
		return err
	}
	defer w.Stop()

	log.Info(ctx, "Watching %s, output: %s", dir, cfg.Paths.Output)
	if cfg.Paths.Archived != "" {
		log.Info(ctx, "Processed audio moves to: %s", cfg.Paths.Archived)
	}
	log.Info(ctx, "Press Ctrl+C to stop")

	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watcher: %w", err)
	}
	log.Info(ctx, "Shutdown complete")
	return nil
}
