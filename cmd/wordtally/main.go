// Package main provides the CLI entrypoint for wordtally.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/wordtally/internal/catalog"
	"github.com/verte-zerg/wordtally/internal/config"
	"github.com/verte-zerg/wordtally/internal/generator"
	"github.com/verte-zerg/wordtally/internal/model"
	"github.com/verte-zerg/wordtally/internal/session"
	"github.com/verte-zerg/wordtally/internal/sink"
	"github.com/verte-zerg/wordtally/internal/store"
	"github.com/verte-zerg/wordtally/internal/tui"
)

const (
	defaultDifficulty  = string(model.Easy)
	defaultSinkKind    = config.SinkStore
	defaultSinkTimeout = 10 * time.Second
	defaultLogLevel    = "info"
	defaultCurveWindow = 20
	builtinCatalog     = "built-in"
)

var (
	trainDifficulty  string
	trainUser        string
	trainCatalog     string
	trainSinkKind    string
	trainSinkURL     string
	trainSinkQueue   string
	trainSinkTimeout time.Duration
	trainLogLevel    string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "wordtally",
		Short:         "Word memory trainer: count the table words in each question",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTrainCmd,
	}

	rootCmd.Flags().StringVar(&trainDifficulty, "difficulty", defaultDifficulty, "easy, medium or hard")
	rootCmd.Flags().StringVar(&trainUser, "user", model.DefaultUserID, "user id stored with records")
	rootCmd.Flags().StringVar(&trainCatalog, "catalog", "", "TOML catalog used to seed an empty database")
	rootCmd.Flags().StringVar(&trainSinkKind, "sink", defaultSinkKind, "record sink: store, http, amqp or none")
	rootCmd.Flags().StringVar(&trainSinkURL, "url", "", "endpoint for the http sink or broker url for the amqp sink")
	rootCmd.Flags().StringVar(&trainSinkQueue, "queue", sink.DefaultQueue, "queue name for the amqp sink")
	rootCmd.Flags().DurationVar(&trainSinkTimeout, "sink-timeout", defaultSinkTimeout, "timeout for a record delivery")
	rootCmd.Flags().StringVar(&trainLogLevel, "log-level", defaultLogLevel, "debug, info, warn or error")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCatalogCmd())
	rootCmd.AddCommand(newRecordsCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runTrainCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadConfigFile()
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "difficulty", &trainDifficulty, fileCfg.Training.Difficulty)
	applyStringConfig(cmd, "user", &trainUser, fileCfg.Training.User)
	applyStringConfig(cmd, "catalog", &trainCatalog, fileCfg.Training.Catalog)
	applyStringConfig(cmd, "sink", &trainSinkKind, fileCfg.Sink.Kind)
	applyStringConfig(cmd, "url", &trainSinkURL, fileCfg.Sink.URL)
	applyStringConfig(cmd, "queue", &trainSinkQueue, fileCfg.Sink.Queue)
	applyDurationConfig(cmd, "sink-timeout", &trainSinkTimeout, fileCfg.Sink.Timeout)
	applyStringConfig(cmd, "log-level", &trainLogLevel, fileCfg.Log.Level)

	difficulty, err := model.ParseDifficulty(trainDifficulty)
	if err != nil {
		return err
	}
	sinkKind, err := config.ParseSinkKind(trainSinkKind)
	if err != nil {
		return err
	}
	userID := strings.TrimSpace(trainUser)
	if userID == "" {
		userID = model.DefaultUserID
	}

	logger, closeLog, err := openLogFile(config.DefaultLogPath(), trainLogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	if err := ensureCatalog(ctx, st, trainCatalog, logger); err != nil {
		return err
	}
	pool, err := st.LoadPool(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	if pool.Len() < model.TableSize {
		return fmt.Errorf("%w: catalog has %d active words, need at least %d", catalog.ErrInsufficientPool, pool.Len(), model.TableSize)
	}

	recordSink, closeSink, err := openSink(sinkKind, st, trainSinkURL, trainSinkQueue, trainSinkTimeout)
	if err != nil {
		return err
	}
	defer closeSink()

	engine := session.New(generator.New(pool),
		session.WithLogger(logger),
		session.WithSinkTimeout(trainSinkTimeout),
	)
	program := tea.NewProgram(tui.NewModel(engine, recordSink, userID, difficulty), tea.WithAltScreen())
	_, runErr := program.Run()
	engine.Reset()
	engine.Wait()
	if runErr != nil {
		return fmt.Errorf("failed to run TUI: %w", runErr)
	}
	return nil
}

// ensureCatalog seeds an empty database from path, the user catalog file or the
// built-in defaults, in that order.
func ensureCatalog(ctx context.Context, st *store.Store, path string, logger *slog.Logger) error {
	words, source, err := catalogSource(path)
	if err != nil {
		return err
	}
	inserted, err := st.SeedCatalog(ctx, words)
	if err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	switch {
	case inserted > 0:
		logger.Info("seeded catalog", "source", source, "words", inserted)
	case source != builtinCatalog:
		logger.Info("catalog file skipped, database already has words; use `wordtally catalog import` to add them", "source", source)
	}
	return nil
}

func catalogSource(path string) ([]model.Word, string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		if _, err := os.Stat(config.DefaultCatalogPath()); err == nil {
			path = config.DefaultCatalogPath()
		}
	}
	if path == "" {
		words, err := catalog.Defaults()
		if err != nil {
			return nil, "", err
		}
		return words, builtinCatalog, nil
	}
	words, err := catalog.LoadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load catalog %s: %w", path, err)
	}
	return words, path, nil
}

// openSink returns the record sink for kind and a func releasing it. Remote sinks also
// write to the local store so stats keep working.
func openSink(kind string, st *store.Store, url, queue string, timeout time.Duration) (session.Sink, func(), error) {
	noop := func() {}
	switch kind {
	case config.SinkStore:
		return st, noop, nil
	case config.SinkNone:
		return sink.Discard{}, noop, nil
	case config.SinkHTTP:
		h, err := sink.NewHTTP(url, nil, timeout)
		if err != nil {
			return nil, noop, err
		}
		return sink.Multi{st, h}, noop, nil
	case config.SinkAMQP:
		if strings.TrimSpace(url) == "" {
			return nil, noop, errors.New("amqp sink requires --url")
		}
		a, err := sink.DialAMQP(url, queue)
		if err != nil {
			return nil, noop, err
		}
		return sink.Multi{st, a}, func() {
			if err := a.Close(); err != nil {
				logErrf("failed to close amqp sink: %v\n", err)
			}
		}, nil
	default:
		return nil, noop, fmt.Errorf("unknown sink kind %q", kind)
	}
}

func loadConfigFile() (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	return fileCfg, nil
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		logErrf("failed to close db: %v\n", err)
	}
}

// newLogger builds a text logger writing to w. Unknown level names log at info.
func newLogger(w io.Writer, levelName string) *slog.Logger {
	level, ok := config.ParseLevel(levelName)
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	if !ok {
		logger.Warn("unknown log level, using info", "level", levelName)
	}
	return logger
}

// openLogFile appends to path so log lines do not tear the alt-screen TUI.
func openLogFile(path, levelName string) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return newLogger(file, levelName), func() {
		if err := file.Close(); err != nil {
			logErrf("failed to close log file: %v\n", err)
		}
	}, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *config.Duration) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = value.Duration
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# wordtally configuration
# Uncomment a value to enable it. CLI flags override config values.

[training]
# difficulty = %q       # easy, medium or hard
# user = %q          # User id stored with records
# catalog = ""               # TOML catalog used to seed an empty database

[sink]
# kind = %q            # store, http, amqp or none
# url = ""                   # Endpoint (http) or broker url (amqp)
# queue = %q  # Queue name for the amqp sink
# timeout = %q             # Timeout for a record delivery

[log]
# level = %q            # debug, info, warn or error
`,
		defaultDifficulty,
		model.DefaultUserID,
		defaultSinkKind,
		sink.DefaultQueue,
		defaultSinkTimeout.String(),
		defaultLogLevel,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
