package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"loc-translator/internal/cache"
	"loc-translator/internal/config"
	"loc-translator/internal/filewalker"
	"loc-translator/internal/langtag"
	"loc-translator/internal/pipeline"
	"loc-translator/internal/translation"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd := &cobra.Command{
		Use:   "loc-translator",
		Short: "Machine-translate a mod's localization folder into another language",
		Long: `Translates every l_<language>: localization file of a mod with an external
Argos Translate engine, batching many files into a few engine calls while
keeping keys, indentation, line order and embedded variables intact.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(translateCmd())
	rootCmd.AddCommand(setupCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type languageFlags struct {
	from, to         string
	fromName, toName string
}

func (lf *languageFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&lf.from, "from", "", "Source language code (default $SOURCE_LANG or en)")
	cmd.Flags().StringVar(&lf.to, "to", "", "Target language code (default $TARGET_LANG or es)")
	cmd.Flags().StringVar(&lf.fromName, "from-name", "", "Source localization name, e.g. english (derived from --from)")
	cmd.Flags().StringVar(&lf.toName, "to-name", "", "Target localization name, e.g. spanish (derived from --to)")
}

func (lf *languageFlags) resolve(cfg *config.Config) (from, to langtag.Language, err error) {
	if lf.from != "" {
		cfg.SourceLang = lf.from
	}
	if lf.to != "" {
		cfg.TargetLang = lf.to
	}
	if from, err = langtag.Resolve(cfg.SourceLang, lf.fromName); err != nil {
		return from, to, err
	}
	if to, err = langtag.Resolve(cfg.TargetLang, lf.toName); err != nil {
		return from, to, err
	}
	if from.Name == to.Name {
		return from, to, fmt.Errorf("source and target are both %q", from.Name)
	}
	return from, to, nil
}

type translateOptions struct {
	languageFlags
	force       bool
	copyOnly    bool
	skipSetup   bool
	concurrency int
}

func translateCmd() *cobra.Command {
	opts := &translateOptions{}
	cmd := &cobra.Command{
		Use:   "translate <mod-dir>",
		Short: "Translate <mod-dir>/localization/<from> into <mod-dir>/localization/<to>",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("concurrency") {
				opts.concurrency = -1
			}
			return runTranslate(args[0], opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Overwrite an existing target folder without asking")
	cmd.Flags().BoolVar(&opts.copyOnly, "copy-only", false, "Only mirror the tree and rename language tags, do not translate")
	cmd.Flags().BoolVar(&opts.skipSetup, "skip-setup", false, "Do not run the engine setup script first")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "Concurrent engine calls and batch groups, 0 = one per CPU (default $MAX_CONCURRENT_ENGINE_CALLS)")

	return cmd
}

func setupCmd() *cobra.Command {
	lf := &languageFlags{}
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Install the engine language package for a language pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(lf)
		},
	}
	lf.register(cmd)
	return cmd
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

func loadConfig() *config.Config {
	cfg := config.Load()
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("Unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	return cfg
}

// runSetup handles the `setup` command.
func runSetup(lf *languageFlags) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := loadConfig()
	from, to, err := lf.resolve(cfg)
	if err != nil {
		return err
	}
	return translation.NewProvisioner(cfg.SetupArgv()).Setup(ctx, from.Code, to.Code)
}

// runTranslate handles the `translate` command.
func runTranslate(modDir string, opts *translateOptions) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := loadConfig()
	if opts.concurrency >= 0 {
		cfg.MaxConcurrentEngineCalls = opts.concurrency
	}

	from, to, err := opts.resolve(cfg)
	if err != nil {
		return err
	}
	inputMode, err := translation.ParseInputMode(cfg.EngineInput)
	if err != nil {
		return err
	}

	// Everything that can fail on the file system fails here, before any
	// engine work starts.
	src, dst, err := filewalker.Layout(modDir, cfg.LocalizationDir, from.Name, to.Name)
	if err != nil {
		return err
	}
	tree, err := filewalker.NewWalker(from.Name, to.Name).Walk(src, dst)
	if err != nil {
		return fmt.Errorf("walk source folder: %w", err)
	}

	overwrite := opts.force
	if !overwrite && exists(dst) && isatty.IsTerminal(os.Stdin.Fd()) {
		overwrite = askConfirmation(os.Stdin, os.Stderr,
			fmt.Sprintf("A %s translation already exists at %s. Overwrite it? (y/n): ", to.Name, dst))
		if !overwrite {
			log.Info().Msg("Nothing to do")
			return nil
		}
	}
	if err := filewalker.PrepareTarget(dst, overwrite); err != nil {
		if errors.Is(err, filewalker.ErrTargetExists) {
			return fmt.Errorf("%w (use --force to overwrite)", err)
		}
		return err
	}

	translationCache, closeCache, err := openCache(ctx, cfg, from, to)
	if err != nil {
		return err
	}
	defer closeCache()

	if !opts.copyOnly && !opts.skipSetup {
		if err := translation.NewProvisioner(cfg.SetupArgv()).Setup(ctx, from.Code, to.Code); err != nil {
			return err
		}
	}

	engine := translation.NewArgosEngine(cfg.EngineArgv(), inputMode, cfg.ArgosDeviceType)
	gateway := translation.NewGateway(engine, translation.GatewayConfig{
		From:          from.Code,
		To:            to.Code,
		MaxConcurrent: cfg.MaxConcurrentEngineCalls,
		Timeout:       cfg.EngineTimeout,
		MaxRetries:    cfg.EngineRetries,
	})

	p := pipeline.New(gateway, translationCache, pipeline.Options{
		From:     from,
		To:       to,
		Groups:   gateway.Capacity(),
		Workers:  cfg.WorkerCount,
		CopyOnly: opts.copyOnly,
	})

	report, err := p.Run(ctx, tree)
	if err != nil {
		return fmt.Errorf("translation run: %w", err)
	}
	if report.WriteErrors > 0 {
		return fmt.Errorf("%d of %d files could not be written", report.WriteErrors, report.Files)
	}

	log.Info().
		Str("output", dst).
		Dur("elapsed", report.Elapsed).
		Msg("Translation finished")
	return nil
}

// openCache returns a PostgreSQL-backed cache when DATABASE_URL is set and
// an in-memory one otherwise.
func openCache(ctx context.Context, cfg *config.Config, from, to langtag.Language) (*cache.TranslationCache, func(), error) {
	if cfg.DatabaseURL == "" {
		return cache.NewTranslationCache(nil, from.Code, to.Code), func() {}, nil
	}

	pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}
	if err := pgPool.Ping(ctx); err != nil {
		pgPool.Close()
		return nil, nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")

	c := cache.NewTranslationCache(pgPool, from.Code, to.Code)
	if err := c.EnsureSchema(ctx); err != nil {
		pgPool.Close()
		return nil, nil, err
	}
	if err := c.Preload(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to preload cache")
	}
	return c, pgPool.Close, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

// askConfirmation prompts until the answer is a yes or a no.
func askConfirmation(in io.Reader, out io.Writer, message string) bool {
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, message)
		if !sc.Scan() {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(sc.Text())) {
		case "y", "yes", "s", "si", "sí":
			return true
		case "n", "no":
			return false
		default:
			fmt.Fprintln(out, "Please answer y or n.")
		}
	}
}
