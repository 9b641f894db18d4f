package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"chatview/internal/archive"
	"chatview/internal/attach"
	"chatview/internal/cache"
	"chatview/internal/config"
	"chatview/internal/export"
	"chatview/internal/hooks"
	"chatview/internal/logging"
	"chatview/internal/rows"
	"chatview/internal/search"
	"chatview/internal/tui"
	"chatview/internal/version"
)

const cacheMaxAge = 30 * 24 * time.Hour

type flags struct {
	cfgPath   string
	theme     string
	hooksDir  string
	exportDir string
	tz        string
	logFile   string
	query     string
	dumpPath  string
	zipPath   string
	noCache   bool
	debug     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "chatview [flags] <archive.json>",
		Short:         "Browse an exported chat archive in the terminal",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return cmd.Usage()
			}
			return run(cmd, f, args[0])
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")

	fl := cmd.Flags()
	fl.StringVar(&f.cfgPath, "config", config.DefaultPath(), "config file path (json or yaml)")
	fl.StringVar(&f.theme, "theme", "", "color theme: "+fmt.Sprint(tui.ThemeNames()))
	fl.StringVar(&f.hooksDir, "hooks-dir", "", "directory containing JS hook files")
	fl.StringVar(&f.exportDir, "export-dir", "", "default directory for exports from the viewer")
	fl.StringVar(&f.tz, "tz", "", "time zone for dates (IANA name or Local); default keeps each timestamp's offset")
	fl.StringVar(&f.logFile, "log-file", "", "debug log file")
	fl.StringVarP(&f.query, "search", "s", "", "initial search query")
	fl.StringVar(&f.dumpPath, "dump", "", "write the (filtered) view as markdown to this file and exit")
	fl.StringVar(&f.zipPath, "export", "", "write the (filtered) view as a zip to this file and exit")
	fl.BoolVar(&f.noCache, "no-cache", false, "do not cache downloaded attachments")
	fl.BoolVar(&f.debug, "debug", false, "write a debug log")
	return cmd
}

func run(cmd *cobra.Command, f flags, path string) error {
	out := cmd.OutOrStdout()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(out, "File not found: %s\n", path)
		return nil
	}

	cfg, err := config.Load(f.cfgPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, f, &cfg)

	log := zerolog.Nop()
	if cfg.Debug {
		l, closeLog, err := logging.OpenFile("debug", cfg.LogFile)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: cannot open log file: %v\n", err)
		} else {
			log = l
			defer closeLog()
		}
	}
	log.Debug().Str("archive", path).Str("config", f.cfgPath).Msg("starting")

	env, _ := hooks.LoadDir(cfg.HooksDir, log)
	msgs, stats, err := archive.LoadWithHooks(path, env, log)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("invalid time zone %q: %w", cfg.Timezone, err)
	}
	rs, err := rows.BuildWith(msgs, rows.DefaultFormatter{Location: loc})
	if err != nil {
		return err
	}
	log.Debug().Int("rows", len(rs)).Msg("rows built")

	if f.dumpPath != "" || f.zipPath != "" {
		return runBatch(out, f, path, rs)
	}

	if !(term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))) {
		return export.Text(out, rs, search.Filter(rs, f.query))
	}

	getter, closeCache := newGetter(cfg, log)
	defer closeCache()

	model := tui.New(tui.Options{
		Config: cfg,
		Log:    log,
		Source: path,
		Rows:   rs,
		Stats:  stats,
		Hooks:  env,
		Getter: getter,
		Query:  f.query,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func applyFlags(cmd *cobra.Command, f flags, cfg *config.Config) {
	fl := cmd.Flags()
	if fl.Changed("theme") {
		cfg.Theme = f.theme
	}
	if fl.Changed("hooks-dir") {
		cfg.HooksDir = f.hooksDir
	}
	if fl.Changed("export-dir") {
		cfg.ExportDir = f.exportDir
	}
	if fl.Changed("tz") {
		cfg.Timezone = f.tz
	}
	if fl.Changed("log-file") {
		cfg.LogFile = f.logFile
	}
	if f.noCache {
		cfg.NoCache = true
	}
	if f.debug {
		cfg.Debug = true
	}
}

func runBatch(out io.Writer, f flags, source string, rs []rows.Row) error {
	kept := search.Filter(rs, f.query)
	if f.dumpPath != "" {
		if err := export.MarkdownFile(f.dumpPath, rs, kept); err != nil {
			return fmt.Errorf("dump: %w", err)
		}
		fmt.Fprintf(out, "wrote %d rows -> %s\n", len(kept), f.dumpPath)
	}
	if f.zipPath != "" {
		man, err := export.Zip(f.zipPath, rs, kept, export.Meta{Source: source, Query: f.query})
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Fprintf(out, "exported %d rows (%d messages) -> %s [%s]\n", man.Kept, man.Messages, f.zipPath, man.ID)
	}
	return nil
}

// newGetter wraps the HTTP fetcher with the sqlite cache unless disabled or
// the cache cannot be opened.
func newGetter(cfg config.Config, log zerolog.Logger) (attach.Getter, func()) {
	fetcher := attach.NewFetcher(cfg.FetchTimeout, cfg.MaxDownloadBytes)
	if cfg.NoCache {
		return fetcher, func() {}
	}
	store, err := cache.Open(cfg.CachePath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.CachePath).Msg("attachment cache disabled")
		return fetcher, func() {}
	}
	ctx := context.Background()
	if n, err := store.Prune(ctx, cacheMaxAge); err == nil && n > 0 {
		log.Debug().Int64("removed", n).Msg("pruned attachment cache")
	}
	if st, err := store.Stats(ctx); err == nil {
		log.Debug().Int("entries", st.Entries).Str("size", humanize.Bytes(uint64(st.Bytes))).Msg("attachment cache")
	}
	return &cache.CachingFetcher{Store: store, Next: fetcher, Log: log}, func() { _ = store.Close() }
}
