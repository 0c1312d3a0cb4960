package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/twinfer/rdfsummary"
	"github.com/twinfer/rdfsummary/internal/logger"
	"github.com/twinfer/rdfsummary/rdf"
)

// now is replaced in tests.
var now = time.Now

func run(ctx context.Context, cfg Config, stdout io.Writer) error {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	return summarize(ctx, cfg, log, stdout)
}

func summarize(ctx context.Context, cfg Config, log *logger.Logger, stdout io.Writer) error {
	start := now()
	s := rdfsummary.NewSummarizer(
		rdfsummary.WithLogger(log.Zap()),
		rdfsummary.WithWorkers(cfg.Workers),
		rdfsummary.WithCacheSize(cfg.CacheSize),
	)

	if cfg.CurieMap != "" {
		n, err := loadCurieMap(s, cfg.CurieMap, cfg.CurieFormat)
		if err != nil {
			return err
		}
		log.Info("Curie map loaded", "path", cfg.CurieMap, "entries", n)
	} else {
		log.Warn("No curie map given; only the built-in exception table is used")
	}

	var stats rdfsummary.Stats
	var err error
	if len(cfg.Triples) == 1 && cfg.Triples[0] == "-" {
		stats, err = s.ReadTriples(ctx, os.Stdin)
	} else {
		stats, err = s.ReadFiles(ctx, cfg.Triples)
	}
	if err != nil {
		return fmt.Errorf("read triples: %w", err)
	}
	if stats.Triples == 0 {
		log.Warn("No line matched a supported triple shape", "lines", stats.Lines)
	}

	sum := s.Summary()
	if cfg.DB != "" {
		sum, err = mergeIntoStore(cfg.DB, sum)
		if err != nil {
			return err
		}
		log.Info("Merged into edge store", "db", cfg.DB, "edges", len(sum.Edges))
	}

	if err := writeOutput(cfg, sum, stdout); err != nil {
		return err
	}

	log.Info("Summary written",
		"lines", stats.Lines,
		"triples", stats.Triples,
		"skipped", stats.Skipped,
		"edges", len(sum.Edges),
		"elapsed", time.Since(start))
	return nil
}

func loadCurieMap(s *rdfsummary.Summarizer, path, format string) (int, error) {
	rc, err := rdfsummary.OpenInput(path)
	if err != nil {
		return 0, fmt.Errorf("open curie map: %w", err)
	}
	defer rc.Close()

	var n int
	if format == "yaml" {
		n, err = s.LoadMappingYAML(rc)
	} else {
		n, err = s.LoadMapping(rc)
	}
	if err != nil {
		return n, fmt.Errorf("load curie map: %w", err)
	}
	return n, nil
}

func mergeIntoStore(path string, sum rdfsummary.Summary) (rdfsummary.Summary, error) {
	store, err := rdfsummary.NewEdgeStoreSQLite(path)
	if err != nil {
		return sum, fmt.Errorf("open edge store: %w", err)
	}
	defer store.Close()

	if err := store.AddSummary(sum); err != nil {
		return sum, fmt.Errorf("merge into edge store: %w", err)
	}
	merged, err := store.Summary()
	if err != nil {
		return sum, fmt.Errorf("read edge store: %w", err)
	}
	return merged, nil
}

func writeOutput(cfg Config, sum rdfsummary.Summary, stdout io.Writer) error {
	title := cfg.TitleSource()
	if cfg.Output == "" || cfg.Output == "-" {
		if err := writeFormat(stdout, cfg.Format, sum, title, now()); err != nil {
			return fmt.Errorf("write %s output: %w", cfg.Format, err)
		}
		return nil
	}

	f, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := writeFormat(f, cfg.Format, sum, title, now()); err != nil {
		f.Close()
		return fmt.Errorf("write %s output: %w", cfg.Format, err)
	}
	return f.Close()
}

func writeFormat(w io.Writer, format string, sum rdfsummary.Summary, title string, ts time.Time) error {
	switch format {
	case "dot":
		return rdfsummary.Render(w, sum, title, ts)
	case "json":
		return rdfsummary.WriteJSON(w, sum, title, ts)
	case "nquads":
		return rdf.WriteNQuads(w, sum)
	case "jsonld":
		return rdf.WriteJSONLD(w, sum)
	case "mangle":
		for _, a := range sum.Atoms() {
			if _, err := fmt.Fprintf(w, "%s.\n", a); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", rdfsummary.ErrUnknownFormat, format)
	}
}
