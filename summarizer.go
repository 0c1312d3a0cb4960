package rdfsummary

import (
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrMappingClosed is returned when mapping input arrives after the triple
// stage has started.
var ErrMappingClosed = errors.New("rdfsummary: curie map is closed once triples are read")

// ErrUnknownFormat is returned for an unsupported output format name.
var ErrUnknownFormat = errors.New("rdfsummary: unknown output format")

// cancelCheckInterval is how many lines are read between context checks.
const cancelCheckInterval = 4096

// Stats counts what happened to the lines of a triple stream.
type Stats struct {
	Lines   int64
	Triples int64
	Skipped int64
}

func (s *Stats) add(o Stats) {
	s.Lines += o.Lines
	s.Triples += o.Triples
	s.Skipped += o.Skipped
}

// options holds configuration options for a Summarizer.
type options struct {
	logger    *zap.Logger
	cacheSize int
	workers   int
}

// Option is a function that configures a Summarizer.
type Option func(*options)

// WithLogger sets the logger used for stage progress. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithCacheSize bounds each Reducer's memo of reduced tokens.
func WithCacheSize(n int) Option {
	return func(o *options) {
		o.cacheSize = n
	}
}

// WithWorkers sets how many files ReadFiles processes at once.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// Summarizer runs the two input stages: curie mapping lines first, then
// triples. Once triples are read the CurieMap is frozen.
type Summarizer struct {
	opts   options
	curies *CurieMap

	mu          sync.Mutex
	agg         *Aggregator
	tripleStage bool
}

// NewSummarizer creates a Summarizer in the mapping stage.
func NewSummarizer(opts ...Option) *Summarizer {
	o := options{
		logger:    zap.NewNop(),
		cacheSize: 1 << 16,
		workers:   1,
	}
	for _, opt := range opts {
		opt(&o)
	}
	s := &Summarizer{opts: o, curies: NewCurieMap()}
	s.agg = NewAggregator(s.newReducer())
	return s
}

func (s *Summarizer) newReducer() *Reducer {
	return NewReducer(s.curies, WithReducerCacheSize(s.opts.cacheSize))
}

// CurieMap returns the map being built. Do not modify it after the mapping stage.
func (s *Summarizer) CurieMap() *CurieMap {
	return s.curies
}

// LoadMapping reads 'short' : 'uri' lines into the curie map.
func (s *Summarizer) LoadMapping(r io.Reader) (int, error) {
	if err := s.checkMappingStage(); err != nil {
		return 0, err
	}
	n, err := s.curies.Load(r)
	s.opts.logger.Debug("loaded curie map lines", zap.Int("accepted", n), zap.Int("entries", s.curies.Len()))
	return n, err
}

// LoadMappingYAML reads a YAML short-name -> URI document into the curie map.
func (s *Summarizer) LoadMappingYAML(r io.Reader) (int, error) {
	if err := s.checkMappingStage(); err != nil {
		return 0, err
	}
	n, err := s.curies.LoadYAML(r)
	s.opts.logger.Debug("loaded YAML curie map", zap.Int("accepted", n), zap.Int("entries", s.curies.Len()))
	return n, err
}

func (s *Summarizer) checkMappingStage() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tripleStage {
		return ErrMappingClosed
	}
	return nil
}

func (s *Summarizer) enterTripleStage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tripleStage = true
}

// ReadTriples reads an N-Triples stream into the aggregate. Lines that are
// not one of the two supported shapes are counted as skipped.
func (s *Summarizer) ReadTriples(ctx context.Context, r io.Reader) (Stats, error) {
	s.enterTripleStage()
	s.mu.Lock()
	defer s.mu.Unlock()
	stats, err := readTriples(ctx, r, s.agg)
	s.opts.logger.Debug("read triple stream",
		zap.Int64("lines", stats.Lines),
		zap.Int64("triples", stats.Triples),
		zap.Int64("skipped", stats.Skipped))
	return stats, err
}

// ReadFiles reads several triple files concurrently. Each worker keeps its
// own Reducer and Aggregator; partial tallies are merged into the shared
// aggregate as each file completes. Files ending in .gz are decompressed.
func (s *Summarizer) ReadFiles(ctx context.Context, paths []string) (Stats, error) {
	s.enterTripleStage()

	var (
		total   Stats
		totalMu sync.Mutex
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.workers)
	for _, path := range paths {
		g.Go(func() error {
			start := time.Now()
			partial := NewAggregator(s.newReducer())
			stats, err := readFile(ctx, path, partial)
			if err != nil {
				return err
			}

			s.mu.Lock()
			s.agg.Merge(partial)
			s.mu.Unlock()

			totalMu.Lock()
			total.add(stats)
			totalMu.Unlock()

			s.opts.logger.Debug("summarized file",
				zap.String("path", path),
				zap.Int64("triples", stats.Triples),
				zap.Int64("skipped", stats.Skipped),
				zap.Int("edges", partial.Len()),
				zap.Duration("elapsed", time.Since(start)))
			return nil
		})
	}
	err := g.Wait()
	return total, err
}

// Aggregator returns the shared aggregate. It must not be used while a
// read is in progress.
func (s *Summarizer) Aggregator() *Aggregator {
	return s.agg
}

// Summary returns a sorted snapshot of the aggregate.
func (s *Summarizer) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agg.Summary()
}

// Render writes the aggregate as a DOT document titled after titleSource.
func (s *Summarizer) Render(w io.Writer, titleSource string, ts time.Time) error {
	return Render(w, s.Summary(), titleSource, ts)
}

func readFile(ctx context.Context, path string, agg *Aggregator) (Stats, error) {
	rc, err := OpenInput(path)
	if err != nil {
		return Stats{}, err
	}
	defer rc.Close()
	stats, err := readTriples(ctx, rc, agg)
	if err != nil {
		return stats, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return stats, nil
}

func readTriples(ctx context.Context, r io.Reader, agg *Aggregator) (Stats, error) {
	var stats Stats
	br := bufio.NewReaderSize(r, 1<<20)
	for {
		if stats.Lines%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
		}
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			stats.Lines++
			if raw, ok := ParseTriple(line); ok {
				agg.Observe(raw)
				stats.Triples++
			} else {
				stats.Skipped++
			}
		}
		if err == io.EOF {
			return stats, nil
		}
		if err != nil {
			return stats, fmt.Errorf("failed to read triples: %w", err)
		}
	}
}

// gzipReadCloser closes both the gzip stream and the underlying file.
type gzipReadCloser struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipReadCloser) Close() error {
	gerr := g.Reader.Close()
	ferr := g.file.Close()
	if gerr != nil {
		return gerr
	}
	return ferr
}

// OpenInput opens path for reading, decompressing it when it ends in .gz.
func OpenInput(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to open gzip stream %s: %w", path, err)
	}
	return &gzipReadCloser{Reader: zr, file: f}, nil
}
