// Package batch analyzes a set of photos concurrently, one session per photo.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/robalyx/stylist/internal/photo"
	"github.com/robalyx/stylist/internal/session"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// ErrNoPhotos indicates the directory held no supported images.
var ErrNoPhotos = errors.New("no photos found")

// extensions lists the file extensions picked up by Discover.
var extensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// Form holds the answers shared by every photo in a batch.
type Form struct {
	Occasion string
	Genre    string
	Gender   string
	Weather  string
}

// Outcome is the final state of one photo's session.
type Outcome struct {
	Path     string
	Snapshot session.Snapshot
	Err      error
}

// SessionFactory creates a fresh idle session.
type SessionFactory func(opts ...session.Option) *session.Orchestrator

// Runner drives one session per photo through a bounded pool.
type Runner struct {
	newSession  SessionFactory
	concurrency int
	logger      *zap.Logger
}

// NewRunner creates a Runner that analyzes at most concurrency photos at a time.
func NewRunner(factory SessionFactory, concurrency int, logger *zap.Logger) *Runner {
	return &Runner{
		newSession:  factory,
		concurrency: max(concurrency, 1),
		logger:      logger.Named("batch"),
	}
}

// Discover lists the supported images directly inside dir, sorted by name.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if slices.Contains(extensions, strings.ToLower(filepath.Ext(entry.Name()))) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoPhotos, dir)
	}

	return paths, nil
}

// Run analyzes every photo and returns outcomes in input order.
// A failing photo never stops the others.
func (r *Runner) Run(ctx context.Context, paths []string, form Form) []*Outcome {
	var (
		outcomes = make([]*Outcome, len(paths))
		p        = pool.New().WithContext(ctx).WithMaxGoroutines(r.concurrency)
		mu       sync.Mutex
		failed   int
	)

	for i, path := range paths {
		p.Go(func(ctx context.Context) error {
			outcome := r.analyze(ctx, path, form)
			outcomes[i] = outcome

			if outcome.Err != nil {
				mu.Lock()
				failed++
				mu.Unlock()

				r.logger.Warn("Photo analysis failed",
					zap.String("path", path),
					zap.Error(outcome.Err))
			}
			return nil
		})
	}

	_ = p.Wait()

	r.logger.Info("Finished batch analysis",
		zap.Int("total", len(paths)),
		zap.Int("failed", failed))

	return outcomes
}

// analyze runs a single photo to a terminal phase.
func (r *Runner) analyze(ctx context.Context, path string, form Form) *Outcome {
	outcome := &Outcome{Path: path}

	file, err := os.Open(path)
	if err != nil {
		outcome.Err = fmt.Errorf("failed to open photo: %w", err)
		return outcome
	}
	defer file.Close()

	p, err := photo.Load(file)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	orchestrator := r.newSession()
	orchestrator.SetWeather(form.Weather)

	outcome.Err = orchestrator.Submit(ctx, session.Submission{
		Photo:    p,
		Occasion: form.Occasion,
		Genre:    form.Genre,
		Gender:   form.Gender,
	})
	outcome.Snapshot = orchestrator.Snapshot()

	return outcome
}
