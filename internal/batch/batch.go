// Package batch runs a complete split: load a batch, group it on delimiter
// pages and hand the groups to a sink.
package batch

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ironsheep/image-delimit/internal/config"
	"github.com/ironsheep/image-delimit/internal/grouping"
	"github.com/ironsheep/image-delimit/internal/imaging"
	"github.com/ironsheep/image-delimit/internal/logging"
	"github.com/ironsheep/image-delimit/internal/sink"
	"github.com/ironsheep/image-delimit/internal/source"
)

// Report summarizes one run.
type Report struct {
	RunID      string              `json:"run_id"`
	Images     int                 `json:"images"`
	Blanks     int                 `json:"blanks"`
	Groups     [][]string          `json:"groups"`
	Decisions  []grouping.Decision `json:"decisions"`
	Placements []sink.Placement    `json:"placements,omitempty"`
}

// Runner executes split runs with a fixed configuration.
type Runner struct {
	cfg    config.Config
	cache  *imaging.ImageCache
	logger *zap.Logger
}

// NewRunner creates a Runner. A nil cache gets a fresh one honouring the
// configured smoothing radius; a nil logger disables logging.
func NewRunner(cfg config.Config, cache *imaging.ImageCache, logger *zap.Logger) *Runner {
	if cache == nil {
		cache = imaging.NewImageCache(imaging.WithSmoothing(cfg.SmoothRadius))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{cfg: cfg, cache: cache, logger: logger}
}

// Run loads input (a directory, a PDF or a single image) and processes it.
func (r *Runner) Run(ctx context.Context, input string, out sink.Sink) (*Report, error) {
	items, err := source.Load(ctx, input, r.cache, source.Options{
		Workers:      r.cfg.DecodeWorkers(),
		DPI:          r.cfg.PDFDPI,
		SmoothRadius: r.cfg.SmoothRadius,
	})
	if err != nil {
		return nil, logging.NewOperationError("load", "", err)
	}
	r.logger.Info("batch loaded", zap.String("input", input), zap.Int("images", len(items)))
	return r.Process(ctx, items, out)
}

// Process groups already loaded items and saves the groups through out. Each
// item is classified exactly once, in order. A nil out skips persistence.
func (r *Runner) Process(ctx context.Context, items []source.Item, out sink.Sink) (*Report, error) {
	runID := uuid.NewString()
	log := logging.WithOperation(r.logger, "split", runID)

	groups, decisions := grouping.SplitWithDecisions(items, r.cfg.Classifier())
	report := newReport(items, groups, decisions)
	report.RunID = runID

	for _, d := range decisions {
		log.Debug("image classified",
			zap.String("name", items[d.Index].Name),
			zap.Bool("blank", d.Blank),
			zap.Float64("score", d.Score))
	}
	log.Info("batch grouped", zap.Int("groups", len(report.Groups)), zap.Int("blanks", report.Blanks))

	if out == nil {
		return report, nil
	}
	if err := ctx.Err(); err != nil {
		return report, logging.NewOperationError("save", runID, err)
	}

	placements, err := out.Save(ctx, groups)
	report.Placements = placements
	if err != nil {
		return report, logging.NewOperationError("save", runID, err)
	}
	log.Info("batch saved", zap.Int("files", len(placements)))
	return report, nil
}

// Group classifies already loaded items and reports the grouping without
// starting a run or saving anything.
func (r *Runner) Group(items []source.Item) *Report {
	groups, decisions := grouping.SplitWithDecisions(items, r.cfg.Classifier())
	return newReport(items, groups, decisions)
}

func newReport(items []source.Item, groups [][]source.Item, decisions []grouping.Decision) *Report {
	report := &Report{
		Images:    len(items),
		Groups:    make([][]string, 0, len(groups)),
		Decisions: decisions,
	}
	for _, d := range decisions {
		if d.Blank {
			report.Blanks++
		}
	}
	for _, group := range groups {
		names := make([]string, len(group))
		for i, item := range group {
			names[i] = item.Name
		}
		report.Groups = append(report.Groups, names)
	}
	return report
}
