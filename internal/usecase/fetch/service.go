package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"feedsift/internal/config"
	"feedsift/internal/domain/entity"
	"feedsift/internal/observability/logging"
	"feedsift/internal/observability/metrics"
	"feedsift/internal/observability/tracing"
)

// AllGroups labels the summary of an ungrouped RunAll.
const AllGroups = "all"

// Item outcomes recorded in metrics besides the gate outcomes.
const (
	outcomeSaved   = "saved"
	outcomeErrored = "errored"
)

// Service runs the ingestion pipeline for processing groups.
// Per-item and per-feed failures are isolated: a run never aborts because
// of one bad item or one dead feed.
type Service struct {
	sources    atomic.Pointer[config.SourcesFile]
	fetcher    FeedFetcher
	resolver   *ContentResolver
	classifier Classifier
	gate       *LengthGate
	saver      RecordSaver
	notifier   RecordNotifier
	config     config.PipelineConfig
}

// NewService creates a pipeline service.
//
// Parameters:
//   - sources: Initial source configuration, swappable later with SetSources
//   - fetcher: Feed reader used once per feed
//   - resolver: Picks the body of each item
//   - classifier: Keep/discard oracle, fails closed
//   - gate: Length gate deciding discard, keep or condense
//   - saver: Persistence layer for kept records
//   - notifier: Notification fan-out (can be nil to disable notifications)
//   - cfg: Pipeline tunables (item limit fallback, parallelism)
//
// Returns:
//   - *Service: Service ready for RunGroup and RunAll
func NewService(
	sources *config.SourcesFile,
	fetcher FeedFetcher,
	resolver *ContentResolver,
	classifier Classifier,
	gate *LengthGate,
	saver RecordSaver,
	notifier RecordNotifier,
	cfg config.PipelineConfig,
) *Service {
	s := &Service{
		fetcher:    fetcher,
		resolver:   resolver,
		classifier: classifier,
		gate:       gate,
		saver:      saver,
		notifier:   notifier,
		config:     cfg,
	}
	s.sources.Store(sources)
	return s
}

// SetSources swaps the source configuration. Runs already in progress keep
// the configuration they started with.
func (s *Service) SetSources(sources *config.SourcesFile) {
	s.sources.Store(sources)
}

// Sources returns the current source configuration.
func (s *Service) Sources() *config.SourcesFile {
	return s.sources.Load()
}

// RunGroup processes every source that belongs to group. An unknown or
// empty group yields an empty summary.
func (s *Service) RunGroup(ctx context.Context, group string) *entity.RunSummary {
	sources := s.sources.Load()
	if sources == nil {
		return &entity.RunSummary{Group: group}
	}
	return s.run(ctx, group, sources, sources.SourcesForGroup(group))
}

// RunAll processes every configured source in one run, ignoring groups.
func (s *Service) RunAll(ctx context.Context) *entity.RunSummary {
	sources := s.sources.Load()
	if sources == nil {
		return &entity.RunSummary{Group: AllGroups}
	}
	return s.run(ctx, AllGroups, sources, sources.Sources)
}

func (s *Service) run(ctx context.Context, group string, file *config.SourcesFile, sources []entity.FeedSource) *entity.RunSummary {
	start := time.Now()
	summary := &entity.RunSummary{Group: group, Feeds: len(sources)}

	runID := logging.RunIDFromContext(ctx)
	if runID == "" {
		runID = logging.NewRunID()
		ctx = logging.WithRunID(ctx, runID)
	}
	ctx, span := tracing.StartGroupSpan(ctx, group, runID)
	defer span.End()

	logger := logging.FromContext(ctx).With(slog.String("group", group))
	ctx = logging.WithLogger(ctx, logger)

	if len(sources) == 0 {
		logger.InfoContext(ctx, "no sources configured for group")
		return summary
	}

	limit := file.ItemLimit(s.config.DefaultItemLimit)
	logger.InfoContext(ctx, "group run started",
		slog.Int("sources", len(sources)),
		slog.Int("parallelism", s.config.FeedParallelism))

	if s.config.FeedParallelism <= 1 {
		for i := range sources {
			if ctx.Err() != nil {
				logger.WarnContext(ctx, "group run interrupted", slog.Any("error", ctx.Err()))
				break
			}
			s.processFeed(ctx, &sources[i], limit, summary)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(s.config.FeedParallelism)
		for i := range sources {
			src := &sources[i]
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				s.processFeed(ctx, src, limit, summary)
				return nil
			})
		}
		_ = g.Wait()
	}

	duration := time.Since(start)
	metrics.RecordGroupRun(group, duration)
	logger.InfoContext(ctx, "group run completed",
		slog.Int("feeds", summary.Feeds),
		slog.Int64("feeds_failed", atomic.LoadInt64(&summary.FeedsFailed)),
		slog.Int64("seen", atomic.LoadInt64(&summary.Seen)),
		slog.Int64("saved", atomic.LoadInt64(&summary.Saved)),
		slog.Int64("skipped", atomic.LoadInt64(&summary.Skipped)),
		slog.Int64("errored", atomic.LoadInt64(&summary.Errored)),
		slog.Duration("duration", duration))
	return summary
}

// processFeed fetches one feed and runs its items. Failures here drop the
// whole feed and are counted in FeedsFailed.
func (s *Service) processFeed(ctx context.Context, src *entity.FeedSource, defaultLimit int, summary *entity.RunSummary) {
	start := time.Now()
	ctx, span := tracing.StartFeedSpan(ctx, src.Name, src.URL)
	defer span.End()

	logger := logging.FromContext(ctx).With(slog.String("source", src.Name))
	ctx = logging.WithLogger(ctx, logger)

	items, err := s.fetchFeed(ctx, src)
	if err != nil {
		tracing.RecordError(span, err)
		atomic.AddInt64(&summary.FeedsFailed, 1)
		logger.WarnContext(ctx, "feed skipped",
			slog.String("url", src.URL),
			slog.Any("error", err))
		return
	}

	if limit := src.Limit(defaultLimit); len(items) > limit {
		items = items[:limit]
	}

	for _, item := range items {
		if ctx.Err() != nil {
			break
		}
		if strings.TrimSpace(item.Title) == "" {
			continue
		}
		atomic.AddInt64(&summary.Seen, 1)

		outcome := s.processItem(ctx, src, item)
		metrics.RecordItem(summary.Group, outcome)
		switch outcome {
		case outcomeSaved:
			atomic.AddInt64(&summary.Saved, 1)
		case outcomeErrored:
			atomic.AddInt64(&summary.Errored, 1)
		default:
			atomic.AddInt64(&summary.Skipped, 1)
		}
	}

	duration := time.Since(start)
	metrics.RecordFeedProcessed(src.Name, duration)
	logger.InfoContext(ctx, "feed processed",
		slog.Int("items", len(items)),
		slog.Duration("duration", duration))
}

// fetchFeed converts a fetcher panic into an error so it stays at the feed
// boundary.
func (s *Service) fetchFeed(ctx context.Context, src *entity.FeedSource) (items []FeedItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			items, err = nil, fmt.Errorf("feed fetch panic: %v", r)
		}
	}()
	return s.fetcher.Fetch(ctx, src.URL, src.Format)
}

// processItem runs resolution, classification, the length gate and
// persistence for one item and returns its outcome label.
func (s *Service) processItem(ctx context.Context, src *entity.FeedSource, item FeedItem) (outcome string) {
	ctx, span := tracing.StartItemSpan(ctx, item.Title)
	defer span.End()
	logger := logging.FromContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("item panic: %v", r)
			tracing.RecordError(span, err)
			logger.ErrorContext(ctx, "item processing failed",
				slog.String("title", item.Title),
				slog.Any("error", err))
			outcome = outcomeErrored
		}
	}()

	resolved := s.resolver.Resolve(ctx, item, src)
	classification := s.classifier.Classify(ctx, item.Title)

	decision := s.gate.Decide(ctx, resolved.Body, classification)
	switch decision.Outcome {
	case OutcomeDiscarded:
		logger.InfoContext(ctx, "item skipped by classifier",
			slog.String("title", item.Title),
			slog.String("category", string(classification.Category)))
		return string(OutcomeDiscarded)
	case OutcomeTooShort:
		logger.DebugContext(ctx, "item skipped, content too short",
			slog.String("title", item.Title),
			slog.String("content_source", string(resolved.Source)))
		return string(OutcomeTooShort)
	}

	record := &entity.NewsRecord{
		SourceName:  src.Name,
		Category:    classification.Category,
		Title:       item.Title,
		Body:        decision.Body,
		IsCondensed: decision.IsCondensed,
	}
	if !s.saver.Save(ctx, s.config.Collection, record) {
		tracing.RecordError(span, fmt.Errorf("save %q failed", item.Title))
		return outcomeErrored
	}

	logger.InfoContext(ctx, "item saved",
		slog.String("title", item.Title),
		slog.String("category", string(classification.Category)),
		slog.String("content_source", string(resolved.Source)),
		slog.Bool("condensed", decision.IsCondensed))

	if s.notifier != nil {
		s.notifier.NotifyRecord(ctx, record)
	}
	return outcomeSaved
}
