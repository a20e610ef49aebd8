// Package services orchestrates the reporting pipeline: it locates and
// loads the feeds, runs the transforms, aggregates the funnel, prices
// the census and assembles the dashboard payload the transport layer
// serves.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"enrollapi/internal/cache"
	"enrollapi/internal/census"
	"enrollapi/internal/config"
	"enrollapi/internal/feed"
	"enrollapi/internal/funnel"
	"enrollapi/internal/infrastructure"
	"enrollapi/pkg/contracts/domain"
)

// secondaryRoundMarker identifies secondary-population rows in the shared
// application feed's round label.
const secondaryRoundMarker = "asap"

// DashboardData is the complete computed payload behind every dashboard
// endpoint. One pipeline run produces one of these; the cache serves it
// until the TTL expires or a refresh replaces it.
type DashboardData struct {
	Years    []int         `json:"years"`
	Season   domain.Season `json:"season"`
	Semester string        `json:"semester"`

	FunnelByYear map[int]domain.FunnelMetrics `json:"funnel_by_year"`
	YoY          []domain.YoYComparison       `json:"yoy"`

	ByCategory map[string]map[int]domain.FunnelMetrics `json:"by_category"`
	BySchool   map[string]map[int]domain.FunnelMetrics `json:"by_school"`
	ByDegree   map[string]map[int]domain.FunnelMetrics `json:"by_degree"`

	TopPrograms       []funnel.ProgramStats   `json:"top_programs"`
	TrendingPrograms  []funnel.ProgramStats   `json:"trending_programs"`
	DecliningPrograms []funnel.ProgramStats   `json:"declining_programs"`
	CorporateCohorts  []funnel.CorporateCohort `json:"corporate_cohorts"`

	CensusCounts domain.CensusStatusCounts  `json:"census_counts"`
	Enrollment   domain.EnrollmentBreakdown `json:"enrollment"`

	NTR          domain.NTRSummary    `json:"ntr"`
	NTRByGroup   []domain.CategoryNTR `json:"ntr_by_group"`
	NTRByProgram []domain.ProgramNTR  `json:"ntr_by_program"`
	Rates        []domain.RateEntry   `json:"rates"`
}

// DashboardService runs the pipeline and caches its result.
type DashboardService struct {
	logger      *slog.Logger
	cfg         *config.Config
	fetcher     *feed.Fetcher
	transformer *funnel.Transformer
	ntr         *census.Engine
	store       *cache.Store[*DashboardData]
	metrics     *infrastructure.Metrics
}

// NewDashboardService wires the pipeline components from configuration.
// The rate table comes from the configured rate file when one is set,
// otherwise the compiled defaults.
func NewDashboardService(cfg *config.Config, logger *slog.Logger, metrics *infrastructure.Metrics) (*DashboardService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "dashboard")

	rates := census.DefaultRateTable()
	if cfg.Reporting.RateFile != "" {
		loaded, err := census.LoadRateTableFile(cfg.Reporting.RateFile)
		if err != nil {
			return nil, fmt.Errorf("load rate table: %w", err)
		}
		rates = loaded
		logger.Info("loaded rate table override",
			slog.String("path", cfg.Reporting.RateFile))
	}

	return &DashboardService{
		logger:      logger,
		cfg:         cfg,
		fetcher:     feed.NewFetcher(logger, cfg.Feeds.FetchTimeout),
		transformer: funnel.NewTransformer(logger, cfg.Reporting.Years()),
		ntr:         census.NewEngine(logger, rates, cfg.Reporting.NTRGoal),
		store:       cache.NewStore[*DashboardData](cfg.Cache.TTL),
		metrics:     metrics,
	}, nil
}

// Dashboard returns the cached snapshot, computing it if missing or
// expired. Concurrent callers share one computation.
func (s *DashboardService) Dashboard(ctx context.Context) (cache.Snapshot[*DashboardData], error) {
	return s.store.Get(ctx, s.cacheKey(), s.instrumented("request"))
}

// Refresh recomputes the snapshot unconditionally. trigger names the
// caller ("manual", "scheduled") for the refresh metric.
func (s *DashboardService) Refresh(ctx context.Context, trigger string) (cache.Snapshot[*DashboardData], error) {
	return s.store.Refresh(ctx, s.cacheKey(), s.instrumented(trigger))
}

// Rates returns the active per-credit rate reference.
func (s *DashboardService) Rates() []domain.RateEntry {
	return s.ntr.Rates().Entries()
}

func (s *DashboardService) cacheKey() string {
	return cache.ContentKey(
		s.cfg.Feeds.ApplicationURL,
		s.cfg.Feeds.DataDir,
		s.cfg.Feeds.ApplicationPattern,
		s.cfg.Feeds.CensusPattern,
		s.cfg.Reporting.Semester,
		strconv.Itoa(s.cfg.Reporting.CurrentYear),
	)
}

func (s *DashboardService) instrumented(trigger string) cache.FillFunc[*DashboardData] {
	return func(ctx context.Context) (*DashboardData, error) {
		start := time.Now()
		data, err := s.Run(ctx)
		if s.metrics != nil {
			s.metrics.PipelineDuration.Observe(time.Since(start).Seconds())
			outcome := "success"
			if err != nil {
				outcome = "error"
			}
			s.metrics.RefreshTotal.WithLabelValues(trigger, outcome).Inc()
			if err == nil {
				s.metrics.RateGaps.Set(float64(len(data.NTR.RateGaps)))
			}
		}
		return data, err
	}
}

// Run executes the full pipeline once, bypassing the cache. The report
// command uses this directly; the HTTP path goes through Dashboard.
func (s *DashboardService) Run(ctx context.Context) (*DashboardData, error) {
	ctx = infrastructure.EnsureTraceID(ctx)

	appTable, err := s.loadApplicationFeed(ctx)
	if err != nil {
		return nil, fmt.Errorf("application feed: %w", err)
	}
	censusTable, err := s.loadCensusFeed(ctx)
	if err != nil {
		return nil, fmt.Errorf("census feed: %w", err)
	}
	if s.metrics != nil {
		s.metrics.FeedRows.WithLabelValues("applications").Set(float64(appTable.Len()))
		s.metrics.FeedRows.WithLabelValues("census").Set(float64(censusTable.Len()))
	}

	years := s.cfg.Reporting.Years()
	currentYear := s.cfg.Reporting.CurrentYear

	// The feed mixes both populations; the round label tells them apart
	// and carries the reporting year for the primary rows. Secondary
	// rows belong to the current cycle regardless of label.
	roundCol := appTable.Resolve("Round")
	secondaryTable := appTable.Filter(func(row int) bool {
		return isSecondaryRound(appTable.Cell(row, roundCol))
	})

	recordsByYear := make(map[int][]domain.ApplicantRecord, len(years))
	for _, year := range years {
		yearLabel := strconv.Itoa(year)
		primary := appTable.Filter(func(row int) bool {
			label := appTable.Cell(row, roundCol)
			return !isSecondaryRound(label) && strings.Contains(label, yearLabel)
		})
		recordsByYear[year] = s.transformer.Transform(ctx, primary, domain.PopulationPrimary, year)
	}
	secondary := s.transformer.Transform(ctx, secondaryTable, domain.PopulationSecondary, currentYear)
	recordsByYear[currentYear] = append(recordsByYear[currentYear], secondary...)

	data := &DashboardData{
		Years:        years,
		Semester:     s.cfg.Reporting.Semester,
		FunnelByYear: make(map[int]domain.FunnelMetrics, len(years)),
	}
	for _, year := range years {
		data.FunnelByYear[year] = funnel.ComputeFunnelMetrics(recordsByYear[year], year)
	}
	if len(recordsByYear[currentYear]) > 0 {
		data.Season = recordsByYear[currentYear][0].Season
	}
	for i := 1; i < len(years); i++ {
		data.YoY = append(data.YoY, domain.YoYComparison{
			Current:  data.FunnelByYear[years[i]],
			Previous: data.FunnelByYear[years[i-1]],
		})
	}

	data.ByCategory = funnel.ComputeBreakdownByField(recordsByYear, funnel.ByCategory)
	data.BySchool = funnel.ComputeBreakdownByField(recordsByYear, funnel.BySchool)
	data.ByDegree = funnel.ComputeBreakdownByField(recordsByYear, funnel.ByDegree)

	current := recordsByYear[currentYear]
	previous := recordsByYear[currentYear-1]
	stats := funnel.ComputeProgramStats(current, previous)
	data.TopPrograms = funnel.TopPrograms(stats, 10)
	data.TrendingPrograms = funnel.TrendingPrograms(stats, 5)
	data.DecliningPrograms = funnel.DecliningPrograms(stats, 5)
	data.CorporateCohorts = funnel.ComputeCorporateStats(current)

	censusRecords := census.Load(ctx, s.logger, censusTable, s.cfg.Reporting.Semester)
	data.CensusCounts = census.StatusCounts(censusRecords)
	data.Enrollment = funnel.BuildEnrollmentBreakdown(data.FunnelByYear[currentYear], data.CensusCounts)

	data.NTR, data.NTRByGroup = s.ntr.Calculate(ctx, censusRecords)
	data.NTRByProgram = s.ntr.ByProgram(censusRecords)
	data.Rates = s.ntr.Rates().Entries()

	s.logger.InfoContext(ctx, "pipeline completed",
		slog.Int("application_rows", appTable.Len()),
		slog.Int("census_students", data.CensusCounts.Total),
		slog.Float64("ntr_total", data.NTR.TotalNTR),
		slog.Int("rate_gaps", len(data.NTR.RateGaps)))

	return data, nil
}

func (s *DashboardService) loadApplicationFeed(ctx context.Context) (*feed.Table, error) {
	if url := s.cfg.Feeds.ApplicationURL; url != "" {
		return s.fetcher.FetchCSV(ctx, url)
	}

	path := feed.FindLatest(s.cfg.Feeds.DataDir, s.cfg.Feeds.ApplicationPattern)
	if path == "" {
		return nil, fmt.Errorf("no file matching %q in %s",
			s.cfg.Feeds.ApplicationPattern, s.cfg.Feeds.DataDir)
	}
	s.logger.InfoContext(ctx, "using local application feed", slog.String("path", path))
	return readTableFile(path)
}

func (s *DashboardService) loadCensusFeed(ctx context.Context) (*feed.Table, error) {
	path := feed.FindLatest(s.cfg.Feeds.DataDir, s.cfg.Feeds.CensusPattern)
	if path == "" {
		return nil, fmt.Errorf("no file matching %q in %s",
			s.cfg.Feeds.CensusPattern, s.cfg.Feeds.DataDir)
	}
	s.logger.InfoContext(ctx, "using census feed", slog.String("path", path))
	return readTableFile(path)
}

func readTableFile(path string) (*feed.Table, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return feed.ReadWorkbookFile(path)
	}
	return feed.ReadCSVFile(path)
}

func isSecondaryRound(label string) bool {
	return strings.Contains(strings.ToLower(label), secondaryRoundMarker)
}
