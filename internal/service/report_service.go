package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/nhom11/attendance-api/internal/models"
	"github.com/nhom11/attendance-api/pkg/export"
	appErrors "github.com/nhom11/attendance-api/pkg/errors"
)

type reportRepository interface {
	SchoolReport(ctx context.Context, rng models.ReportRange) ([]models.ClassAttendanceReportRow, error)
}

type reportCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

var reportHeaders = []string{"Class Code", "Class Name", "Students", "Sessions", "Present", "Absent", "Late"}

// ReportService produces the per-class attendance aggregate. Results are
// cached in Redis keyed by date range and expire by TTL.
type ReportService struct {
	repo     reportRepository
	cache    reportCache
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
	cacheTTL time.Duration
	metrics  *MetricsService
}

// NewReportService constructs a ReportService.
func NewReportService(repo reportRepository, cache reportCache, logger *zap.Logger, cacheTTL time.Duration) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &ReportService{
		repo:     repo,
		cache:    cache,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
		cacheTTL: cacheTTL,
	}
}

// WithMetrics attaches cache hit/miss counters.
func (s *ReportService) WithMetrics(m *MetricsService) *ReportService {
	s.metrics = m
	return s
}

// SchoolReport returns one aggregate row per class, optionally bounded by
// inclusive session dates.
func (s *ReportService) SchoolReport(ctx context.Context, rng models.ReportRange) ([]models.ClassAttendanceReportRow, error) {
	if err := validateRange(rng); err != nil {
		return nil, err
	}

	key := cacheKey(rng)
	var cached []models.ClassAttendanceReportRow
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		s.metrics.RecordCacheLookup(true)
		return cached, nil
	} else if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("report cache read failed", zap.Error(err))
	}
	s.metrics.RecordCacheLookup(false)

	rows, err := s.repo.SchoolReport(ctx, rng)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build school report")
	}

	if err := s.cache.Set(ctx, key, rows, s.cacheTTL); err != nil {
		s.logger.Warn("report cache write failed", zap.Error(err))
	}

	return rows, nil
}

// ExportCSV renders the report rows as CSV bytes.
func (s *ReportService) ExportCSV(ctx context.Context, rng models.ReportRange) ([]byte, error) {
	rows, err := s.SchoolReport(ctx, rng)
	if err != nil {
		return nil, err
	}
	payload, err := s.csv.Render(dataset(rows))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
	}
	return payload, nil
}

// ExportPDF renders the report rows as a tabular PDF.
func (s *ReportService) ExportPDF(ctx context.Context, rng models.ReportRange) ([]byte, error) {
	rows, err := s.SchoolReport(ctx, rng)
	if err != nil {
		return nil, err
	}
	payload, err := s.pdf.Render(dataset(rows), "Attendance Report")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
	}
	return payload, nil
}

// Invalidate drops all cached report payloads.
func (s *ReportService) Invalidate(ctx context.Context) error {
	if err := s.cache.DeleteByPattern(ctx, "reports:school:*"); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to invalidate report cache")
	}
	return nil
}

func validateRange(rng models.ReportRange) error {
	for _, bound := range []*string{rng.From, rng.To} {
		if bound == nil {
			continue
		}
		if _, err := time.Parse("2006-01-02", *bound); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "report dates must be YYYY-MM-DD")
		}
	}
	return nil
}

func cacheKey(rng models.ReportRange) string {
	from, to := "", ""
	if rng.From != nil {
		from = *rng.From
	}
	if rng.To != nil {
		to = *rng.To
	}
	return fmt.Sprintf("reports:school:%s:%s", from, to)
}

func dataset(rows []models.ClassAttendanceReportRow) export.Dataset {
	data := export.Dataset{Headers: reportHeaders, Rows: make([][]string, 0, len(rows))}
	for _, row := range rows {
		data.Rows = append(data.Rows, []string{
			row.ClassCode,
			row.ClassName,
			strconv.Itoa(row.TotalStudents),
			strconv.Itoa(row.TotalSessions),
			strconv.Itoa(row.PresentCount),
			strconv.Itoa(row.AbsentCount),
			strconv.Itoa(row.LateCount),
		})
	}
	return data
}
