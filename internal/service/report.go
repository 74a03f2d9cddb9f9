package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/google/renameio/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tuanvumaihuynh/inventory/internal/model"
	"github.com/tuanvumaihuynh/inventory/internal/repository"
)

// reportRow is one CSV line of the summary report. The csv tags are the header.
type reportRow struct {
	Category      string      `csv:"Category"`
	ProductCount  int64       `csv:"Number of Products"`
	TotalQuantity int64       `csv:"Total Quantity"`
	TotalValue    reportValue `csv:"Total Value"`
}

// reportValue prints the shortest exact decimal form and always keeps a
// fractional part, so 28 is written as 28.0.
type reportValue float64

func (v reportValue) MarshalCSV() (string, error) {
	s := strconv.FormatFloat(float64(v), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s, nil
}

type ReportService interface {
	// GenerateReport writes the per category summary to outputPath, replacing
	// it atomically, and returns the summaries written.
	GenerateReport(ctx context.Context, outputPath string) ([]model.CategorySummary, error)
	// Summaries returns the per category summary ordered by category.
	Summaries(ctx context.Context) ([]model.CategorySummary, error)
}

type reportService struct {
	logger      *slog.Logger
	productRepo repository.ProductRepository
}

func NewReportService(logger *slog.Logger, productRepo repository.ProductRepository) ReportService {
	return &reportService{
		logger:      logger.With(slog.String("service", "report")),
		productRepo: productRepo,
	}
}

func (s *reportService) Summaries(ctx context.Context) ([]model.CategorySummary, error) {
	summaries, err := s.productRepo.SummarizeByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("product repository summarize by category: %w", err)
	}
	return summaries, nil
}

func (s *reportService) GenerateReport(ctx context.Context, outputPath string) ([]model.CategorySummary, error) {
	ctx, span := tracer.Start(ctx, "ReportService.GenerateReport",
		trace.WithAttributes(attribute.String("report.path", outputPath)))
	defer span.End()

	summaries, err := s.Summaries(ctx)
	if err != nil {
		return nil, err
	}

	if err := writeFileAtomic(outputPath, func(w io.Writer) error {
		return WriteReport(w, summaries)
	}); err != nil {
		return nil, fmt.Errorf("write report %s: %w", outputPath, err)
	}

	s.logger.InfoContext(ctx, "report generated",
		slog.String("path", outputPath),
		slog.Int("categories", len(summaries)),
	)

	return summaries, nil
}

// WriteReport encodes summaries as CSV with the report header. The header is
// written even when summaries is empty.
func WriteReport(w io.Writer, summaries []model.CategorySummary) error {
	rows := make([]reportRow, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, reportRow{
			Category:      s.Category,
			ProductCount:  s.ProductCount,
			TotalQuantity: s.TotalQuantity,
			TotalValue:    reportValue(s.TotalValue),
		})
	}

	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	return nil
}

// writeFileAtomic writes to a pending file next to path and renames it over
// path once fully flushed. On failure path is left untouched.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	f, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending file: %w", err)
	}
	defer func() { _ = f.Cleanup() }()

	if err := write(f); err != nil {
		return err
	}
	if err := f.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}

	return nil
}
