package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tuanvumaihuynh/inventory/internal/apperr"
	"github.com/tuanvumaihuynh/inventory/internal/event"
	"github.com/tuanvumaihuynh/inventory/internal/repository"
	"github.com/tuanvumaihuynh/inventory/internal/storage/db"
	"github.com/tuanvumaihuynh/inventory/pkg/validator"
)

// ImportHeader lists the columns every import file must provide.
var ImportHeader = []string{"name", "quantity", "price", "category"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// importRow is a raw data row; numeric columns are converted after decoding so
// conversion failures can name the offending value.
type importRow struct {
	Name     string `csv:"name"`
	Quantity string `csv:"quantity"`
	Price    string `csv:"price"`
	Category string `csv:"category"`
}

type ImportFileResult struct {
	Path string
	Rows int64
}

type ImportResult struct {
	BatchID string
	Files   []ImportFileResult
	Rows    int64
}

type ImportService interface {
	// Import loads every file in order inside a single transaction. The first
	// malformed or invalid row aborts the call and nothing from it is kept.
	Import(ctx context.Context, paths []string) (ImportResult, error)
}

type importService struct {
	logger        *slog.Logger
	db            db.DB
	validator     validator.Validator
	productRepo   repository.ProductRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

func NewImportService(
	logger *slog.Logger,
	db db.DB,
	validator validator.Validator,
	productRepo repository.ProductRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) ImportService {
	return &importService{
		logger:        logger.With(slog.String("service", "import")),
		db:            db,
		validator:     validator,
		productRepo:   productRepo,
		outboxMsgRepo: outboxMsgRepo,
	}
}

func (s *importService) Import(ctx context.Context, paths []string) (ImportResult, error) {
	ctx, span := tracer.Start(ctx, "ImportService.Import")
	defer span.End()

	if len(paths) == 0 {
		return ImportResult{}, apperr.ValidationErr.WithMsg("no input files given")
	}

	batchID, err := uuid.NewV7()
	if err != nil {
		return ImportResult{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	result := ImportResult{BatchID: batchID.String()}
	logger := s.logger.With(slog.String("batch_id", result.BatchID))

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		for _, path := range paths {
			params, err := s.readFile(path)
			if err != nil {
				return err
			}

			n, err := s.productRepo.WithDB(db).CopyProducts(ctx, params)
			if err != nil {
				return fmt.Errorf("product repository copy products from %s: %w", path, err)
			}

			logger.DebugContext(ctx, "file staged", slog.String("path", path), slog.Int64("rows", n))
			result.Files = append(result.Files, ImportFileResult{Path: path, Rows: n})
			result.Rows += n
		}

		return publishEvent(ctx, s.outboxMsgRepo, db, event.TopicInventoryImported, &result.BatchID,
			event.InventoryImportedEvent{
				BatchID: result.BatchID,
				Files:   paths,
				Rows:    result.Rows,
			})
	}); err != nil {
		return ImportResult{}, fmt.Errorf("import: %w", err)
	}

	span.SetAttributes(attribute.Int64("import.rows", result.Rows))
	logger.InfoContext(ctx, "import completed",
		slog.Int("files", len(result.Files)),
		slog.Int64("rows", result.Rows),
	)

	return result, nil
}

// readFile decodes and converts every data row of the file at path.
func (s *importService) readFile(path string) ([]repository.CreateProductParams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	records, err := readRecords(bytes.TrimPrefix(data, utf8BOM))
	if err != nil {
		return nil, apperr.FormatErr.WrapParent(err).WithMsg("%s: %v", path, err)
	}
	if err := checkHeader(records.header()); err != nil {
		return nil, apperr.FormatErr.WrapParent(err).WithMsg("%s: %v", path, err)
	}

	var rows []importRow
	if err := gocsv.UnmarshalCSV(records, &rows); err != nil {
		return nil, apperr.FormatErr.WrapParent(err).WithMsg("%s: %v", path, err)
	}

	params := make([]repository.CreateProductParams, 0, len(rows))
	for i, row := range rows {
		p, err := s.convertRow(fmt.Sprintf("%s: line %d", path, records.line(i+1)), row)
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}

	return params, nil
}

// convertRow turns a raw row into insert params. where prefixes error messages.
func (s *importService) convertRow(where string, row importRow) (repository.CreateProductParams, error) {
	quantity, err := strconv.Atoi(strings.TrimSpace(row.Quantity))
	if err != nil {
		return repository.CreateProductParams{}, apperr.FormatErr.WrapParent(err).
			WithMsg("%s: invalid quantity %q: not an integer", where, row.Quantity)
	}

	price, err := parseDecimal(row.Price)
	if err != nil {
		return repository.CreateProductParams{}, apperr.FormatErr.WrapParent(err).
			WithMsg("%s: invalid price %q: not a decimal number", where, row.Price)
	}

	params := AddProductParams{
		Name:     row.Name,
		Quantity: quantity,
		Price:    price,
		Category: row.Category,
	}.normalize()
	if err := s.validator.Validate(params); err != nil {
		var verrs govalidator.ValidationErrors
		if errors.As(err, &verrs) {
			return repository.CreateProductParams{}, apperr.ValidationErr.WrapParent(err).
				WithMsg("%s: %s", where, validator.Describe(verrs))
		}
		return repository.CreateProductParams{}, fmt.Errorf("%s: %w", where, err)
	}

	return repository.CreateProductParams{
		Name:     params.Name,
		Quantity: params.Quantity,
		Price:    params.Price,
		Category: params.Category,
	}, nil
}

// parseDecimal accepts finite base-10 numbers only. Hex floats, NaN and
// infinities are rejected.
func parseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, "xX") {
		return 0, errors.New("not a base 10 number")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("not a finite number")
	}
	return f, nil
}

// csvRecords holds the parsed records of one file together with the physical
// line each record starts on. It implements gocsv.CSVReader.
type csvRecords struct {
	records [][]string
	lines   []int
	pos     int
}

// readRecords parses data and trims the header names.
func readRecords(data []byte) (*csvRecords, error) {
	r := csv.NewReader(bytes.NewReader(data))
	out := &csvRecords{}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := r.FieldPos(0)
		out.records = append(out.records, rec)
		out.lines = append(out.lines, line)
	}

	if len(out.records) > 0 {
		for i, h := range out.records[0] {
			out.records[0][i] = strings.TrimSpace(h)
		}
	}
	return out, nil
}

func (c *csvRecords) header() []string {
	if len(c.records) == 0 {
		return nil
	}
	return c.records[0]
}

// line returns the physical line of record i, the header being record 0.
func (c *csvRecords) line(i int) int {
	if i < len(c.lines) {
		return c.lines[i]
	}
	return i + 1
}

func (c *csvRecords) Read() ([]string, error) {
	if c.pos >= len(c.records) {
		return nil, io.EOF
	}
	rec := c.records[c.pos]
	c.pos++
	return rec, nil
}

func (c *csvRecords) ReadAll() ([][]string, error) {
	rest := c.records[c.pos:]
	c.pos = len(c.records)
	return rest, nil
}

// checkHeader verifies the header names every ImportHeader column.
func checkHeader(header []string) error {
	if len(header) == 0 {
		return errors.New("empty file, expected header row")
	}

	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[h] = struct{}{}
	}

	var missing []string
	for _, col := range ImportHeader {
		if _, ok := present[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing column(s) %s in header %q", strings.Join(missing, ", "), strings.Join(header, ","))
	}

	return nil
}
