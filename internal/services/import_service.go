package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"vinoteca/internal/cache"
	"vinoteca/internal/models"
	"vinoteca/internal/repositories"
	"vinoteca/internal/schema"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
)

const (
	maxImportRows = 10000

	xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ErrBadImportFile marks file-level import problems: unsupported format,
// missing header or required columns, too many rows. Row-level problems
// never surface here; they land in the report.
var ErrBadImportFile = errors.New("invalid import file")

// ImportReport summarizes a bulk import. Partial success is normal: valid
// rows are persisted even when others are rejected.
type ImportReport struct {
	Total    int            `json:"total"`
	Imported int            `json:"imported"`
	Rejected []RowRejection `json:"rejected"`
}

// RowRejection explains why one row was not imported. Row is the number
// as displayed in a spreadsheet editor, header included, so row 2 is the
// first data row.
type RowRejection struct {
	Row    int                 `json:"row"`
	Fields []schema.FieldError `json:"fields"`
}

// ImportService ingests spreadsheets of wines through the same validation
// path as the single-entity endpoints.
type ImportService struct {
	repo   repositories.WineRepository
	reg    *schema.Registry
	cache  cache.Cache
	events EventPublisher
}

// NewImportService creates a new ImportService.
func NewImportService(repo repositories.WineRepository, reg *schema.Registry, c cache.Cache, events EventPublisher) *ImportService {
	return &ImportService{
		repo:   repo,
		reg:    reg,
		cache:  c,
		events: events,
	}
}

// ImportWines reads a .csv or .xlsx file and persists each valid row.
// Rows that fail coercion, validation or conflict with an existing SKU are
// rejected individually and reported; they never abort the batch.
func (s *ImportService) ImportWines(ctx context.Context, filename string, r io.ReadSeeker) (*ImportReport, error) {
	rows, err := s.readRows(filename, r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: file has no header row", ErrBadImportFile)
	}
	if len(rows)-1 > maxImportRows {
		return nil, fmt.Errorf("%w: more than %d data rows", ErrBadImportFile, maxImportRows)
	}

	columns, err := s.mapHeader(rows[0])
	if err != nil {
		return nil, err
	}

	report := &ImportReport{Rejected: []RowRejection{}}
	for i, row := range rows[1:] {
		sheetRow := i + 2
		if blankRow(row) {
			continue
		}
		report.Total++

		wine, fieldErrs := s.buildWine(columns, row)
		if len(fieldErrs) > 0 {
			report.Rejected = append(report.Rejected, RowRejection{Row: sheetRow, Fields: fieldErrs})
			continue
		}

		if err := s.repo.Create(ctx, wine); err != nil {
			if errors.Is(err, repositories.ErrConflict) {
				report.Rejected = append(report.Rejected, RowRejection{
					Row:    sheetRow,
					Fields: []schema.FieldError{{Field: "sku", Message: "already exists"}},
				})
				continue
			}
			return nil, fmt.Errorf("failed to import row %d: %w", sheetRow, err)
		}
		report.Imported++
	}

	if report.Imported > 0 {
		s.cache.InvalidatePrefix(ctx, wineCachePrefix)
		publishEvent(ctx, s.events, "wine.imported", "", map[string]int{
			"imported": report.Imported,
			"rejected": len(report.Rejected),
		})
	}
	return report, nil
}

// readRows sniffs the content, then parses the file into rows of cells.
func (s *ImportService) readRows(filename string, r io.ReadSeeker) ([][]string, error) {
	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to sniff import file: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind import file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		if !strings.HasPrefix(mtype.String(), "text/") && !mtype.Is("inode/x-empty") {
			return nil, fmt.Errorf("%w: content is %s, expected text", ErrBadImportFile, mtype)
		}
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadImportFile, err)
		}
		return rows, nil
	case ".xlsx":
		if !mtype.Is(xlsxMIME) && !mtype.Is("application/zip") {
			return nil, fmt.Errorf("%w: content is %s, expected a spreadsheet", ErrBadImportFile, mtype)
		}
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("%w: not a valid xlsx file", ErrBadImportFile)
		}
		defer f.Close()

		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", ErrBadImportFile)
		}
		rows, err := f.GetRows(sheets[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadImportFile, err)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("%w: only .csv and .xlsx files are supported", ErrBadImportFile)
	}
}

// mapHeader matches header cells to registered field names. Matching is
// case-insensitive and tolerates spaces for underscores; unknown and
// server-managed columns are ignored.
func (s *ImportService) mapHeader(header []string) (map[int]schema.Field, error) {
	columns := make(map[int]schema.Field)
	for idx, cell := range header {
		name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(cell)), " ", "_")
		field, ok := s.reg.FieldByJSON(models.Wine{}, name)
		if !ok || !field.Assignable {
			continue
		}
		columns[idx] = field
	}

	var missing []string
	for _, required := range s.reg.RequiredFields(models.Wine{}) {
		found := false
		for _, field := range columns {
			if field.JSONName == required {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required column(s): %s", ErrBadImportFile, strings.Join(missing, ", "))
	}
	return columns, nil
}

// buildWine assigns the row's cells onto a fresh entity and validates it.
// Coercion and validation problems come back merged, one entry per field.
func (s *ImportService) buildWine(columns map[int]schema.Field, row []string) (*models.Wine, []schema.FieldError) {
	wine := &models.Wine{}
	var fieldErrs []schema.FieldError

	idxs := make([]int, 0, len(columns))
	for idx := range columns {
		idxs = append(idxs, idx)
	}
	sort.Ints(idxs)

	for _, idx := range idxs {
		if idx >= len(row) {
			continue
		}
		raw := strings.TrimSpace(row[idx])
		if raw == "" {
			continue
		}
		field := columns[idx]
		if err := s.reg.Assign(wine, field.JSONName, raw); err != nil {
			fieldErrs = append(fieldErrs, schema.FieldError{Field: field.JSONName, Message: err.Error()})
		}
	}

	if err := s.reg.Validate(*wine); err != nil {
		if ve, ok := schema.AsValidationError(err); ok {
			seen := make(map[string]bool, len(fieldErrs))
			for _, fe := range fieldErrs {
				seen[fe.Field] = true
			}
			for _, fe := range ve.Fields {
				if !seen[fe.Field] {
					fieldErrs = append(fieldErrs, fe)
				}
			}
		}
	}
	return wine, fieldErrs
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
