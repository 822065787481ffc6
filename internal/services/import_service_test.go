package services_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"vinoteca/internal/models"
	"vinoteca/internal/repositories"
	"vinoteca/internal/schema"
	"vinoteca/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newImportService(t *testing.T) (*services.ImportService, *repositories.MockWineRepository, *spyCache, *recordingPublisher) {
	t.Helper()
	reg := schema.NewRegistry()
	models.Register(reg)
	repo := repositories.NewMockWineRepository(reg)
	c := newSpyCache()
	pub := &recordingPublisher{}
	return services.NewImportService(repo, reg, c, pub), repo, c, pub
}

// buildWorkbook writes a header plus the given data rows into an xlsx
// buffer the way a spreadsheet editor would.
func buildWorkbook(t *testing.T, header []string, data [][]any) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetList()[0]

	for col, name := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, name))
	}
	for rowIdx, row := range data {
		for col, val := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, val))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestImportWinesRejectsOnlyBadRows(t *testing.T) {
	svc, repo, c, pub := newImportService(t)

	header := []string{"SKU", "Name", "Winery", "Vintage", "Price", "Stock", "Style"}
	data := make([][]any, 10)
	for i := range data {
		data[i] = []any{
			fmt.Sprintf("IMP-%02d", i+1),
			fmt.Sprintf("Imported Wine %02d", i+1),
			"Test Winery", 2018, 15.50, 6, "red",
		}
	}
	// Data row 3 (sheet row 4): price is not a number.
	data[2][4] = "free"
	// Data row 7 (sheet row 8): vintage outside the accepted range.
	data[6][3] = 1200

	report, err := svc.ImportWines(context.Background(), "wines.xlsx", buildWorkbook(t, header, data))
	require.NoError(t, err)

	assert.Equal(t, 10, report.Total)
	assert.Equal(t, 8, report.Imported)
	require.Len(t, report.Rejected, 2)

	assert.Equal(t, 4, report.Rejected[0].Row)
	require.NotEmpty(t, report.Rejected[0].Fields)
	assert.Equal(t, "price", report.Rejected[0].Fields[0].Field)

	assert.Equal(t, 8, report.Rejected[1].Row)
	require.NotEmpty(t, report.Rejected[1].Fields)
	assert.Equal(t, "vintage", report.Rejected[1].Fields[0].Field)

	// Exactly the valid rows were persisted.
	stored, err := repo.List(context.Background(), repositories.WineListParams{Limit: 100})
	require.NoError(t, err)
	assert.EqualValues(t, 8, stored.Total)
	for _, w := range stored.Wines {
		assert.NotEqual(t, "IMP-03", w.SKU)
		assert.NotEqual(t, "IMP-07", w.SKU)
	}

	assert.Contains(t, c.invalidated, "wines")
	assert.Equal(t, []string{"wine.imported"}, pub.published())
}

func TestImportWinesRejectsDuplicateSKUsPerRow(t *testing.T) {
	svc, repo, _, _ := newImportService(t)

	// Pre-existing wine the first file row collides with.
	require.NoError(t, repo.Create(context.Background(), &models.Wine{
		SKU: "DUP-1", Name: "Already Here", Price: 9,
	}))

	header := []string{"sku", "name", "price"}
	data := [][]any{
		{"DUP-1", "Collides With DB", 10},
		{"NEW-1", "Fresh", 11},
		{"NEW-1", "In-File Duplicate", 12},
	}

	report, err := svc.ImportWines(context.Background(), "wines.xlsx", buildWorkbook(t, header, data))
	require.NoError(t, err)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 1, report.Imported)
	require.Len(t, report.Rejected, 2)
	assert.Equal(t, 2, report.Rejected[0].Row)
	assert.Equal(t, 4, report.Rejected[1].Row)
	for _, rej := range report.Rejected {
		require.Len(t, rej.Fields, 1)
		assert.Equal(t, "sku", rej.Fields[0].Field)
		assert.Equal(t, "already exists", rej.Fields[0].Message)
	}
}

func TestImportWinesCSV(t *testing.T) {
	svc, repo, _, _ := newImportService(t)

	csvFile := strings.Join([]string{
		"sku,name,price,stock",
		"CSV-1,Loire Blanc,14.90,12",
		",,,",
		"CSV-2,Broken Price,abc,3",
	}, "\n")

	report, err := svc.ImportWines(context.Background(), "wines.csv", strings.NewReader(csvFile))
	require.NoError(t, err)

	assert.Equal(t, 2, report.Total, "blank rows are skipped, not rejected")
	assert.Equal(t, 1, report.Imported)
	require.Len(t, report.Rejected, 1)
	assert.Equal(t, 4, report.Rejected[0].Row, "rows are numbered as displayed, header included")
	assert.Equal(t, "price", report.Rejected[0].Fields[0].Field)

	res, err := repo.List(context.Background(), repositories.WineListParams{Query: "loire"})
	require.NoError(t, err)
	require.Len(t, res.Wines, 1)
	assert.Equal(t, "CSV-1", res.Wines[0].SKU)
	assert.Equal(t, 12, res.Wines[0].Stock)
}

func TestImportWinesMissingRequiredColumn(t *testing.T) {
	svc, _, _, _ := newImportService(t)

	header := []string{"sku", "name"} // no price column
	data := [][]any{{"X-1", "No Price"}}

	_, err := svc.ImportWines(context.Background(), "wines.xlsx", buildWorkbook(t, header, data))
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrBadImportFile)
	assert.Contains(t, err.Error(), "price")
}

func TestImportWinesHeaderMatchingIsForgiving(t *testing.T) {
	svc, repo, _, _ := newImportService(t)

	header := []string{"SKU", "Name", "Price", "Cellar Bin", "Tasting Panel Score"}
	data := [][]any{{"HDR-1", "Forgiving Headers", 20, "B-7", 94}}

	report, err := svc.ImportWines(context.Background(), "wines.xlsx", buildWorkbook(t, header, data))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported, "unknown columns are ignored")

	res, err := repo.List(context.Background(), repositories.WineListParams{Query: "forgiving"})
	require.NoError(t, err)
	require.Len(t, res.Wines, 1)
	assert.Equal(t, "B-7", res.Wines[0].CellarBin)
}

func TestImportWinesRejectsUnsupportedFormat(t *testing.T) {
	svc, _, _, _ := newImportService(t)

	_, err := svc.ImportWines(context.Background(), "wines.pdf", strings.NewReader("%PDF-1.4"))
	assert.ErrorIs(t, err, services.ErrBadImportFile)
}

func TestImportWinesRejectsMislabeledContent(t *testing.T) {
	svc, _, _, _ := newImportService(t)

	// A PNG renamed to .xlsx must not reach the parser.
	png := append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 64)...)
	_, err := svc.ImportWines(context.Background(), "wines.xlsx", bytes.NewReader(png))
	assert.ErrorIs(t, err, services.ErrBadImportFile)
}
