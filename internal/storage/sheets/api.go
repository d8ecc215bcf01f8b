package sheets

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// CellUpdate writes Values into one row starting at Column. Row and Column are 1-based.
type CellUpdate struct {
	Row    int
	Column int
	Values []string
}

// ValuesAPI is the spreadsheet surface the store uses
type ValuesAPI interface {
	// Titles lists the existing tables
	Titles(ctx context.Context) ([]string, error)
	// AddTable creates an empty table with the given grid size
	AddTable(ctx context.Context, title string, rows, cols int) error
	// ReadRows returns every non-empty row of the first cols columns, header included
	ReadRows(ctx context.Context, table string, cols int) ([][]string, error)
	// AppendRows appends rows after the last non-empty row
	AppendRows(ctx context.Context, table string, rows [][]string) error
	// UpdateCells overwrites cells in place
	UpdateCells(ctx context.Context, table string, updates []CellUpdate) error
}

// GoogleValues implements ValuesAPI with the Sheets v4 API
type GoogleValues struct {
	service       *sheets.Service
	spreadsheetID string
}

// NewGoogleValues creates a Sheets-backed ValuesAPI. httpClient must already carry credentials.
func NewGoogleValues(ctx context.Context, httpClient *http.Client, spreadsheetID string) (*GoogleValues, error) {
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}
	return &GoogleValues{service: srv, spreadsheetID: spreadsheetID}, nil
}

func (g *GoogleValues) Titles(ctx context.Context) ([]string, error) {
	resp, err := g.service.Spreadsheets.Get(g.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to read spreadsheet: %w", err)
	}
	titles := make([]string, 0, len(resp.Sheets))
	for _, s := range resp.Sheets {
		if s.Properties != nil {
			titles = append(titles, s.Properties.Title)
		}
	}
	return titles, nil
}

func (g *GoogleValues) AddTable(ctx context.Context, title string, rows, cols int) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: title,
					GridProperties: &sheets.GridProperties{
						RowCount:    int64(rows),
						ColumnCount: int64(cols),
					},
				},
			},
		}},
	}
	if _, err := g.service.Spreadsheets.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to add sheet %q: %w", title, err)
	}
	return nil
}

func (g *GoogleValues) ReadRows(ctx context.Context, table string, cols int) ([][]string, error) {
	rng := columnsRange(table, cols)
	resp, err := g.service.Spreadsheets.Values.Get(g.spreadsheetID, rng).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", rng, err)
	}
	return fromCells(resp.Values), nil
}

func (g *GoogleValues) AppendRows(ctx context.Context, table string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	rng := quoteTable(table) + "!A1"
	_, err := g.service.Spreadsheets.Values.Append(g.spreadsheetID, rng, &sheets.ValueRange{Values: toCells(rows)}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("unable to append to %s: %w", table, err)
	}
	return nil
}

func (g *GoogleValues) UpdateCells(ctx context.Context, table string, updates []CellUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	data := make([]*sheets.ValueRange, 0, len(updates))
	for _, u := range updates {
		data = append(data, &sheets.ValueRange{
			Range:  rowRange(table, u.Row, u.Column, len(u.Values)),
			Values: toCells([][]string{u.Values}),
		})
	}
	req := &sheets.BatchUpdateValuesRequest{ValueInputOption: "RAW", Data: data}
	if _, err := g.service.Spreadsheets.Values.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to update %s: %w", table, err)
	}
	return nil
}

// quoteTable quotes a sheet title for A1 notation
func quoteTable(table string) string {
	return "'" + strings.ReplaceAll(table, "'", "''") + "'"
}

// columnLetter converts a 1-based column number to its A1 letters
func columnLetter(n int) string {
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

// columnsRange addresses whole columns A through cols, e.g. 'Tasks'!A:L
func columnsRange(table string, cols int) string {
	return fmt.Sprintf("%s!A:%s", quoteTable(table), columnLetter(cols))
}

// rowRange addresses width cells of one row starting at col, e.g. 'Tasks'!D7 or 'Tasks'!A7:L7
func rowRange(table string, row, col, width int) string {
	start := fmt.Sprintf("%s%d", columnLetter(col), row)
	if width <= 1 {
		return quoteTable(table) + "!" + start
	}
	return fmt.Sprintf("%s!%s:%s%d", quoteTable(table), start, columnLetter(col+width-1), row)
}

func toCells(rows [][]string) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		out[i] = cells
	}
	return out
}

func fromCells(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			if v != nil {
				cells[j] = fmt.Sprint(v)
			}
		}
		out[i] = cells
	}
	return out
}
