// Package csvfile parses generic transaction CSV exports.
package csvfile

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	enc "github.com/MrJamesThe3rd/pocketbook/internal/encoding"
	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

// DefaultCategory is assigned to rows with an empty category cell.
const DefaultCategory = "Uncategorized"

const (
	colDate        = "date"
	colType        = "type"
	colAmount      = "amount"
	colCategory    = "category"
	colDescription = "description"
)

var requiredCols = []string{colDate, colAmount}

var dateLayouts = []string{time.DateOnly, time.RFC3339, "02/01/2006", "02-01-2006"}

// Parser reads CSV files with a date,type,amount,category,description header.
// Columns may appear in any order and header names are case-insensitive.
// Lines before the header are skipped.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]transaction.CreateParams, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	br := bufio.NewReader(utf8r)

	sep, err := detectSeparator(br)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(br)
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	cols, err := findHeader(reader)
	if err != nil {
		return nil, err
	}

	return parseRows(reader, cols)
}

// detectSeparator picks the separator of the header line, so preamble rows
// cannot decide it. Without a recognizable header it falls back to counting
// ';' against ',' in the first non-empty line.
func detectSeparator(br *bufio.Reader) (rune, error) {
	sample, err := br.Peek(br.Size())
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return 0, fmt.Errorf("read csv: %w", err)
	}

	fallback := ','
	seen := false

	for line := range bytes.Lines(sample) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		for _, sep := range []rune{';', ','} {
			if isHeaderLine(line, sep) {
				return sep, nil
			}
		}

		if !seen {
			seen = true

			if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
				fallback = ';'
			}
		}
	}

	return fallback, nil
}

func isHeaderLine(line []byte, sep rune) bool {
	cols := make(colIndex)

	for i, cell := range strings.Split(string(line), string(sep)) {
		cols[strings.ToLower(strings.Trim(strings.TrimSpace(cell), `"`))] = i
	}

	return hasAll(cols, requiredCols)
}

// colIndex maps lower-cased header names to their position.
type colIndex map[string]int

func (c colIndex) cell(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[i])
}

// findHeader consumes records until one names every required column.
func findHeader(reader *csv.Reader) (colIndex, error) {
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("no header found: expected columns %s", strings.Join(requiredCols, ", "))
		}

		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if _, dup := cols[name]; name != "" && !dup {
				cols[name] = i
			}
		}

		if hasAll(cols, requiredCols) {
			return cols, nil
		}
	}
}

func hasAll(cols colIndex, names []string) bool {
	for _, name := range names {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

func parseRows(reader *csv.Reader, cols colIndex) ([]transaction.CreateParams, error) {
	var params []transaction.CreateParams

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return params, nil
		}

		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		line, _ := reader.FieldPos(0)

		if isBlank(row) {
			continue
		}

		p, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		params = append(params, p)
	}
}

func parseRow(row []string, cols colIndex) (transaction.CreateParams, error) {
	date, err := parseDate(cols.cell(row, colDate))
	if err != nil {
		return transaction.CreateParams{}, err
	}

	amount, err := parseAmount(cols.cell(row, colAmount))
	if err != nil {
		return transaction.CreateParams{}, err
	}

	if !amount.Equal(amount.Round(2)) {
		return transaction.CreateParams{}, fmt.Errorf("amount %s has more than 2 decimal places", amount)
	}

	txType, err := resolveType(cols.cell(row, colType), amount.IsNegative())
	if err != nil {
		return transaction.CreateParams{}, err
	}

	category := cols.cell(row, colCategory)
	if category == "" {
		category = DefaultCategory
	}

	return transaction.CreateParams{
		Amount:      amount.Abs(),
		Type:        txType,
		Description: cols.cell(row, colDescription),
		Category:    category,
		Date:        date,
	}, nil
}

// resolveType uses the type cell when present; otherwise the sign of the
// amount decides.
func resolveType(cell string, negative bool) (transaction.Type, error) {
	if cell == "" {
		if negative {
			return transaction.TypeExpense, nil
		}

		return transaction.TypeIncome, nil
	}

	t := transaction.Type(strings.ToLower(cell))
	if !t.Valid() {
		return "", fmt.Errorf("invalid type %q: must be income or expense", cell)
	}

	return t, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}
