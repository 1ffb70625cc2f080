package dataset

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/xuri/excelize/v2"
	_ "modernc.org/sqlite"
)

func delimiterFor(f Format) rune {
	if f == FormatTSV {
		return '\t'
	}
	return ','
}

func readXLSXFile(path string, maxRows int) ([]string, [][]Value, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("dataset: open workbook %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return readWorkbook(f, maxRows)
}

func readXLSX(r io.Reader, maxRows int) ([]string, [][]Value, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("dataset: open workbook stream: %w", err)
	}
	defer func() { _ = f.Close() }()
	return readWorkbook(f, maxRows)
}

// readWorkbook streams the first sheet. Cells are read as displayed so dates keep
// their text form instead of becoming serial numbers.
func readWorkbook(f *excelize.File, maxRows int) ([]string, [][]Value, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, nil
	}
	it, err := f.Rows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("dataset: read sheet %q: %w", sheets[0], err)
	}
	defer func() { _ = it.Close() }()

	var header []string
	var rows [][]Value
	for it.Next() {
		cells, cerr := it.Columns()
		if cerr != nil {
			return nil, nil, fmt.Errorf("dataset: read sheet %q: %w", sheets[0], cerr)
		}
		if blankRow(cells) {
			continue
		}
		if header == nil {
			header = cells
			continue
		}
		if maxRows > 0 && len(rows) >= maxRows {
			return nil, nil, fmt.Errorf("%w: more than %d rows", ErrTooManyRows, maxRows)
		}
		rows = append(rows, inferRow(cells))
	}
	if err := it.Error(); err != nil {
		return nil, nil, fmt.Errorf("dataset: read sheet %q: %w", sheets[0], err)
	}
	return header, rows, nil
}

func readDelimitedFile(path string, comma rune, maxRows int) ([]string, [][]Value, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer func() { _ = fh.Close() }()
	return readDelimited(fh, comma, maxRows)
}

func readDelimited(r io.Reader, comma rune, maxRows int) ([]string, [][]Value, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var header []string
	var rows [][]Value
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("dataset: parse delimited text: %w", err)
		}
		if blankRow(rec) {
			continue
		}
		if header == nil {
			rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
			header = rec
			continue
		}
		if maxRows > 0 && len(rows) >= maxRows {
			return nil, nil, fmt.Errorf("%w: more than %d rows", ErrTooManyRows, maxRows)
		}
		rows = append(rows, inferRow(rec))
	}
	return header, rows, nil
}

// readSQL reads every row of one table. With discover set and no table named, the
// first user table in sqlite_master is used.
func readSQL(ctx context.Context, driver, dsn, table string, discover bool, maxRows int) ([]string, [][]Value, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("dataset: open %s: %w", driver, err)
	}
	defer func() { _ = db.Close() }()

	if table == "" && discover {
		row := db.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' LIMIT 1`)
		if err := row.Scan(&table); err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("dataset: list tables: %w", err)
		}
	}
	if table == "" {
		return nil, nil, ErrNoTable
	}

	rs, err := db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table))
	if err != nil {
		return nil, nil, fmt.Errorf("dataset: query %s: %w", table, err)
	}
	defer func() { _ = rs.Close() }()

	header, err := rs.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("dataset: columns of %s: %w", table, err)
	}
	raw := make([]any, len(header))
	ptrs := make([]any, len(header))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	var rows [][]Value
	for rs.Next() {
		if maxRows > 0 && len(rows) >= maxRows {
			return nil, nil, fmt.Errorf("%w: more than %d rows", ErrTooManyRows, maxRows)
		}
		if err := rs.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("dataset: scan %s: %w", table, err)
		}
		row := make([]Value, len(raw))
		for i, v := range raw {
			row[i] = sqlValue(v)
		}
		rows = append(rows, row)
	}
	if err := rs.Err(); err != nil {
		return nil, nil, fmt.Errorf("dataset: read %s: %w", table, err)
	}
	return header, rows, nil
}

// quoteIdent quotes a possibly schema-qualified identifier.
func quoteIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}

func sqlValue(v any) Value {
	switch x := v.(type) {
	case nil:
		return Missing()
	case int64:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case bool:
		return String(strconv.FormatBool(x))
	case []byte:
		return Infer(string(x))
	case string:
		return Infer(x)
	case time.Time:
		return String(x.Format("2006-01-02"))
	default:
		return Infer(fmt.Sprint(x))
	}
}
