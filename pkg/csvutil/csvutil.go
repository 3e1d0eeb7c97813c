package csvutil

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/kitir/kitir/pkg/logging"
	"github.com/kitir/kitir/pkg/util"
)

// RestKey holds the values of a record beyond the header's width.
const RestKey = "_rest"

// traceSnippet is how much of the input the trace line quotes.
const traceSnippet = 20

// ErrUnknownDialect is returned for a dialect name that is not registered.
var ErrUnknownDialect = errors.New("unknown dialect")

// Dialect describes a delimiter-separated format.
type Dialect struct {
	Name  string
	Comma rune
}

// Predefined dialects.
var (
	Excel      = Dialect{Name: "csv", Comma: ','}
	ExcelTab   = Dialect{Name: "tsv", Comma: '\t'}
	ExcelSpace = Dialect{Name: "ssv", Comma: ' '}
)

var dialects = map[string]Dialect{
	"csv":         Excel,
	"excel":       Excel,
	"tsv":         ExcelTab,
	"excel-tab":   ExcelTab,
	"ssv":         ExcelSpace,
	"excel-space": ExcelSpace,
}

// DialectByName looks up a dialect by short name (csv, tsv, ssv) or by its
// excel alias (excel, excel-tab, excel-space).
func DialectByName(name string) (Dialect, error) {
	d, ok := dialects[strings.ToLower(name)]
	if !ok {
		return Dialect{}, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}
	return d, nil
}

// DialectForPath picks a dialect from the file extension. Unknown
// extensions read as Excel.
func DialectForPath(path string) Dialect {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".tab":
		return ExcelTab
	case ".ssv":
		return ExcelSpace
	default:
		return Excel
	}
}

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(logging.Nop())
}

// SetLogger sets the logger used for trace output.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = logging.Nop()
	}
	logger.Store(l)
}

// Table is a parsed file: the header and the data records below it.
type Table struct {
	Source  string
	Dialect Dialect
	Header  []string
	Records [][]string
}

// Row maps column names to values.
type Row map[string]string

// Rows converts the records to header-keyed rows. Missing trailing values
// are empty; surplus values are joined with the dialect's delimiter under
// RestKey.
func (t *Table) Rows() []Row {
	rows := make([]Row, 0, len(t.Records))
	for _, rec := range t.Records {
		row := make(Row, len(t.Header)+1)
		for i, name := range t.Header {
			if i < len(rec) {
				row[name] = rec[i]
			} else {
				row[name] = ""
			}
		}
		if len(rec) > len(t.Header) {
			row[RestKey] = strings.Join(rec[len(t.Header):], string(t.Dialect.Comma))
		}
		rows = append(rows, row)
	}
	return rows
}

// Read parses r using dialect d.
func Read(r io.Reader, d Dialect) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = d.Comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", d.Name, err)
	}
	t := &Table{Dialect: d}
	if len(records) == 0 {
		return t, nil
	}
	t.Header = records[0]
	t.Records = records[1:]
	return t, nil
}

// ReadString parses text using dialect d.
func ReadString(text string, d Dialect) (*Table, error) {
	logger.Load().Log(context.Background(), logging.LevelTrace, "reading "+d.Name+" string",
		"content", fmt.Sprintf("%q", util.Prefix(text, traceSnippet)), "len", len(text))
	return Read(strings.NewReader(text), d)
}

// ReadCSVString parses comma-separated text into rows.
func ReadCSVString(text string) ([]Row, []string, error) {
	return readRows(text, Excel)
}

// ReadTSVString parses tab-separated text into rows.
func ReadTSVString(text string) ([]Row, []string, error) {
	return readRows(text, ExcelTab)
}

// ReadSSVString parses space-separated text into rows.
func ReadSSVString(text string) ([]Row, []string, error) {
	return readRows(text, ExcelSpace)
}

func readRows(text string, d Dialect) ([]Row, []string, error) {
	t, err := ReadString(text, d)
	if err != nil {
		return nil, nil, err
	}
	return t.Rows(), t.Header, nil
}

// ReadFile parses the file at path. A zero Dialect is chosen from the
// extension.
func ReadFile(path string, d Dialect) (*Table, error) {
	if d == (Dialect{}) {
		d = DialectForPath(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := ReadString(string(data), d)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.Source = path
	return t, nil
}

// ReadGlob parses every file matching pattern, which may use "**".
// Matches are read in lexical order.
func ReadGlob(pattern string, d Dialect) ([]*Table, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	tables := make([]*Table, 0, len(matches))
	for _, m := range matches {
		t, err := ReadFile(m, d)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// Write writes header and then each row's values in header order.
func Write(w io.Writer, d Dialect, header []string, rows []Row) error {
	cw := csv.NewWriter(w)
	cw.Comma = d.Comma
	if err := cw.Write(header); err != nil {
		return err
	}
	rec := make([]string, len(header))
	for _, row := range rows {
		for i, name := range header {
			rec[i] = row[name]
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
