package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kitir/kitir/pkg/cli/internal/output"
	"github.com/kitir/kitir/pkg/csvutil"
)

var (
	csvDialect string
	csvWhere   string
	csvOutput  string
)

var csvCmd = &cobra.Command{
	Use:   "csv [path or glob...]",
	Short: "Read CSV, TSV or space-separated files as rows",
	Long: `Read CSV, TSV or space-separated files as rows.

The first line of each file is the header. Globs may use ** to match across
directories. With no paths, stdin is read. --where keeps the rows for which an
expression is true; each column is a variable (numbers compare as numbers) and
row["Column Name"] reaches columns whose names are not identifiers.`,
	Example: `  kitir csv users.csv
  kitir csv 'reports/**/*.tsv' --where 'status != "ok"' --output json
  cat data.ssv | kitir csv --dialect ssv`,
	RunE: runCSV,
}

func runCSV(cmd *cobra.Command, args []string) error {
	var dialect csvutil.Dialect
	if csvDialect != "auto" {
		d, err := csvutil.DialectByName(csvDialect)
		if err != nil {
			return err
		}
		dialect = d
	}

	tables, err := readTables(cmd.InOrStdin(), args, dialect)
	if err != nil {
		return err
	}
	header, rows := mergeTables(tables)

	if csvWhere != "" {
		if rows, err = csvutil.Filter(rows, csvWhere); err != nil {
			return err
		}
	}

	format := csvOutput
	if jsonOutput && !cmd.Flags().Changed("output") {
		format = "json"
	}
	return writeRows(cmd.OutOrStdout(), format, header, rows)
}

func readTables(stdin io.Reader, args []string, dialect csvutil.Dialect) ([]*csvutil.Table, error) {
	if len(args) == 0 {
		if dialect == (csvutil.Dialect{}) {
			dialect = csvutil.Excel
		}
		t, err := csvutil.Read(stdin, dialect)
		if err != nil {
			return nil, err
		}
		return []*csvutil.Table{t}, nil
	}

	var tables []*csvutil.Table
	for _, arg := range args {
		if strings.ContainsAny(arg, "*?[{") {
			matched, err := csvutil.ReadGlob(arg, dialect)
			if err != nil {
				return nil, err
			}
			if len(matched) == 0 {
				output.Warn("no files match %s", arg)
			}
			tables = append(tables, matched...)
			continue
		}
		t, err := csvutil.ReadFile(arg, dialect)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// mergeTables concatenates the rows of all tables. The header is the union
// of the table headers in first-seen order.
func mergeTables(tables []*csvutil.Table) ([]string, []csvutil.Row) {
	var header []string
	seen := make(map[string]bool)
	var rows []csvutil.Row
	hasRest := false
	for _, t := range tables {
		for _, h := range t.Header {
			if !seen[h] {
				seen[h] = true
				header = append(header, h)
			}
		}
		for _, r := range t.Rows() {
			if _, ok := r[csvutil.RestKey]; ok {
				hasRest = true
			}
			rows = append(rows, r)
		}
	}
	if hasRest && !seen[csvutil.RestKey] {
		header = append(header, csvutil.RestKey)
	}
	return header, rows
}

func writeRows(w io.Writer, format string, header []string, rows []csvutil.Row) error {
	switch format {
	case "table":
		data := make([][]string, 0, len(rows))
		for _, r := range rows {
			rec := make([]string, len(header))
			for i, h := range header {
				rec[i] = r[h]
			}
			data = append(data, rec)
		}
		output.Grid(w, header, data)
		return nil
	case "json":
		if rows == nil {
			rows = []csvutil.Row{}
		}
		return output.JSONTo(w, rows)
	case "csv":
		return csvutil.Write(w, csvutil.Excel, header, rows)
	case "tsv":
		return csvutil.Write(w, csvutil.ExcelTab, header, rows)
	default:
		return fmt.Errorf("unknown output format %q (want table, json, csv or tsv)", format)
	}
}

func init() {
	csvCmd.Flags().StringVar(&csvDialect, "dialect", "auto", "Input dialect: csv, tsv, ssv, or auto (from the file extension)")
	csvCmd.Flags().StringVar(&csvWhere, "where", "", "Keep only rows matching this expression")
	csvCmd.Flags().StringVarP(&csvOutput, "output", "o", "table", "Output format: table, json, csv, tsv")
	rootCmd.AddCommand(csvCmd)
}
