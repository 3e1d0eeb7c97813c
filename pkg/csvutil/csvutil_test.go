package csvutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSVString(t *testing.T) {
	rows, header, err := ReadCSVString("name,age\nada,36\nalan,41\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "age"}, header)
	assert.Equal(t, []Row{
		{"name": "ada", "age": "36"},
		{"name": "alan", "age": "41"},
	}, rows)
}

func TestReadTSVString(t *testing.T) {
	rows, header, err := ReadTSVString("a\tb\r\n1\t2\r\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, header)
	assert.Equal(t, []Row{{"a": "1", "b": "2"}}, rows)
}

func TestReadSSVString(t *testing.T) {
	rows, _, err := ReadSSVString("a b c\n1 \"two words\" 3\n")
	require.NoError(t, err)
	assert.Equal(t, []Row{{"a": "1", "b": "two words", "c": "3"}}, rows)
}

func TestRows_RaggedRecords(t *testing.T) {
	rows, _, err := ReadCSVString("a,b\n1\n1,2,3,4\n\n5,6\n")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Row{"a": "1", "b": ""}, rows[0])
	assert.Equal(t, Row{"a": "1", "b": "2", RestKey: "3,4"}, rows[1])
	assert.Equal(t, Row{"a": "5", "b": "6"}, rows[2])
}

func TestReadString_Empty(t *testing.T) {
	rows, header, err := ReadCSVString("")
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Empty(t, header)
}

func TestDialectByName(t *testing.T) {
	for name, want := range map[string]Dialect{
		"csv": Excel, "excel": Excel, "TSV": ExcelTab, "excel-tab": ExcelTab, "ssv": ExcelSpace, "excel-space": ExcelSpace,
	} {
		got, err := DialectByName(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := DialectByName("pipe")
	assert.ErrorIs(t, err, ErrUnknownDialect)
}

func TestDialectForPath(t *testing.T) {
	assert.Equal(t, Excel, DialectForPath("a.csv"))
	assert.Equal(t, ExcelTab, DialectForPath("a.TSV"))
	assert.Equal(t, ExcelSpace, DialectForPath("dir/a.ssv"))
	assert.Equal(t, Excel, DialectForPath("a.txt"))
}

func TestReadFileAndGlob(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.csv"), []byte("x,y\n1,2\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "two.tsv"), []byte("x\ty\n3\t4\n"), 0o644))

	tbl, err := ReadFile(filepath.Join(dir, "nested", "two.tsv"), Dialect{})
	require.NoError(t, err)
	assert.Equal(t, ExcelTab, tbl.Dialect)
	assert.Equal(t, [][]string{{"3", "4"}}, tbl.Records)

	tables, err := ReadGlob(filepath.Join(dir, "**", "*.?sv"), Dialect{})
	require.NoError(t, err)
	require.Len(t, tables, 2)
	sources := []string{tables[0].Source, tables[1].Source}
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "one.csv"),
		filepath.Join(dir, "nested", "two.tsv"),
	}, sources)

	_, err = ReadFile(filepath.Join(dir, "missing.csv"), Dialect{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, ExcelTab, []string{"a", "b"}, []Row{{"a": "1", "b": "2"}, {"a": "3"}})
	require.NoError(t, err)
	assert.Equal(t, "a\tb\n1\t2\n3\t\n", buf.String())
}

func TestFilter(t *testing.T) {
	rows, _, err := ReadCSVString("name,age,team\nada,36,core\nalan,41,infra\ngrace,85,core\n")
	require.NoError(t, err)

	tests := []struct {
		expr string
		want []string
	}{
		{`age > 40`, []string{"alan", "grace"}},
		{`team == "core" && age < 50`, []string{"ada"}},
		{`row["name"] startsWith "g"`, []string{"grace"}},
		{`missing == nil`, []string{"ada", "alan", "grace"}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Filter(rows, tt.expr)
			require.NoError(t, err)
			names := make([]string, 0, len(got))
			for _, r := range got {
				names = append(names, r["name"])
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestFilter_Errors(t *testing.T) {
	rows := []Row{{"a": "1"}}

	_, err := Filter(rows, `a >`)
	assert.Error(t, err)

	_, err = Filter(rows, `a + 1`)
	assert.ErrorContains(t, err, "not bool")
}
