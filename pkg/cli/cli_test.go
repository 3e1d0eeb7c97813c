package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitir/kitir/pkg/cliconfig"
	"github.com/kitir/kitir/pkg/csvutil"
)

func TestMergeTables(t *testing.T) {
	a := &csvutil.Table{Dialect: csvutil.Excel, Header: []string{"id", "name"}, Records: [][]string{{"1", "ada"}}}
	b := &csvutil.Table{Dialect: csvutil.Excel, Header: []string{"id", "team"}, Records: [][]string{{"2", "core", "extra"}}}

	header, rows := mergeTables([]*csvutil.Table{a, b})
	assert.Equal(t, []string{"id", "name", "team", csvutil.RestKey}, header)
	require.Len(t, rows, 2)
	assert.Equal(t, "core", rows[1]["team"])
	assert.Equal(t, "extra", rows[1][csvutil.RestKey])
}

func TestWriteRows(t *testing.T) {
	header := []string{"a", "b"}
	rows := []csvutil.Row{{"a": "1", "b": "x y"}}

	var buf bytes.Buffer
	require.NoError(t, writeRows(&buf, "tsv", header, rows))
	assert.Equal(t, "a\tb\n1\tx y\n", buf.String())

	buf.Reset()
	require.NoError(t, writeRows(&buf, "json", header, rows))
	assert.JSONEq(t, `[{"a":"1","b":"x y"}]`, buf.String())

	buf.Reset()
	require.NoError(t, writeRows(&buf, "json", header, nil))
	assert.JSONEq(t, `[]`, buf.String())

	buf.Reset()
	require.NoError(t, writeRows(&buf, "table", header, rows))
	assert.Contains(t, buf.String(), "x y")
	assert.Contains(t, buf.String(), "A")

	assert.Error(t, writeRows(&buf, "xml", header, rows))
}

func TestConfigEntries(t *testing.T) {
	c := cliconfig.NewDefault()
	c.Sources["name"] = cliconfig.SourceEnv

	entries := configEntries(c)
	byKey := make(map[string]ConfigEntry, len(entries))
	for _, e := range entries {
		byKey[e.Key] = e
	}
	require.Contains(t, byKey, "name")
	assert.Equal(t, cliconfig.SourceEnv, byKey["name"].Source)
	assert.Equal(t, "2m0s", byKey["timeout"].Value)
	assert.Equal(t, cliconfig.SourceDefault, byKey["logFile"].Source)
	assert.NotContains(t, byKey, "-")

	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].Key, entries[i].Key)
	}
}

func TestYAMLKey(t *testing.T) {
	assert.Equal(t, "logFile", yamlKey("logFile,omitempty"))
	assert.Equal(t, "name", yamlKey("name"))
}
