package cli

import (
	"fmt"
	"os"
	"reflect"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/kitir/kitir/pkg/cli/internal/output"
	"github.com/kitir/kitir/pkg/cliconfig"
)

// ConfigEntry is one effective setting and where it came from.
type ConfigEntry struct {
	Key    string `json:"key"`
	Value  any    `json:"value"`
	Source string `json:"source"`
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration and where each value came from",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries := configEntries(cfg)
		if jsonOutput {
			return output.JSON(entries)
		}

		title := cases.Title(language.English)
		w := output.Table()
		fmt.Fprintln(w, "KEY\tVALUE\tSOURCE")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%v\t%s\n", e.Key, e.Value, title.String(e.Source))
		}
		return w.Flush()
	},
}

var configPathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "List the config files kitir looks for",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, p := range cliconfig.SearchPaths() {
			state := "missing"
			if _, err := os.Stat(p); err == nil {
				state = "found"
			}
			fmt.Printf("%s\t%s\n", p, state)
		}
		return nil
	},
}

var configTemplateCmd = &cobra.Command{
	Use:   "template",
	Short: "Print the effective configuration as a YAML config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := *cfg
		data, err := yaml.Marshal(&out)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

// configEntries lists every yaml-tagged field of c in key order.
func configEntries(c *cliconfig.Config) []ConfigEntry {
	v := reflect.ValueOf(c).Elem()
	t := v.Type()
	var entries []ConfigEntry
	for i := 0; i < t.NumField(); i++ {
		key := yamlKey(t.Field(i).Tag.Get("yaml"))
		if key == "" || key == "-" {
			continue
		}
		source := c.Sources[key]
		if source == "" {
			source = cliconfig.SourceDefault
		}
		value := v.Field(i).Interface()
		if s, ok := value.(fmt.Stringer); ok {
			value = s.String()
		}
		entries = append(entries, ConfigEntry{Key: key, Value: value, Source: source})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

func yamlKey(tag string) string {
	for i := 0; i < len(tag); i++ {
		if tag[i] == ',' {
			return tag[:i]
		}
	}
	return tag
}

func init() {
	configCmd.AddCommand(configPathsCmd, configTemplateCmd)
	rootCmd.AddCommand(configCmd)
}
