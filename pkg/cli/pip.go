package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kitir/kitir/pkg/cli/internal/output"
	"github.com/kitir/kitir/pkg/pip"
)

var (
	pipNoUpgrade        bool
	pipEgg              bool
	pipNoForceReinstall bool
	pipIsolated         bool
	pipNoCacheDir       bool
	pipClearCache       bool
	pipTraceFile        string
	pipQuiet            bool
	pipNoGet            bool
)

var pipCmd = &cobra.Command{
	Use:   "pip",
	Short: "Install or uninstall Python packages with whichever pip works",
	Long: `Install or uninstall Python packages with whichever pip works.

The candidates "python -m pip", "pip" and (on Linux) "sudo -H pip" are tried in
order. When none works on Linux, get-pip.py is downloaded and run. Output is
traced to <artifact dir>/packages/pip/.`,
}

func newPip() *pip.Pip {
	return pip.New(pip.WithLogger(logger), pip.WithArtifactDir(cfg.ArtifactDir))
}

func pipVerifyOptions() pip.VerifyOptions {
	return pip.VerifyOptions{GetIfNeeded: !pipNoGet, RaiseOnFailure: true}
}

func newPipModeCmd(mode pip.Mode) *cobra.Command {
	return &cobra.Command{
		Use:   string(mode) + " <package>...",
		Short: fmt.Sprintf("Run pip %s", mode),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o := pip.DefaultOptions()
			o.Upgrade = !pipNoUpgrade
			o.Egg = pipEgg
			o.ForceReinstall = !pipNoForceReinstall
			o.Isolated = pipIsolated
			o.NoCacheDir = pipNoCacheDir
			o.ClearCache = pipClearCache
			o.TraceFile = pipTraceFile
			o.ToConsole = !pipQuiet && !jsonOutput
			o.Verify = pipVerifyOptions()

			res, err := newPip().Command(cmd.Context(), mode, args, o)
			if err != nil {
				return err
			}
			if jsonOutput {
				if err := output.JSON(map[string]any{
					"args": res.Args, "rc": res.RC, "good": res.Good(), "duration": res.Duration.String(),
				}); err != nil {
					return err
				}
			}
			if !res.Good() {
				return fmt.Errorf("pip %s exited with status %d", mode, res.RC)
			}
			return nil
		},
	}
}

var pipVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Find a working pip and print how it is invoked",
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := newPip().Verify(cmd.Context(), pipVerifyOptions())
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.JSON(map[string]any{"base": []string(base)})
		}
		fmt.Println(base.String())
		return nil
	},
}

func init() {
	pf := pipCmd.PersistentFlags()
	pf.BoolVar(&pipNoGet, "no-get-pip", false, "Do not download get-pip.py when pip is missing")

	install := newPipModeCmd(pip.Install)
	f := install.Flags()
	f.BoolVar(&pipNoUpgrade, "no-upgrade", false, "Do not pass --upgrade")
	f.BoolVar(&pipEgg, "egg", false, "Pass --egg (legacy pip only)")
	f.BoolVar(&pipNoForceReinstall, "no-force-reinstall", false, "Do not pass --force-reinstall")
	f.BoolVar(&pipIsolated, "isolated", false, "Pass --isolated")
	f.BoolVar(&pipNoCacheDir, "no-cache-dir", false, "Pass --no-cache-dir")

	uninstall := newPipModeCmd(pip.Uninstall)
	for _, c := range []*cobra.Command{install, uninstall} {
		c.Flags().BoolVar(&pipClearCache, "clear-cache", false, "Remove the pip cache directory first")
		c.Flags().StringVar(&pipTraceFile, "trace-file", "", "Trace pip output to this file")
		c.Flags().BoolVarP(&pipQuiet, "quiet", "q", false, "Do not echo pip output")
		pipCmd.AddCommand(c)
	}
	pipCmd.AddCommand(pipVerifyCmd)
	rootCmd.AddCommand(pipCmd)
}
