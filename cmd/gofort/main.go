package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"gofort/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "gofort",
	Short: "Fortran storage layout toolchain",
	Long:  `gofort computes storage layouts (offsets, sizes, alignments, COMMON and EQUIVALENCE association) for scope descriptions`,
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves the tri-state --color flag against the output stream.
func useColor(cmd *cobra.Command, f *os.File) bool {
	mode, _ := cmd.Flags().GetString("color")
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(f)
	}
}
