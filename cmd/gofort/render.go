package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"gofort/internal/layout"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	columnStyle = lipgloss.NewStyle().Faint(true)
)

func printSnapshot(cmd *cobra.Command, res *layoutResult, colored bool) {
	if res.snapshot == nil {
		return
	}
	out := cmd.OutOrStdout()
	header := func(s string) string {
		if colored {
			return headerStyle.Render(s)
		}
		return s
	}
	columns := func(s string) string {
		if colored {
			return columnStyle.Render(s)
		}
		return s
	}
	fmt.Fprintf(out, "%s\n", header(res.path))
	for _, scope := range res.snapshot.Scopes {
		fmt.Fprintf(out, "%s\n", header(fmt.Sprintf("scope %s: size %d, align %d", scope.Kind, scope.Size, scope.Align)))
		if len(scope.Symbols) > 0 {
			fmt.Fprintf(out, "  %s\n", columns(fmt.Sprintf("%-16s %8s %8s  %s", "NAME", "OFFSET", "SIZE", "COMMON")))
			for _, sym := range scope.Symbols {
				printSymbol(cmd, sym)
			}
		}
		for _, block := range scope.Commons {
			name := block.Name
			if name == "" {
				name = " " // blank COMMON renders as / /
			}
			fmt.Fprintf(out, "%s\n", header(fmt.Sprintf("common /%s/: size %d, align %d", name, block.Size, block.Align)))
			for _, member := range block.Members {
				printSymbol(cmd, member)
			}
		}
	}
}

func printSymbol(cmd *cobra.Command, sym layout.SymbolLayout) {
	fmt.Fprintf(cmd.OutOrStdout(), "  %-16s %8d %8d  %s\n", sym.Name, sym.Offset, sym.Size, sym.Common)
}
