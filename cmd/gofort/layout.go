package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"gofort/internal/diag"
	"gofort/internal/diagfmt"
	"gofort/internal/layout"
	"gofort/internal/source"
	"gofort/internal/symfile"
	"gofort/internal/target"
)

var layoutCmd = &cobra.Command{
	Use:   "layout [files...]",
	Short: "Compute storage layout for scope description files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLayout,
}

func init() {
	layoutCmd.Flags().String("target", "x86_64-linux-gnu", "target preset name or a target TOML file")
	layoutCmd.Flags().StringP("out", "o", "", "write a msgpack layout snapshot (single input only)")
}

// layoutResult is everything computed for one input file; inputs are
// processed in parallel but printed in argument order.
type layoutResult struct {
	path     string
	fileSet  *source.FileSet
	bag      *diag.Bag
	snapshot *layout.Snapshot
}

func runLayout(cmd *cobra.Command, args []string) error {
	tgt, err := resolveTarget(cmd)
	if err != nil {
		bag := diag.NewBag(1)
		diag.ReportError(diag.BagReporter{Bag: bag}, diag.CfgInvalidTarget, source.Span{}, err.Error()).Emit()
		diagfmt.Pretty(cmd.ErrOrStderr(), bag, nil, diagfmt.PrettyOpts{Color: useColor(cmd, os.Stderr)})
		return fmt.Errorf("invalid target")
	}
	outPath, _ := cmd.Flags().GetString("out")
	if outPath != "" && len(args) != 1 {
		return fmt.Errorf("--out requires exactly one input file")
	}
	maxDiags, _ := cmd.Flags().GetInt("max-diagnostics")
	if maxDiags <= 0 {
		return fmt.Errorf("--max-diagnostics must be positive, got %d", maxDiags)
	}

	results := make([]*layoutResult, len(args))
	var g errgroup.Group
	for i, path := range args {
		i, path := i, path
		g.Go(func() error {
			results[i] = layoutOneFile(path, tgt, maxDiags)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	colored := useColor(cmd, os.Stdout)
	hadErrors := false
	for _, res := range results {
		res.bag.Sort()
		diagfmt.Pretty(cmd.OutOrStdout(), res.bag, res.fileSet, diagfmt.PrettyOpts{Color: colored})
		hadErrors = hadErrors || res.bag.HasErrors()
		printSnapshot(cmd, res, colored)
	}
	if outPath != "" && results[0].snapshot != nil {
		data, err := results[0].snapshot.Encode()
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
	}
	if hadErrors {
		return fmt.Errorf("layout finished with errors")
	}
	return nil
}

// layoutOneFile never fails outright: load problems become diagnostics in
// the result's bag, so one broken input does not abort the other files.
func layoutOneFile(path string, tgt target.Characteristics, maxDiags int) *layoutResult {
	fs := source.NewFileSet()
	bag := diag.NewBag(maxDiags)
	table, root, err := symfile.Load(path, fs)
	if err != nil {
		code := diag.CfgInvalidSymFile
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			code = diag.IOLoadFileError
		}
		diag.ReportError(diag.BagReporter{Bag: bag}, code, source.Span{}, err.Error()).Emit()
		return &layoutResult{path: path, fileSet: fs, bag: bag}
	}
	engine := layout.NewEngine(table, tgt, diag.BagReporter{Bag: bag}, nil)
	engine.Compute(root)
	return &layoutResult{
		path:     path,
		fileSet:  fs,
		bag:      bag,
		snapshot: engine.TakeSnapshot(root),
	}
}

func resolveTarget(cmd *cobra.Command) (target.Characteristics, error) {
	name, _ := cmd.Flags().GetString("target")
	if tgt, ok := target.Preset(name); ok {
		return tgt, nil
	}
	if _, err := os.Stat(name); err == nil {
		return target.Load(name)
	}
	return target.Characteristics{}, fmt.Errorf("unknown target %q: not a preset and not a file", name)
}
