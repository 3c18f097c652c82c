package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/horses3d/hpost/lib/control"
	"github.com/horses3d/hpost/lib/derive"
	"github.com/horses3d/hpost/lib/discover"
	"github.com/horses3d/hpost/lib/format"
	"github.com/horses3d/hpost/lib/snapio"
	"github.com/horses3d/hpost/lib/store"
	"github.com/horses3d/hpost/lib/watch"
)

// processOptions are the flags shared by "process" and "watch".
type processOptions struct {
	fields []string
	yaml   bool
}

func (o *processOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&o.fields, "fields",
		append([]string(nil), derive.Names...),
		"derived quantities to compute")
	cmd.Flags().BoolVar(&o.yaml, "yaml", false, "print YAML instead of tables")
}

func (a *app) processCmd() *cobra.Command {
	opts := &processOptions{}
	var (
		snaps       string
		first, last string
		skip        int
	)

	cmd := &cobra.Command{
		Use:   "process <control file>",
		Short: "Compute derived quantities for a run's snapshots",
		Long: `process finds the solution files of the run described by a control file,
loads a selection of them and computes derived quantities for each.

By default only the newest snapshot is processed. --snaps picks snapshots by
their position in the sorted file list with a sequence format such as
"0..10 - 3". --first, --last and --skip instead pick every (skip+1)-th file
between two named files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := loadRun(args[0])
			if err != nil {
				return err
			}
			paths, err := discover.Solutions(ctrl)
			if err != nil {
				return err
			}
			a.log.Info("found solution files", zap.Int("count", len(paths)))

			st, eng, err := a.newPipeline()
			if err != nil {
				return err
			}

			var hs []store.Handle
			if first != "" || last != "" || skip != 0 {
				hs, err = st.LoadRange(paths, matchPath(paths, first, 0),
					matchPath(paths, last, len(paths)-1), skip)
			} else {
				var sel []string
				if sel, err = format.Select(paths, snaps); err == nil {
					hs, err = st.LoadMany(sel)
				}
			}
			if err != nil {
				return err
			}

			reports := make([]*report, 0, len(hs))
			for _, h := range hs {
				r, err := buildReport(st, eng, h, opts.fields)
				if err != nil {
					return err
				}
				reports = append(reports, r)
			}
			if err := writeReports(cmd.OutOrStdout(), reports, opts.yaml); err != nil {
				return err
			}
			return a.finish()
		},
	}

	cmd.Flags().StringVar(&snaps, "snaps", "",
		"sequence format selecting snapshots by position (default: newest)")
	cmd.Flags().StringVar(&first, "first", "",
		"first file of a load range (default: oldest)")
	cmd.Flags().StringVar(&last, "last", "",
		"last file of a load range (default: newest)")
	cmd.Flags().IntVar(&skip, "skip", 0,
		"files skipped between each file of a load range")
	opts.register(cmd)
	return cmd
}

func (a *app) watchCmd() *cobra.Command {
	opts := &processOptions{}
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch <control file>",
		Short: "Process snapshots as a running solver writes them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := loadRun(args[0])
			if err != nil {
				return err
			}
			name, err := ctrl.SolutionFileName()
			if err != nil {
				return err
			}
			dir, base := discover.SolutionBase(name)
			pattern := base + "_*" + discover.SolutionExt
			patterns := []string{
				pattern, pattern + snapio.ZstdExt, pattern + snapio.GzipExt,
			}

			w, err := watch.New(dir, patterns, debounce, a.log)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			if err := w.Start(ctx); err != nil {
				w.Stop()
				return err
			}
			defer w.Stop()

			return a.consume(cmd, w.Files(), opts)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce,
		"how long a file must be unchanged before it is processed")
	opts.register(cmd)
	return cmd
}

// consume processes files until files is closed, which happens when the
// watcher stops. A file that cannot be processed is reported and skipped.
func (a *app) consume(
	cmd *cobra.Command, files <-chan string, opts *processOptions,
) error {
	st, eng, err := a.newPipeline()
	if err != nil {
		return err
	}

	for path := range files {
		h, err := st.LoadOne(path)
		if err == nil {
			var r *report
			if r, err = buildReport(st, eng, h, opts.fields); err == nil {
				err = writeReports(cmd.OutOrStdout(), []*report{r}, opts.yaml)
			}
		}
		if err != nil {
			a.log.Warn("snapshot skipped", zap.String("path", path),
				zap.Error(err))
			continue
		}
		if err := a.finish(); err != nil {
			return err
		}
	}
	return nil
}

// newPipeline creates the store and engine described by the configuration.
func (a *app) newPipeline() (*store.Store, *derive.Engine, error) {
	order, err := snapio.ParseByteOrder(a.cfg.ByteOrder)
	if err != nil {
		return nil, nil, err
	}
	st, err := store.New(
		store.WithLogger(a.log),
		store.WithByteOrder(order),
		store.WithCacheSize(a.cfg.CacheSize),
	)
	if err != nil {
		return nil, nil, err
	}

	eng := derive.New(st, a.log)
	eng.Gamma, eng.R = a.cfg.Gamma, a.cfg.GasConstant
	if err := eng.Validate(); err != nil {
		return nil, nil, err
	}
	return st, eng, nil
}

// loadRun loads a control file. A relative solution file name is taken to
// be relative to the control file's directory, where the solver runs.
func loadRun(path string) (*control.Control, error) {
	ctrl, err := control.Load(path)
	if err != nil {
		return nil, err
	}
	name, err := ctrl.SolutionFileName()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if !filepath.IsAbs(name) {
		ctrl.Set(control.SolutionFileKey,
			`"`+filepath.Join(filepath.Dir(path), name)+`"`)
	}
	return ctrl, nil
}

// runRoot is the directory a run's MESH directory lives in.
func runRoot(controlPath string) string {
	return filepath.Dir(controlPath)
}

// matchPath returns the element of paths that name refers to, either
// exactly or by base name. An empty name gives paths[def]. Unmatched names
// are returned unchanged so that the range lookup reports them.
func matchPath(paths []string, name string, def int) string {
	if name == "" {
		return paths[def]
	}
	for _, p := range paths {
		if p == name || filepath.Base(p) == name ||
			snapio.TrimCompression(filepath.Base(p)) == name {
			return p
		}
	}
	return name
}
