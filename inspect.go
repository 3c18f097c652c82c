package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/horses3d/hpost/lib/control"
	"github.com/horses3d/hpost/lib/discover"
	"github.com/horses3d/hpost/lib/snapio"
)

func (a *app) inspectCmd() *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the header and shape of a solution file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := snapio.ParseByteOrder(a.cfg.ByteOrder)
			if err != nil {
				return err
			}
			sol, err := snapio.ReadSolution(args[0], order)
			if err != nil {
				return err
			}

			if asYAML {
				err := yaml.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"path":       args[0],
					"elements":   sol.ElementCount,
					"iteration":  sol.Iteration,
					"time":       sol.Time,
					"ref_values": sol.RefValues[:],
					"order":      sol.Order[:],
					"shape":      sol.Data.Shape(),
				})
				if err != nil {
					return err
				}
				return a.finish()
			}

			t := newTable(cmd.OutOrStdout(), "Property", "Value")
			t.AppendBulk([][]string{
				{"path", args[0]},
				{"elements", strconv.Itoa(int(sol.ElementCount))},
				{"iteration", strconv.Itoa(int(sol.Iteration))},
				{"time", formatFloat(sol.Time)},
				{"reference values", formatFloats(sol.RefValues[:])},
				{"element order", fmt.Sprint(sol.Order)},
				{"shape", fmt.Sprint(sol.Data.Shape())},
			})
			t.Render()
			return a.finish()
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print YAML instead of a table")
	return cmd
}

func (a *app) meshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mesh <control file>",
		Short: "Print the shape and bounds of a run's mesh",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := snapio.ParseByteOrder(a.cfg.ByteOrder)
			if err != nil {
				return err
			}
			ctrl, err := loadRun(args[0])
			if err != nil {
				return err
			}
			paths, err := discover.Meshes(ctrl, runRoot(args[0]))
			if err != nil {
				return err
			}
			m, err := snapio.ReadMesh(paths[0], order)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d elements, nodes %v\n",
				paths[0], m.ElementCount, m.Nodes.Shape())
			t := newTable(out, "Axis", "Min", "Max")
			for i, b := range m.Bounds() {
				t.Append([]string{
					string("xyz"[i]), formatFloat(b[0]), formatFloat(b[1]),
				})
			}
			t.Render()
			return a.finish()
		},
	}
}

func (a *app) controlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "control <control file>",
		Short: "Print the parameters and boundary blocks of a control file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := control.Load(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			params := newTable(out, "Parameter", "Value")
			params.SetAlignment(tablewriter.ALIGN_LEFT)
			for _, key := range ctrl.Keys {
				params.Append([]string{key, ctrl.Parameters[key]})
			}
			params.Render()

			for _, name := range ctrl.BlockOrder {
				fmt.Fprintf(out, "boundary %s\n", name)
				for _, line := range ctrl.Blocks[name] {
					fmt.Fprintf(out, "  %s\n", line)
				}
			}
			return a.finish()
		},
	}
}

func formatFloats(x []float64) string {
	s := make([]string, len(x))
	for i := range x {
		s[i] = formatFloat(x[i])
	}
	return strings.Join(s, " ")
}
