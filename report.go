package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/horses3d/hpost/lib/derive"
	"github.com/horses3d/hpost/lib/field"
	"github.com/horses3d/hpost/lib/store"
)

// report is what "process" prints for each snapshot.
type report struct {
	Path      string           `yaml:"path"`
	Iteration uint32           `yaml:"iteration"`
	Time      float64          `yaml:"time"`
	Shape     [5]int           `yaml:"shape"`
	Fields    []field.Entry    `yaml:"fields"`
	Summaries []derive.Summary `yaml:"summaries"`
}

// buildReport computes names on snapshot h and summarizes them.
func buildReport(
	st *store.Store, eng *derive.Engine, h store.Handle, names []string,
) (*report, error) {
	if err := eng.Compute(h, names...); err != nil {
		return nil, err
	}
	snap, err := st.Snapshot(h)
	if err != nil {
		return nil, err
	}

	r := &report{
		Path:      snap.Path,
		Iteration: snap.Iteration,
		Time:      snap.Time,
		Shape:     snap.Data().Shape(),
		Fields:    snap.Fields().Entries(),
	}
	for _, name := range names {
		s, err := derive.Summarize(snap, name)
		if err != nil {
			return nil, err
		}
		r.Summaries = append(r.Summaries, s)
	}
	return r, nil
}

func writeReports(w io.Writer, reports []*report, asYAML bool) error {
	if asYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return enc.Close()
	}

	for _, r := range reports {
		fmt.Fprintf(w, "%s: iteration %d, time %g, shape %v\n",
			r.Path, r.Iteration, r.Time, r.Shape)

		fields := newTable(w, "Field", "Index")
		for _, ent := range r.Fields {
			fields.Append([]string{ent.Name, strconv.Itoa(ent.Index)})
		}
		fields.Render()

		if len(r.Summaries) == 0 {
			continue
		}
		stats := newTable(w, "Field", "Min", "Max", "Mean", "StdDev")
		for _, s := range r.Summaries {
			stats.Append([]string{
				s.Field, formatFloat(s.Min), formatFloat(s.Max),
				formatFloat(s.Mean), formatFloat(s.StdDev),
			})
		}
		stats.Render()
	}
	return nil
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetAlignment(tablewriter.ALIGN_RIGHT)
	return t
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', 6, 64)
}
