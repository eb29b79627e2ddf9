package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"

	"RSILab/internal/model"
)

// PivotRows lays a sweep table out with one row per lookback and one column per
// threshold. Empty cells are rendered as an empty string.
func PivotRows(tbl *model.SweepTable) [][]string {
	header := append([]string{"lookback"}, lo.Map(tbl.Thresholds(), func(th int, _ int) string {
		return strconv.Itoa(th)
	})...)
	rows := [][]string{header}
	for _, p := range tbl.Lookbacks() {
		row := []string{strconv.Itoa(p)}
		for _, c := range tbl.Row(p) {
			row = append(row, formatCell(c, "%.4f"))
		}
		rows = append(rows, row)
	}
	return rows
}

func formatCell(c model.SweepCell, format string) string {
	v, ok := c.Value()
	if !ok {
		return ""
	}
	return fmt.Sprintf(format, v)
}

// WritePivotCSV writes the pivot of tbl as CSV.
func WritePivotCSV(w io.Writer, tbl *model.SweepTable) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(PivotRows(tbl)); err != nil {
		return fmt.Errorf("write pivot csv: %w", err)
	}
	return nil
}

// PivotFileName returns the CSV file name for one direction of a sweep.
func PivotFileName(res *model.SweepResult, dir model.Direction) string {
	sym := strings.NewReplacer("^", "", "/", "_", " ", "_").Replace(res.Symbol)
	return fmt.Sprintf("%s_%s_%s_%s_h%d.csv", sym, strings.ToLower(string(dir)),
		res.Start.Format("20060102"), res.End.Format("20060102"), res.HorizonDays)
}

// SavePivots writes both pivots of res under dir and returns the file paths.
func SavePivots(dir string, res *model.SweepResult) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}
	var paths []string
	for _, tbl := range []*model.SweepTable{res.Upper, res.Lower} {
		path := filepath.Join(dir, PivotFileName(res, tbl.Direction()))
		if err := writeFile(path, func(w io.Writer) error { return WritePivotCSV(w, tbl) }); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WritePivotText renders tbl as an aligned text table. Empty cells print as "-".
func WritePivotText(w io.Writer, tbl *model.SweepTable) error {
	title := "RSI crossed above threshold"
	if tbl.Direction() == model.Lower {
		title = "RSI crossed below threshold"
	}
	if _, err := fmt.Fprintf(w, "%s (avg forward change %%, rows=lookback, cols=threshold)\n", title); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "p\\t\t")
	for _, th := range tbl.Thresholds() {
		fmt.Fprintf(tw, "%d\t", th)
	}
	fmt.Fprintln(tw)
	for _, p := range tbl.Lookbacks() {
		fmt.Fprintf(tw, "%d\t", p)
		for _, c := range tbl.Row(p) {
			s := formatCell(c, "%+.2f")
			if s == "" {
				s = "-"
			}
			fmt.Fprintf(tw, "%s\t", s)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
