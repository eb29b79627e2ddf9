package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"RSILab/internal/model"
)

// RSIRow is one defined bar of an RSI report.
type RSIRow struct {
	Point model.PricePoint
	RSI   float64
	Zone  model.RSIZone
}

// RSIRows joins prices with their defined RSI values. rsi must have been
// computed from prices.
func RSIRows(prices model.PriceSeries, rsi model.RSISeries) ([]RSIRow, error) {
	if len(rsi.Points) != prices.Len() {
		return nil, fmt.Errorf("rsi series has %d points, prices have %d", len(rsi.Points), prices.Len())
	}
	var rows []RSIRow
	for i, p := range rsi.Points {
		if !p.Valid {
			continue
		}
		rows = append(rows, RSIRow{Point: prices.Points[i], RSI: p.Value, Zone: model.ZoneOf(p.Value)})
	}
	return rows, nil
}

// WriteRSICSV writes date, close, rsi and zone columns.
func WriteRSICSV(w io.Writer, rows []RSIRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "close", "rsi", "zone"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Point.Time.Format("2006-01-02"),
			strconv.FormatFloat(r.Point.Close, 'f', -1, 64),
			strconv.FormatFloat(r.RSI, 'f', 4, 64),
			string(r.Zone),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRSIText prints the last n rows (all when n <= 0) as an aligned table.
func WriteRSIText(w io.Writer, rows []RSIRow, n int) error {
	if n > 0 && len(rows) > n {
		rows = rows[len(rows)-n:]
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "date\tclose\trsi\tzone")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%s\n", r.Point.Time.Format("2006-01-02"), r.Point.Close, r.RSI, r.Zone)
	}
	return tw.Flush()
}
