package outwriter

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/huangsam/schemadiff/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

const timeLayout = "2006-01-02 15:04:05"

// PrintHistoryStatus prints history store status information as a table.
func PrintHistoryStatus(w io.Writer, status schema.HistoryStatus) error {
	rows := [][]string{
		{"Backend", status.Backend},
		{"Connected", strconv.FormatBool(status.Connected)},
	}
	if status.Connected {
		rows = append(rows, []string{"Total Runs", strconv.Itoa(status.TotalRuns)})
		if status.TotalRuns > 0 {
			rows = append(rows,
				[]string{"Last Run ID", strconv.FormatInt(status.LastRunID, 10)},
				[]string{"Last Run", status.LastRunTime.Format(timeLayout)},
				[]string{"Oldest Run", status.OldestRunTime.Format(timeLayout)},
				[]string{"Total Files Compared", strconv.Itoa(status.TotalFilesCompared)},
				[]string{"Major Runs", strconv.Itoa(status.MajorRuns)},
			)
		}
		tables := make([]string, 0, len(status.TableSizes))
		for name := range status.TableSizes {
			tables = append(tables, name)
		}
		slices.Sort(tables)
		for _, name := range tables {
			rows = append(rows, []string{name, fmt.Sprintf("%d rows", status.TableSizes[name])})
		}
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Property", "Value"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}
