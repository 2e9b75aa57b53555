package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/plan-eval/plan-eval/eval"
)

var (
	exportBaselinePath string // Baseline unit CSV
	exportPlansPath    string // Plan ensemble JSONL, optionally gzipped
	exportOutPath      string // Destination assignment CSV
	exportPlanIndex    int    // How many plans to apply before exporting (0 = baseline as-is)
	exportSkipRecords  int    // Leading stream lines skipped as metadata
)

// exportCmd applies plans through a given index and writes the resulting
// unit-to-district assignment as CSV, in baseline order.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Apply plans through a given index and export the assignment CSV",
	Run: func(cmd *cobra.Command, args []string) {
		reg, err := eval.LoadBaselineFile(exportBaselinePath, false)
		if err != nil {
			logrus.Fatalf("Baseline load failed: %v", err)
		}
		stream, err := eval.OpenPlanStream(exportPlansPath)
		if err != nil {
			logrus.Fatalf("Plan stream open failed: %v", err)
		}
		defer func() { _ = stream.Close() }()

		line, applied := 0, 0
		for applied < exportPlanIndex {
			raw, err := stream.Next()
			if err == io.EOF {
				logrus.Fatalf("Plan stream ended after %d plans, wanted %d", applied, exportPlanIndex)
			}
			if err != nil {
				logrus.Fatalf("Plan stream read failed: %v", err)
			}
			line++
			if line <= exportSkipRecords {
				continue
			}
			plan, err := eval.DecodePlan(raw, line)
			if err != nil {
				logrus.Fatalf("Plan decode failed: %v", err)
			}
			eval.Resolve(reg, plan)
			applied++
		}

		if err := writeAssignmentCSV(exportOutPath, reg); err != nil {
			logrus.Fatalf("Assignment export failed: %v", err)
		}
		logrus.Infof("exported assignment after plan %d to %s", applied, exportOutPath)
	},
}

// writeAssignmentCSV writes the registry's live assignments in baseline order.
func writeAssignmentCSV(path string, reg *eval.Registry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write([]string{"county_name", "precinct_name", "district"}); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing header: %w", err)
	}
	for _, u := range reg.Units {
		if err := w.Write([]string{u.County, u.Precinct, strconv.Itoa(u.Assignment)}); err != nil {
			_ = f.Close()
			return fmt.Errorf("writing unit %s/%s: %w", u.County, u.Precinct, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flushing assignment csv: %w", err)
	}
	return f.Close()
}

func init() {
	exportCmd.Flags().StringVar(&exportBaselinePath, "baseline", "", "Path to baseline unit CSV")
	exportCmd.Flags().StringVar(&exportPlansPath, "plans", "", "Path to plan ensemble JSONL (a .gz suffix inflates)")
	exportCmd.Flags().StringVar(&exportOutPath, "out", "assignment.csv", "Destination assignment CSV")
	exportCmd.Flags().IntVar(&exportPlanIndex, "plan", 0, "How many plans to apply before exporting (0 = baseline as-is)")
	exportCmd.Flags().IntVar(&exportSkipRecords, "skip-records", 3, "Leading stream lines skipped as metadata")
	_ = exportCmd.MarkFlagRequired("baseline")
	_ = exportCmd.MarkFlagRequired("plans")

	rootCmd.AddCommand(exportCmd)
}
