package cmd

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/plan-eval/plan-eval/eval"
	"github.com/plan-eval/plan-eval/eval/archive"
	"github.com/plan-eval/plan-eval/eval/sink"
)

var (
	// CLI flags for the tally run
	specFilePath      string  // Optional evaluation spec YAML
	baselinePath      string  // Baseline unit CSV
	plansPath         string  // Plan ensemble JSONL, optionally gzipped
	skipRecords       int     // Leading stream lines skipped as metadata
	maxDistrict       int     // Highest accepted district index (0 = unbounded)
	districtPolicy    string  // Out-of-range district policy (drop, fail)
	strictBaseline    bool    // Duplicate baseline identities become fatal
	competitiveMargin float64 // Vote-share margin for competitive districts
	jsonlPath         string  // Per-plan JSONL score export
	sqlitePath        string  // SQLite results database
	archivePath       string  // Compressed assignment archive
	archiveWindow     int     // Assignments per archive chunk
	colorOutput       bool    // Colorize console histogram output
)

// tallyCmd executes a full evaluation run using parameters from CLI flags,
// environment variables, and an optional spec file.
var tallyCmd = &cobra.Command{
	Use:   "tally",
	Short: "Stream a plan ensemble against a baseline and tally district wins",
	Run: func(cmd *cobra.Command, args []string) {
		spec := DefaultEvalSpec()
		if specFilePath != "" {
			if err := LoadEvalSpec(specFilePath, &spec); err != nil {
				logrus.Fatalf("Evaluation spec failed: %v", err)
			}
		}
		if err := ApplyEnv(&spec); err != nil {
			logrus.Fatalf("Environment overrides failed: %v", err)
		}
		overlayFlags(cmd, &spec)

		if spec.Baseline == "" {
			logrus.Fatalf("Baseline file not provided. Exiting run.")
		}
		if spec.Plans == "" {
			logrus.Fatalf("Plan stream not provided. Exiting run.")
		}

		runID := uuid.New().String()
		sinks := sink.Multi{sink.NewConsoleSink(os.Stdout, spec.Color)}
		if spec.JSONLPath != "" {
			js, err := sink.NewJSONLSink(spec.JSONLPath, runID)
			if err != nil {
				logrus.Fatalf("JSONL sink failed: %v", err)
			}
			sinks = append(sinks, js)
		}
		if spec.SQLitePath != "" {
			ss, err := sink.NewSQLiteSink(spec.SQLitePath, runID)
			if err != nil {
				logrus.Fatalf("SQLite sink failed: %v", err)
			}
			sinks = append(sinks, ss)
		}

		driver, err := eval.NewDriver(spec.Config(), sinks)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		logrus.Infof("Starting run %s: baseline=%s, plans=%s, skip=%d, policy=%s",
			runID, spec.Baseline, spec.Plans, spec.SkipRecords, spec.DistrictPolicy)

		baseline, err := os.Open(spec.Baseline)
		if err != nil {
			logrus.Fatalf("Baseline open failed: %v", err)
		}
		if err := driver.LoadBaseline(baseline); err != nil {
			logrus.Fatalf("Baseline load failed: %v", err)
		}
		_ = baseline.Close()

		var archiveFile *os.File
		if spec.ArchivePath != "" {
			archiveFile, err = os.Create(spec.ArchivePath)
			if err != nil {
				logrus.Fatalf("Archive create failed: %v", err)
			}
			if err := driver.ArchiveTo(archiveFile, spec.ArchiveWindow); err != nil {
				logrus.Fatalf("Archive setup failed: %v", err)
			}
		}

		stream, err := eval.OpenPlanStream(spec.Plans)
		if err != nil {
			logrus.Fatalf("Plan stream open failed: %v", err)
		}

		startTime := time.Now()
		runErr := driver.Stream(stream)
		_ = stream.Close()
		if archiveFile != nil {
			_ = archiveFile.Close()
		}
		// Flush the sinks either way so output from already-processed plans
		// stands even when the run fails partway.
		closeErr := sinks.Close()
		if runErr != nil {
			logrus.Fatalf("Run failed: %v", runErr)
		}
		if closeErr != nil {
			logrus.Fatalf("Closing outputs failed: %v", closeErr)
		}

		summary := driver.Tracker.Snapshot()
		logrus.Infof("Tally complete in %v: %d plans, histogram=%v, average=%.4f",
			time.Since(startTime), summary.Plans, summary.Histogram, summary.Average)
	},
}

// overlayFlags applies explicitly set flags over the spec, completing the
// flags > env > file > defaults precedence.
func overlayFlags(cmd *cobra.Command, spec *EvalSpec) {
	if cmd.Flags().Changed("baseline") {
		spec.Baseline = baselinePath
	}
	if cmd.Flags().Changed("plans") {
		spec.Plans = plansPath
	}
	if cmd.Flags().Changed("skip-records") {
		spec.SkipRecords = skipRecords
	}
	if cmd.Flags().Changed("max-district") {
		spec.MaxDistrict = maxDistrict
	}
	if cmd.Flags().Changed("district-policy") {
		spec.DistrictPolicy = districtPolicy
	}
	if cmd.Flags().Changed("strict-baseline") {
		spec.StrictBaseline = strictBaseline
	}
	if cmd.Flags().Changed("competitive-margin") {
		spec.CompetitiveMargin = competitiveMargin
	}
	if cmd.Flags().Changed("jsonl") {
		spec.JSONLPath = jsonlPath
	}
	if cmd.Flags().Changed("sqlite") {
		spec.SQLitePath = sqlitePath
	}
	if cmd.Flags().Changed("archive") {
		spec.ArchivePath = archivePath
	}
	if cmd.Flags().Changed("archive-window") {
		spec.ArchiveWindow = archiveWindow
	}
	if cmd.Flags().Changed("color") {
		spec.Color = colorOutput
	}
}

func init() {
	tallyCmd.Flags().StringVar(&specFilePath, "spec", "", "Path to evaluation spec YAML")
	tallyCmd.Flags().StringVar(&baselinePath, "baseline", "", "Path to baseline unit CSV")
	tallyCmd.Flags().StringVar(&plansPath, "plans", "", "Path to plan ensemble JSONL (a .gz suffix inflates)")
	tallyCmd.Flags().IntVar(&skipRecords, "skip-records", 3, "Leading stream lines skipped as metadata")
	tallyCmd.Flags().IntVar(&maxDistrict, "max-district", 0, "Highest accepted district index (0 = unbounded)")
	tallyCmd.Flags().StringVar(&districtPolicy, "district-policy", "drop", "Policy for district indices above the maximum (drop, fail)")
	tallyCmd.Flags().BoolVar(&strictBaseline, "strict-baseline", false, "Treat duplicate baseline identities as fatal")
	tallyCmd.Flags().Float64Var(&competitiveMargin, "competitive-margin", 0.03, "Vote-share distance from 1/2 counted as competitive")
	tallyCmd.Flags().StringVar(&jsonlPath, "jsonl", "", "Write per-plan scores as JSONL (a .gz suffix compresses)")
	tallyCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "Write per-plan results to a SQLite database")
	tallyCmd.Flags().StringVar(&archivePath, "archive", "", "Write resolved assignments to a compressed archive")
	tallyCmd.Flags().IntVar(&archiveWindow, "archive-window", archive.DefaultWindow, "Assignments per archive chunk")
	tallyCmd.Flags().BoolVar(&colorOutput, "color", false, "Colorize console output")

	rootCmd.AddCommand(tallyCmd)
}
