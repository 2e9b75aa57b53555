package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/plan-eval/plan-eval/eval"
)

var (
	inspectBaselinePath string // Baseline unit CSV to summarize
	inspectStrict       bool   // Duplicate baseline identities become fatal
	inspectMaxDistrict  int    // Highest accepted district index (0 = unbounded)
)

// inspectCmd summarizes a baseline file: unit and county counts, the
// baseline's own district totals, and which districts the baseline wins.
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Summarize a baseline file without streaming plans",
	Run: func(cmd *cobra.Command, args []string) {
		reg, err := eval.LoadBaselineFile(inspectBaselinePath, inspectStrict)
		if err != nil {
			logrus.Fatalf("Baseline load failed: %v", err)
		}
		cfg := eval.DefaultConfig()
		cfg.MaxDistrict = inspectMaxDistrict
		totals, err := eval.Tabulate(reg, cfg)
		if err != nil {
			logrus.Fatalf("Baseline tabulation failed: %v", err)
		}

		fmt.Printf("units: %d\n", reg.Len())
		fmt.Printf("counties: %d\n", reg.Counties())
		fmt.Printf("max assignment: %d\n", reg.MaxAssignment())
		for k := 0; k < totals.Districts(); k++ {
			marker := ""
			if totals.Election1[k] > totals.Election2[k] {
				marker = " won"
			}
			fmt.Printf("district %d: election_1=%d election_2=%d%s\n",
				k, totals.Election1[k], totals.Election2[k], marker)
		}
		fmt.Printf("baseline wins: %d\n", eval.CountWins(totals))
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspectBaselinePath, "baseline", "", "Path to baseline unit CSV")
	inspectCmd.Flags().BoolVar(&inspectStrict, "strict-baseline", false, "Treat duplicate baseline identities as fatal")
	inspectCmd.Flags().IntVar(&inspectMaxDistrict, "max-district", 0, "Highest accepted district index (0 = unbounded)")
	_ = inspectCmd.MarkFlagRequired("baseline")

	rootCmd.AddCommand(inspectCmd)
}
