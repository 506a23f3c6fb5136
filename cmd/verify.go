package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/fleetledger/core/verification"
	"github.com/kilianp07/fleetledger/infra/fmcsa"
)

var (
	verifyMC  string
	verifyDOT string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Look up a carrier's operating authority",
	RunE:  runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifyMC, "mc", "", "MC docket number")
	verifyCmd.Flags().StringVar(&verifyDOT, "dot", "", "USDOT number")
	verifyCmd.MarkFlagsOneRequired("mc", "dot")
	verifyCmd.MarkFlagsMutuallyExclusive("mc", "dot")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Verification.APIKey == "" {
		return fmt.Errorf("verification.api_key is not configured")
	}
	req := verification.Request{Kind: verification.IdentifierMC, Value: verifyMC}
	if verifyDOT != "" {
		req = verification.Request{Kind: verification.IdentifierDOT, Value: verifyDOT}
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	res, err := fmcsa.New(cfg.Verification).Verify(ctx, req)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
