package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay <fixture>",
	Short: "Replay a fixture and print the assigned ids and rejections",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	svc, res, err := replayFixture(args[0])
	if err != nil {
		return err
	}
	defer svc.Close()
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
