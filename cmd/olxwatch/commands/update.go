package commands

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(updateAllCmd)
}

var updateCmd = &cobra.Command{
	Use:   "update <url>",
	Short: "Record the current price for an already tracked listing.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := svc.Update(cmd.Context(), args[0])
		if err != nil {
			fail(err)
		}
	},
}

var updateAllCmd = &cobra.Command{
	Use:   "update-all",
	Short: "Sweep every tracked listing and record price changes.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		err := svc.UpdateAll(cmd.Context())
		if err != nil {
			fail(err)
		}
	},
}
