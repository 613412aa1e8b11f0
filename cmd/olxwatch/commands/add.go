package commands

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(addCmd)
}

var addCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Start tracking a listing and record its current price.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := svc.Add(cmd.Context(), args[0])
		if err != nil {
			fail(err)
		}
	},
}
