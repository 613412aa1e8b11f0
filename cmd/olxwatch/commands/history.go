package commands

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(graphCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history <url>",
	Short: "Print the recorded price history for a listing.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := svc.History(cmd.Context(), args[0])
		if err != nil {
			fail(err)
		}
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph <url>",
	Short: "Render the price history of a listing as a PNG chart.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := svc.Graph(cmd.Context(), args[0])
		if err != nil {
			fail(err)
		}
	},
}
