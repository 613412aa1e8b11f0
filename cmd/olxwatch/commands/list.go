package commands

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every tracked product.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		products, err := svc.List(cmd.Context())
		if err != nil {
			fail(err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"ID", "Title", "Active", "URL"})
		for _, p := range products {
			t.AppendRow(table.Row{p.ID, p.Title, p.Active, p.Url})
		}
		t.Render()
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search tracked products by title similarity.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		matches, err := svc.Search(cmd.Context(), args[0])
		if err != nil {
			fail(err)
		}
		if len(matches) > 10 {
			matches = matches[:10]
		}

		t := newTable()
		t.AppendHeader(table.Row{"ID", "Title", "Similarity"})
		for _, m := range matches {
			t.AppendRow(table.Row{
				m.Product.ID,
				m.Product.Title,
				fmt.Sprintf("%.2f", m.Similarity),
			})
		}
		t.Render()
	},
}
