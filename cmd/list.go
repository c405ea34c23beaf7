package cmd

import (
	"fmt"

	"github.com/KaramelBytes/showlens/internal/insights"
	"github.com/spf13/cobra"
)

var listNamesOnly bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available analyses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if listNamesOnly {
			for _, n := range insights.Names() {
				fmt.Fprintln(out, n)
			}
			return nil
		}
		group := ""
		for _, a := range insights.Analyses() {
			if a.Group != group {
				if group != "" {
					fmt.Fprintln(out)
				}
				group = a.Group
				fmt.Fprintf(out, "[%s]\n", group)
			}
			fmt.Fprintf(out, "- %s: %s\n", a.Name, a.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listNamesOnly, "names", false, "print names only, sorted")
}
