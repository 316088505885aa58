package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/renoma/pkg/lint"
)

// rulesCommand lists the rules a --rules filter selects.
func (c *CLI) rulesCommand() *cobra.Command {
	var patterns []string
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List available rules",
		Example: `  renoma rules
  renoma rules --rules '/unused/'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := lint.ParseFilter(patterns)
			if err != nil {
				return err
			}
			ids := filter.IDs()
			if len(ids) == 0 {
				printInfo(c.Out, "No rules match")
				return nil
			}
			width := 0
			for _, id := range ids {
				width = max(width, len(id))
			}
			for _, id := range ids {
				r, _ := lint.Lookup(id)
				printKeyValue(c.Out, id, r.Description, width+2)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&patterns, "rules", nil, "rule ids or /regex/ patterns")
	return cmd
}
