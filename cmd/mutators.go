package cmd

import (
	"github.com/spf13/cobra"

	"gooze.dev/pkg/stackmut/internal/controller"
	"gooze.dev/pkg/stackmut/internal/domain"
)

// mutatorsCmd represents the mutators command.
var mutatorsCmd = newMutatorsCmd()

func newMutatorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mutators",
		Short: "List mutator and group names",
		Long:  "List every name accepted by --mutators together with the operators it selects.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := catalogEntries(catalog)
			if err != nil {
				return err
			}

			return ui.DisplayCatalog(cmd.Context(), entries)
		},
	}
}

func catalogEntries(catalog *domain.Catalog) ([]controller.CatalogEntry, error) {
	names := catalog.Names()
	entries := make([]controller.CatalogEntry, 0, len(names))

	for _, name := range names {
		ops, err := catalog.Resolve(name)
		if err != nil {
			return nil, err
		}

		ids := make([]string, 0, len(ops))
		for _, op := range ops {
			ids = append(ids, op.ID())
		}

		entries = append(entries, controller.CatalogEntry{Name: name, Operators: ids})
	}

	return entries, nil
}

func init() {
	rootCmd.AddCommand(mutatorsCmd)
}
