package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gooze.dev/pkg/stackmut/internal/domain"
	m "gooze.dev/pkg/stackmut/internal/model"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [paths...]",
		Short: "List listings and mutant counts",
		Long:  listLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			bindMutationFlags(cmd)

			paths := parsePaths(args)
			useCache := !viper.GetBool(noCacheFlagName)
			reportsPath := m.Path(viper.GetString(outputFlagName))

			return workflow.Estimate(cmd.Context(), domain.EstimateArgs{
				Paths:    paths,
				Exclude:  viper.GetStringSlice(excludeConfigKey),
				UseCache: useCache,
				Reports:  reportsPath,
				Mutators: mutators(),
				Seed:     viper.GetInt64(runSeedKey),
			})
		},
	}

	configureMutationFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}
