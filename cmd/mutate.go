package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gooze.dev/pkg/stackmut/internal/domain"
	m "gooze.dev/pkg/stackmut/internal/model"
)

var mutateDescriptorFlag string

// mutateCmd represents the mutate command.
var mutateCmd = newMutateCmd()

func newMutateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mutate <listing> <method> <ordinal>",
		Short: "Show a single mutant of a method",
		Long: `Apply the mutators to one method and show the candidate with the given
ordinal. Ordinals count candidates in stream order, starting at 0, and match
the ordinals reported by 'run' for the same mutators and seed.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			bindMutationFlags(cmd)

			ordinal, err := strconv.Atoi(args[2])
			if err != nil || ordinal < 0 {
				return fmt.Errorf("ordinal must be a non-negative integer, got %q", args[2])
			}

			_, err = workflow.Mutate(cmd.Context(), domain.MutateArgs{
				Listing:    m.Path(args[0]),
				Method:     args[1],
				Descriptor: mutateDescriptorFlag,
				Ordinal:    ordinal,
				Mutators:   mutators(),
				Seed:       viper.GetInt64(runSeedKey),
			})

			return err
		},
	}

	cmd.Flags().StringVarP(&mutateDescriptorFlag, "descriptor", "d", "", "method descriptor, needed when the name is overloaded (e.g. \"(II)I\")")
	configureMutationFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(mutateCmd)
}
