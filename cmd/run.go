package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gooze.dev/pkg/stackmut/internal/domain"
	m "gooze.dev/pkg/stackmut/internal/model"
)

var runParallelFlag int
var runShardFlag string
var runMutationTimeoutFlag int64
var runCommandFlag string
var runWorkDirFlag string

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Run mutation testing",
		Long:  runLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			bindMutationFlags(cmd)

			shardIndex, totalShards := parseShardFlag(runShardFlag)
			paths := parsePaths(args)
			useCache := !viper.GetBool(noCacheFlagName)
			reportsPath := m.Path(viper.GetString(outputFlagName))
			threads := viper.GetInt(runParallelConfigKey)

			return workflow.Test(cmd.Context(), domain.TestArgs{
				EstimateArgs: domain.EstimateArgs{
					Paths:    paths,
					Exclude:  viper.GetStringSlice(excludeConfigKey),
					UseCache: useCache,
					Reports:  reportsPath,
					Mutators: mutators(),
					Seed:     viper.GetInt64(runSeedKey),
				},
				Reports:         reportsPath,
				Threads:         threads,
				ShardIndex:      shardIndex,
				TotalShardCount: totalShards,
				MutationTimeout: mutationTimeout(),
				Harness: domain.Harness{
					Command: viper.GetStringSlice(runCommandKey),
					WorkDir: viper.GetString(runWorkDirKey),
				},
			})
		},
	}

	configureRunFlags(cmd)
	configureMutationFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&runParallelFlag, runParallelFlagName, "p", viper.GetInt(runParallelConfigKey), "number of parallel workers for mutation testing")
	bindFlagToConfig(cmd.Flags().Lookup(runParallelFlagName), runParallelConfigKey)

	cmd.Flags().StringVarP(&runShardFlag, "shard", "s", "", "shard index and total shard count in the format INDEX/TOTAL (e.g., 0/3)")

	cmd.Flags().Int64Var(&runMutationTimeoutFlag, mutationTimeoutFlagName, int64(defaultMutationTimeout.Seconds()), "seconds a single mutant may run before it counts as timed out (0 disables)")
	bindFlagToConfig(cmd.Flags().Lookup(mutationTimeoutFlagName), mutationTimeoutKey)

	cmd.Flags().StringVarP(&runCommandFlag, commandFlagName, "c", "", "harness command, split on whitespace (e.g. \"sh ./test.sh\")")
	bindFlagToConfig(cmd.Flags().Lookup(commandFlagName), runCommandKey)

	cmd.Flags().StringVar(&runWorkDirFlag, workDirFlagName, "", "directory the harness runs in (default: current directory)")
	bindFlagToConfig(cmd.Flags().Lookup(workDirFlagName), runWorkDirKey)
}

func parseShardFlag(shard string) (int, int) {
	if shard == "" {
		return 0, 1
	}

	var index, total int

	_, err := fmt.Sscanf(shard, "%d/%d", &index, &total)
	if err != nil || total <= 0 || index < 0 || index >= total {
		return 0, 1
	}

	return index, total
}
