// Package cmd provides the root command and CLI setup for stackmut.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"gooze.dev/pkg/stackmut/internal/adapter"
	"gooze.dev/pkg/stackmut/internal/controller"
	"gooze.dev/pkg/stackmut/internal/domain"
	m "gooze.dev/pkg/stackmut/internal/model"
)

var listingAdapter adapter.ListingAdapter
var fsAdapter adapter.SourceFSAdapter
var reportStore adapter.ReportStore
var testAdapter adapter.TestRunnerAdapter
var orchestrator domain.Orchestrator
var mutagen domain.Mutagen
var catalog *domain.Catalog
var workflow domain.Workflow
var ui controller.UI

// reportsOutputDirFlag is a root-level flag shared by commands that read/write reports.
var reportsOutputDirFlag string

// noCacheFlag disables incremental caching when set.
var noCacheFlag bool

// verboseFlag switches the log file to debug level.
var verboseFlag bool

// excludePatterns is a root-level flag that filters files for applicable commands.
var excludePatterns []string

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	listingAdapter = adapter.NewYAMLListingAdapter()
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	reportStore = adapter.NewReportStore()
	// The per-mutant deadline comes from the workflow context.
	testAdapter = adapter.NewLocalTestRunnerAdapter(0)
	orchestrator = domain.NewOrchestrator(fsAdapter, listingAdapter, testAdapter)
	mutagen = domain.NewMutagen(listingAdapter)
	catalog = domain.MustBuildCatalog()
	workflow = domain.NewWorkflow(
		fsAdapter,
		reportStore,
		ui,
		orchestrator,
		mutagen,
		catalog,
	)
}

const pathPatternsHelp = `Listings are *.listing.yaml files. Supports Go-style path patterns:
  - ./...          recursively scan current directory
  - ./classes/...  recursively scan the classes directory
  - ./a ./b        scan multiple directories (not recursive)
  - Calc.listing.yaml  a single listing`

const rootLongDescription = `stackmut is a mutation testing tool for stack-based instruction listings.
It applies small, stack-balanced changes (mutants) to method bodies and runs
your test harness against each one to check that the tests notice.

` + pathPatternsHelp

const runLongDescription = `Run mutation testing for the given paths (default: ./...).

Each mutant is written to a temporary listing and the harness command is run
with STACKMUT_MUTANT pointing at it. A failing harness kills the mutant.

` + pathPatternsHelp

const listLongDescription = `List listings and the number of mutants the selected mutators produce.

` + pathPatternsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stackmut",
		Short: "Mutation testing for stack-based instruction listings",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

// newRootCmd builds a root command with its persistent flags, without any
// subcommand attached.
func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for mutation testing reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().BoolVar(&noCacheFlag, noCacheFlagName, viper.GetBool(noCacheFlagName), "disable cached incremental runs (re-test everything)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(noCacheFlagName), noCacheFlagName)

	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude listings matching regex (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// configureMutationFlags adds the operator selection flags shared by list, run
// and mutate. They are bound to config in bindMutationFlags, when the command
// runs, since several commands share the keys.
func configureMutationFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceP(mutatorsFlagName, "m", nil, "mutator or group names (default DEFAULTS, see 'stackmut mutators')")
	cmd.Flags().Int64(seedFlagName, defaultSeed, "seed for operators that pick replacements at random")
}

func bindMutationFlags(cmd *cobra.Command) {
	bindFlagToConfig(cmd.Flags().Lookup(mutatorsFlagName), mutatorsConfigKey)
	bindFlagToConfig(cmd.Flags().Lookup(seedFlagName), runSeedKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
