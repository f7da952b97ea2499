package cli

import (
	"fmt"
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"stdinspector/internal/config"
	"stdinspector/internal/flags"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var cfg = config.New()

var rootCmd = &cobra.Command{
	Use:   "stdinspector",
	Short: "Inspect Python repositories against engineering standards",
	Long: `stdinspector checks a Python repository against a fixed set of standards
(Python version floor, project manifest, Makefile, no conda, lock file) and
reports which ones it meets.

stdinspector is read-only: it lists and reads files, never modifies the
repository and writes nothing to disk.

Examples:
	# Inspect a GitLab project
	stdinspector check --source gitlab --project-id group/app

	# Inspect a local checkout
	stdinspector check --source local --directory .

	# List standards
	stdinspector standards list

	# Print build info
	stdinspector version`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(cmd, cfg.Runtime.Verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&cfg.Runtime.Verbose, flags.FlagVerbose, false, "Enable debug logging (prints every API call and cache statistics)")
}

func setupLogging(cmd *cobra.Command, verbose bool) {
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetFormatter(&logger.TextFormatter{DisableTimestamp: !verbose, FullTimestamp: true})
	if verbose {
		logger.SetLevel(logger.DebugLevel)
		return
	}
	logger.SetLevel(logger.InfoLevel)
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
