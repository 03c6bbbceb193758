package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/born-ml/nodegrad/internal/envconfig"
)

const version = "v0.1.0-dev"

// appendEnvDocs adds an environment variable section to the usage text.
func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-24s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

// NewCLI builds the root command.
func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "nodegrad",
		Short:         "Train small neural networks built from scalar graph nodes",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: envconfig.LogLevel(),
			})))
		},
		Run: func(cmd *cobra.Command, args []string) {
			if v, _ := cmd.Flags().GetBool("version"); v {
				versionHandler(cmd, args)
				return
			}

			cmd.Print(cmd.UsageString())
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run:   versionHandler,
	}
	trainCmd := newTrainCmd()
	predictCmd := newPredictCmd()

	envVars := envconfig.AsMap()
	for _, cmd := range []*cobra.Command{trainCmd, predictCmd} {
		for _, sub := range cmd.Commands() {
			appendEnvDocs(sub, []envconfig.EnvVar{
				envVars["NODEGRAD_DEBUG"],
				envVars["NODEGRAD_SEED"],
				envVars["NODEGRAD_WORKERS"],
			})
		}
	}

	rootCmd.AddCommand(
		trainCmd,
		predictCmd,
		versionCmd,
	)

	return rootCmd
}

func versionHandler(cmd *cobra.Command, _ []string) {
	fmt.Fprintf(cmd.OutOrStdout(), "nodegrad version is %s\n", version)
}
