package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/funvibe/polex/internal/config"
	"github.com/funvibe/polex/internal/envfile"
	"github.com/funvibe/polex/pkg/polex"
)

var (
	// Version information (set by build flags)
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "polex",
	Short: "Policy-expression checker and evaluator",
	Long: `polex compiles and evaluates side-effect-free policy expressions
against typed variable declarations.

Expressions support logical operators with three-valued semantics,
comprehension macros (all, exists, exists_one, map, filter), message and
map construction, and partial evaluation with unknown-attribute tracking.`,
	Version: config.Version,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

var envFilePath string

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().StringVar(&envFilePath, "env", "", "environment file (YAML)")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}

// buildEnv assembles the environment from the --env file plus shared flags.
func buildEnv(extraOpts ...polex.EnvOption) *polex.Env {
	var opts []polex.EnvOption
	if envFilePath != "" {
		f, err := envfile.Load(envFilePath)
		if err != nil {
			exitWithError("%v", err)
		}
		opts = append(opts, polex.FromEnvFile(f))
	}
	opts = append(opts, polex.HeterogeneousComparisons(true))
	opts = append(opts, extraOpts...)
	env, err := polex.NewEnv(opts...)
	if err != nil {
		exitWithError("%v", err)
	}
	return env
}
