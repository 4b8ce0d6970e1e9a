package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/funvibe/polex/pkg/polex"
)

var parseCmd = &cobra.Command{
	Use:   "parse <expression>",
	Short: "Parse an expression and dump its AST",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		env := buildEnv()
		parsed, issues := env.Parse(args[0])
		if issues != nil {
			exitWithError("%s", issues.String())
		}
		out, err := polex.AstToYAML(parsed)
		if err != nil {
			exitWithError("%v", err)
		}
		fmt.Print(string(out))
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <expression>",
	Short: "Type-check an expression against the environment",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		env := buildEnv()
		compiled, issues := env.Compile(args[0])
		if issues != nil {
			exitWithError("%s", issues.String())
		}
		fmt.Println(compiled.ResultType())
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(checkCmd)
}
