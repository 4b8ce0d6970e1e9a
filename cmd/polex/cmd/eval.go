package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/funvibe/polex/internal/jsonvalue"
	"github.com/funvibe/polex/pkg/polex"
)

var (
	bindingsPath    string
	unknownPatterns []string
	iterationBudget int64
)

var evalCmd = &cobra.Command{
	Use:   "eval <expression>",
	Short: "Evaluate an expression with JSON bindings",
	Long: `Evaluate an expression. Variable bindings come from a JSON object
supplied with --bindings; attribute patterns passed with --unknown evaluate
as unknowns and are reported instead of a value.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		env := buildEnv()
		compiled, issues := env.Compile(args[0])
		if issues != nil {
			exitWithError("%s", issues.String())
		}
		prg, err := env.Program(compiled, polex.IterationBudget(iterationBudget))
		if err != nil {
			exitWithError("%v", err)
		}

		bindings := polex.Bindings{}
		if bindingsPath != "" {
			data, err := os.ReadFile(bindingsPath)
			if err != nil {
				exitWithError("%v", err)
			}
			bindings, err = jsonvalue.DecodeDocument(data)
			if err != nil {
				exitWithError("%v", err)
			}
		}

		var act polex.Activation
		if len(unknownPatterns) > 0 {
			patterns := make([]*polex.AttributePattern, 0, len(unknownPatterns))
			for _, p := range unknownPatterns {
				pattern, err := polex.ParseAttributePattern(p)
				if err != nil {
					exitWithError("%v", err)
				}
				patterns = append(patterns, pattern)
			}
			act, err = polex.PartialBindings(bindings, patterns...)
		} else {
			act, err = polex.NewActivation(bindings)
		}
		if err != nil {
			exitWithError("%v", err)
		}

		out, err := prg.Eval(act)
		if err != nil {
			exitWithError("%v", err)
		}
		if polex.IsUnknown(out) {
			fmt.Println("unknown:")
			for _, attr := range polex.UnknownAttributes(out) {
				fmt.Printf("  - %s\n", attr)
			}
			return
		}
		fmt.Println(out.Inspect())
	},
}

func init() {
	evalCmd.Flags().StringVar(&bindingsPath, "bindings", "", "JSON file with variable bindings")
	evalCmd.Flags().StringArrayVar(&unknownPatterns, "unknown", nil, "attribute pattern to treat as unknown (repeatable)")
	evalCmd.Flags().Int64Var(&iterationBudget, "budget", 0, "comprehension iteration budget (0 = unbounded)")
	rootCmd.AddCommand(evalCmd)
}
