package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive expression evaluation",
	Run: func(cmd *cobra.Command, args []string) {
		env := buildEnv()
		interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		if interactive {
			fmt.Println("polex repl — enter expressions, :q to quit")
		}
		scanner := bufio.NewScanner(os.Stdin)
		for {
			if interactive {
				fmt.Print("> ")
			}
			if !scanner.Scan() {
				return
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == ":q" || line == ":quit" {
				return
			}
			compiled, issues := env.Compile(line)
			if issues != nil {
				fmt.Fprintln(os.Stderr, issues.String())
				continue
			}
			prg, err := env.Program(compiled)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			out, err := prg.Eval(nil)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			fmt.Println(out.Inspect())
		}
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
