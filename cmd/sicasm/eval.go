package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/taeber/sicasm"
)

var evalProgram string

var evalCmd = &cobra.Command{
	Use:   "eval [expression...]",
	Short: "Evaluate assembler expressions",
	Long: `Eval evaluates + - * / expressions over decimal numbers the way EQU,
ORG and BASE do. With --program, names from that program's symbol table
may be used too. Without arguments it starts an interactive prompt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var symbols sicasm.SymbolTable
		if evalProgram != "" {
			prog, err := assemblePath(evalProgram)
			if err != nil {
				return err
			}
			symbols = prog.Symbols
		}

		if len(args) == 0 {
			return prompt(symbols)
		}

		for _, expr := range args {
			v, err := evaluate(expr, symbols)
			if err != nil {
				return err
			}
			printValue(v)
		}
		return nil
	},
}

func init() {
	evalCmd.Flags().StringVarP(&evalProgram, "program", "p", "", "resolve names against this source file")
	rootCmd.AddCommand(evalCmd)
}

func evaluate(expr string, symbols sicasm.SymbolTable) (int32, error) {
	if symbols == nil {
		return sicasm.Evaluate(expr)
	}
	return sicasm.EvaluateSymbols(expr, symbols)
}

func printValue(v int32) {
	fmt.Printf("%d\t%06X\n", v, uint32(v)&0xFFFFFF)
}

func prompt(symbols sicasm.SymbolTable) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	for {
		input, err := line.Prompt("sicasm> ")
		if err == liner.ErrPromptAborted || err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		v, err := evaluate(input, symbols)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			continue
		}
		printValue(v)
	}
}
