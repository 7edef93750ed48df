package main

import (
	"fmt"
	"os"

	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
)

var dumpTable bool

var symbolsCmd = &cobra.Command{
	Use:   "symbols sourceFile",
	Short: "Print the resolved symbol table of a source file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prog, err := assemblePath(args[0])
		if err != nil {
			return err
		}

		if dumpTable {
			pp.Println(prog.Symbols)
			return nil
		}

		for _, name := range prog.Symbols.Names() {
			v := prog.Symbols[name]
			fmt.Fprintf(os.Stdout, "%-8s %06X %d\n", name, uint32(v)&0xFFFFFF, v)
		}
		return nil
	},
}

func init() {
	symbolsCmd.Flags().BoolVar(&dumpTable, "dump", false, "dump the table as a Go value")
	rootCmd.AddCommand(symbolsCmd)
}
