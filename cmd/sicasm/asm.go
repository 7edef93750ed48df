package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"

	"github.com/taeber/sicasm"
)

var (
	outDir      string
	withListing bool
	dumpSymbols bool
)

var asmCmd = &cobra.Command{
	Use:   "asm sourceFile",
	Short: "Assemble a SIC/XE source file",
	Long: `Asm assembles one SIC/XE source file into an object file of H, T, M
and E records. A listing with locations and machine code is written next to
it unless --listing=false. Nothing is written when assembly fails.

Defaults can be set with SICASM_OUTDIR and SICASM_LISTING.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return assembleFile(args[0])
	},
}

func init() {
	asmCmd.Flags().StringVarP(&outDir, "out", "o", env.Str("SICASM_OUTDIR", "."), "directory for the object and listing files")
	asmCmd.Flags().BoolVarP(&withListing, "listing", "l", envBool("SICASM_LISTING", true), "write a listing file")
	asmCmd.Flags().BoolVar(&dumpSymbols, "dump-symbols", false, "dump the symbol table to stderr")
	rootCmd.AddCommand(asmCmd)
}

func assembleFile(path string) error {
	prog, err := assemblePath(path)
	if err != nil {
		return err
	}

	if dumpSymbols {
		pp.Fprintln(os.Stderr, prog.Symbols)
	}

	objPath := filepath.Join(outDir, prog.Name+".obj")
	if err = writeFile(objPath, prog.WriteObject); err != nil {
		return err
	}
	glog.V(1).Infof("Wrote %s", objPath)

	if !withListing {
		return nil
	}

	lstPath := filepath.Join(outDir, prog.Name+".lst")
	if err = writeFile(lstPath, prog.WriteListing); err != nil {
		return err
	}
	glog.V(1).Infof("Wrote %s", lstPath)
	return nil
}

func assemblePath(path string) (*sicasm.Program, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	prog, err := sicasm.Assemble(fp)
	if err != nil {
		return nil, fmt.Errorf("error assembling %s: %w", path, err)
	}
	return prog, nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	fp, err := os.Create(path)
	if err != nil {
		return
	}
	defer func() {
		if cerr := fp.Close(); err == nil {
			err = cerr
		}
	}()
	return write(fp)
}
