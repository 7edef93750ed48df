package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"
	"golang.org/x/term"
)

var usage = `
SIC/XE Assembler

Usage: sicasm asm PROGRAM.asm

Writes PROGRAM.obj (H/T/M/E records) and PROGRAM.lst, named after the
program name on the START line.
`

var rootCmd = &cobra.Command{
	Use:           "sicasm",
	Short:         "SIC/XE two-pass assembler",
	Long:          usage,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// glog writes to files by default; a command line tool wants stderr.
	flag.Set("logtostderr", "true")
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
}

func main() {
	err := rootCmd.Execute()
	glog.Flush()
	if err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		os.Exit(1)
	}
}

// envBool reads a boolean setting, falling back to def when name is unset.
func envBool(name string, def bool) bool {
	if env.Str(name) == "" {
		return def
	}
	return env.Bool(name)
}

func useColor() bool {
	return envBool("SICASM_COLOR", term.IsTerminal(int(os.Stderr.Fd())))
}

func red(s string) string {
	if !useColor() {
		return s
	}
	return "\x1b[31m" + s + "\x1b[0m"
}
