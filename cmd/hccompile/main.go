// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"hc/internal/compiler"
	"hc/internal/config"
	"hc/internal/hasm"
)

func main() {
	os.Exit(run())
}

func run() int {
	args := os.Args[1:]
	verify := false
	configPath := ""
	var fileArgs []string
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--verify":
			verify = true
		case args[i] == "--config" && i+1 < len(args):
			i++
			configPath = args[i]
		default:
			fileArgs = append(fileArgs, args[i])
		}
	}

	filename := "<stdin>"
	var source []byte
	var err error

	if len(fileArgs) > 0 {
		filename = fileArgs[0]
		source, err = os.ReadFile(filename)
	} else {
		source, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		color.Red("hccompile: %s", err)
		return 2
	}

	cfg := config.Default()
	if configPath != "" {
		cfg, err = config.Load(configPath)
		if err != nil {
			color.Red("hccompile: %s", err)
			return 2
		}
	}

	asm, err := compiler.CompileWithConfig(filename, string(source), cfg)
	if err != nil {
		// Only source/semantic errors (a *compiler.SourceError) get exit 1;
		// an internal compiler error is not the user's program being wrong,
		// so it is reported like the I/O and config failures above instead
		// of being mistaken for one.
		if se, ok := err.(*compiler.SourceError); ok {
			fmt.Fprintln(os.Stderr, se.Error())
			return 1
		}
		color.Red("hccompile: %s", err)
		return 2
	}

	if verify {
		if verr := hasm.VerifyRoundTrip(asm); verr != nil {
			color.Red("hccompile: --verify failed: %s", verr)
			return 2
		}
	}

	fmt.Print(asm)
	return 0
}
