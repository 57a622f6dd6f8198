package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/xyproto/env/v2"

	"tinycc/compiler/internal"
)

var (
	output     = flag.String("o", "", "the output file, by default the input with a .ll extension, stdout for stdin")
	triple     = flag.String("mtriple", env.Str("TINYCC_TRIPLE"), "the target triple stamped on the module")
	_          = flag.Bool("emit-llvm", true, "emit textual LLVM IR, the only output format")
	dumpTokens = flag.Bool("dump-tokens", false, "print the tokens and stop")
	astPrint   = flag.Bool("ast-print", false, "print the ast as source and stop")
	astDump    = flag.Bool("ast-dump", false, "dump the ast structure and stop")
	wShadow    = flag.Bool("Wshadow", env.Bool("TINYCC_WSHADOW"), "warn when a declaration shadows an outer variable")
	noColor    = flag.Bool("no-color", env.Bool("TINYCC_NO_COLOR"), "never color diagnostics")
	verbose    = flag.Bool("v", env.Bool("TINYCC_VERBOSE"), "log compiler phases to stderr")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [input.c | -]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	err := run(flag.Arg(0))
	if err != nil {
		// Diagnostics are already on stderr.
		if _, isDiag := err.(*internal.Diagnostic); !isDiag {
			fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		}
		os.Exit(1)
	}
}

func run(path string) error {
	if path == "" {
		path = "-"
	}
	src, err := internal.ReadSource(path)
	if err != nil {
		return err
	}
	opts := internal.Options{
		DiagOutput:   os.Stderr,
		WarnShadow:   *wShadow,
		TargetTriple: *triple,
		NoColor:      *noColor,
	}
	if *verbose {
		opts.Logger = log.New(os.Stderr, "", log.Ltime)
	}
	switch {
	case *dumpTokens:
		tokens, err := internal.Tokenize(src, opts)
		for _, token := range tokens {
			fmt.Println(token.Dump())
		}
		return err
	case *astPrint || *astDump:
		prog, err := internal.Parse(src, opts)
		if err != nil {
			return err
		}
		if *astDump {
			fmt.Println(internal.DumpProgram(prog))
			return nil
		}
		return internal.PrintProgram(os.Stdout, prog)
	}
	m, err := internal.Compile(src, opts)
	if err != nil {
		return err
	}
	w, closeOutput, err := openOutput(path)
	if err != nil {
		return err
	}
	err = internal.EmitLLVM(w, m)
	if closeErr := closeOutput(); err == nil {
		err = closeErr
	}
	return err
}

func openOutput(input string) (io.Writer, func() error, error) {
	path := *output
	if path == "" && input != "-" {
		path = strings.TrimSuffix(input, filepath.Ext(input)) + ".ll"
	}
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
