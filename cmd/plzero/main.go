// Command plzero compiles and runs a PL/0 source file: lex, generate
// code, execute, writing the source echo, lexeme table, generated-code
// listing and execution trace to a single output file.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/plzero-lang/plzero/codegen"
	"github.com/plzero-lang/plzero/config"
	"github.com/plzero-lang/plzero/internal/tui"
	"github.com/plzero-lang/plzero/lexer"
	"github.com/plzero-lang/plzero/vm"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		inputPath   = flag.String("i", "inputFile.txt", "input source file")
		outputPath  = flag.String("o", "", "output listing/trace file (default from config, outputFile.txt)")
		configPath  = flag.String("config", "", "path to a plzero.toml overriding the default capacities")
		echoLexer   = flag.Bool("l", false, "echo the lexeme table to stdout")
		echoCode    = flag.Bool("a", false, "echo the generated-code listing to stdout")
		echoTrace   = flag.Bool("v", false, "echo the execution trace to stdout")
		dumpSymbols = flag.Bool("dump-symbols", false, "print the const/var symbol table to stdout")
		tuiMode     = flag.Bool("tui", false, "open an interactive pager over the listing instead of just writing it")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "plzero: %v\n", err)
		return 1
	}

	outFile := *outputPath
	if outFile == "" {
		outFile = cfg.Output.FileName
	}

	source, err := os.ReadFile(*inputPath) // #nosec G304 -- user-supplied source path
	if err != nil {
		fmt.Fprintf(os.Stderr, "plzero: %v\n", err)
		return 1
	}

	lres := lexer.LexWithLimits(string(source), cfg.Lexer.MaxIdentifierLength, cfg.Lexer.MaxNumberLength)

	var listing strings.Builder
	listing.WriteString(lres.Listing())

	if lres.Errors.HasErrors() {
		listing.WriteString("\n")
		listing.WriteString(lres.Errors.Error())
		if err := os.WriteFile(outFile, []byte(listing.String()), 0600); err != nil {
			fmt.Fprintf(os.Stderr, "plzero: %v\n", err)
			return 1
		}
		if *echoLexer {
			fmt.Print(listing.String())
		}
		return 1
	}

	gres := codegen.GenerateWithLimits(lres.Lexemes, cfg.Codegen.MaxCodeLength, cfg.Codegen.MaxNameTable, cfg.Codegen.StartAddress)

	listing.WriteString("\n")
	listing.WriteString(gres.Listing())

	if gres.Errors.HasErrors() {
		listing.WriteString("\n")
		listing.WriteString(gres.Errors.Error())
	} else {
		listing.WriteString("\n\nNo errors, program is syntactically correct.\n")
	}

	if *dumpSymbols {
		fmt.Print(gres.SymbolListing())
	}

	if gres.Errors.HasErrors() {
		if err := os.WriteFile(outFile, []byte(listing.String()), 0600); err != nil {
			fmt.Fprintf(os.Stderr, "plzero: %v\n", err)
			return 1
		}
		if *echoLexer || *echoCode {
			fmt.Print(listing.String())
		}
		return 1
	}

	machine := vm.NewWithCapacity(gres.Code, os.Stdout, cfg.VM.MaxStackHeight, cfg.VM.RegisterCount)

	var trace strings.Builder
	machine.Run(&trace, os.Stdin)
	listing.WriteString("\n")
	listing.WriteString(trace.String())

	if err := os.WriteFile(outFile, []byte(listing.String()), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "plzero: %v\n", err)
		return 1
	}

	if *tuiMode {
		if err := tui.Show(lres.Listing(), gres.Listing(), trace.String()); err != nil {
			fmt.Fprintf(os.Stderr, "plzero: tui: %v\n", err)
			return 1
		}
		return 0
	}

	if *echoLexer {
		fmt.Print(lres.Listing())
	}
	if *echoCode {
		fmt.Print(gres.Listing())
	} else {
		fmt.Print("No errors, program is syntactically correct.\n")
	}
	if *echoTrace {
		fmt.Print(trace.String())
	}

	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}
