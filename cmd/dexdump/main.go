// Package main provides a command-line utility to dump the class,
// method and instruction tree of a dex file, for debugging the reader
// itself.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/godexlib/dex"
)

func main() {
	skipCode := flag.Bool("skip-code", false, "skip method bodies")
	skipDebug := flag.Bool("skip-debug", false, "skip debug info")
	verbose := flag.Bool("v", false, "log decoder diagnostics to stderr")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Println("Usage: dexdump [flags] <classes.dex>")
		fmt.Println("Flags:")
		flag.PrintDefaults()
		return
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		log.Fatalf("Failed to read file: %v", err)
	}

	r, err := dex.New(data)
	if err != nil {
		log.Fatalf("Failed to open dex image: %v", err)
	}
	if *verbose {
		r.SetLogger(log.New(os.Stderr, "dexdump: ", 0))
	}

	var flags dex.Flag
	if *skipCode {
		flags |= dex.SkipCode
	}
	if *skipDebug {
		flags |= dex.SkipDebug
	}

	if err := r.Pipe(&printVisitor{}, flags); err != nil {
		log.Fatalf("Failed to decode dex image: %v", err)
	}
}
