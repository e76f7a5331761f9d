// Package main provides the entry point for the teaching computer simulator.
//
// For the full CLI, use: go run ./cmd/c6461sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("c6461sim - 16-bit teaching computer simulator")
	fmt.Println("")
	fmt.Println("Usage: c6461sim [options] <program.txt>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config     Path to simulator configuration JSON file")
	fmt.Println("  -pc         Start address in octal")
	fmt.Println("  -max-instr  Max instructions to execute")
	fmt.Println("  -no-cache   Disable the operand cache")
	fmt.Println("  -cache      Print the cache lines after the run")
	fmt.Println("  -v          Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/c6461sim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/c6461sim' instead.")
	}
}
