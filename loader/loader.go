// Package loader reads octal load files produced by the assembler.
//
// Each non-blank line holds "<address> <word>" in unsigned octal. A ';', '#'
// or "//" starts a comment that runs to the end of the line. Underscores may
// be used inside numbers for readability.
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/c6461sim/emu"
)

// ErrMalformedLoadFile is wrapped by every LineError.
var ErrMalformedLoadFile = errors.New("malformed load file")

// LineError reports a problem on one line of a load file.
type LineError struct {
	Line int
	Msg  string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("Line %d: %s", e.Line, e.Msg)
}

// Unwrap lets callers match with errors.Is(err, ErrMalformedLoadFile).
func (e *LineError) Unwrap() error {
	return ErrMalformedLoadFile
}

// Depositor receives each word as it is parsed.
type Depositor interface {
	Deposit(addr, value uint16) error
}

// Program summarizes what a load wrote.
type Program struct {
	// Words is the number of words written.
	Words int
	// Lowest and Highest bound the addresses written. Both are 0 when
	// Words is 0.
	Lowest  uint16
	Highest uint16
}

// Load reads the load file at path into d.
func Load(path string, d Depositor) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open load file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return LoadReader(f, d)
}

// LoadReader reads a load file from r into d. Words are deposited as they
// are parsed; the first bad line stops the load and earlier words stay
// written.
func LoadReader(r io.Reader, d Depositor) (*Program, error) {
	prog := &Program{}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++

		fields := strings.Fields(stripComment(scanner.Text()))
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return prog, &LineError{Line: lineNo, Msg: "Expected: <addr> <word> (octal)"}
		}

		addr, err := parseOctal(fields[0], lineNo)
		if err != nil {
			return prog, err
		}
		word, err := parseOctal(fields[1], lineNo)
		if err != nil {
			return prog, err
		}
		if addr >= emu.MemorySize {
			return prog, &LineError{
				Line: lineNo,
				Msg:  fmt.Sprintf("Address out of range: %s (octal)", fields[0]),
			}
		}

		if err := d.Deposit(uint16(addr), uint16(word)); err != nil {
			return prog, fmt.Errorf("line %d: %w", lineNo, err)
		}
		prog.record(uint16(addr))
	}
	if err := scanner.Err(); err != nil {
		return prog, fmt.Errorf("failed to read load file: %w", err)
	}

	return prog, nil
}

func (p *Program) record(addr uint16) {
	if p.Words == 0 || addr < p.Lowest {
		p.Lowest = addr
	}
	if p.Words == 0 || addr > p.Highest {
		p.Highest = addr
	}
	p.Words++
}

func stripComment(s string) string {
	cut := len(s)
	for _, marker := range []string{";", "#", "//"} {
		if i := strings.Index(s, marker); i >= 0 && i < cut {
			cut = i
		}
	}
	return s[:cut]
}

func parseOctal(tok string, lineNo int) (uint64, error) {
	v, err := strconv.ParseUint(strings.ReplaceAll(tok, "_", ""), 8, 32)
	if err != nil {
		return 0, &LineError{Line: lineNo, Msg: "Invalid octal number: " + tok}
	}
	return v, nil
}
