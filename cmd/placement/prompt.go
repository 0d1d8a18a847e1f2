package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// confirmPrompt asks a yes/no question and reports whether the answer was
// yes. Anything but "y" or "yes" declines, including end of input.
func confirmPrompt(in *bufio.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
