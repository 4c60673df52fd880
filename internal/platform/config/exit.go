package config

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// osExit is swapped in tests.
var osExit = os.Exit

// Exitf reports a startup failure on stderr and exits with code 1.
func Exitf(format string, args ...any) {
	writeFatal(os.Stderr, format, args...)
	osExit(1)
}

func writeFatal(w io.Writer, format string, args ...any) {
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	fmt.Fprintln(w, "camptrack: "+msg)
}
