package config

import (
	"bytes"
	"testing"
)

func TestWriteFatalPrefixesAndTrims(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	writeFatal(&buf, "open %s: %v\n", "camps.db", "database is locked")
	if got, want := buf.String(), "camptrack: open camps.db: database is locked\n"; got != want {
		t.Fatalf("fatal message = %q, want %q", got, want)
	}
}

func TestExitfExitsWithCodeOne(t *testing.T) {
	code := -1
	orig := osExit
	osExit = func(c int) { code = c }
	t.Cleanup(func() { osExit = orig })

	Exitf("parse config: %v", "bad value")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
}
