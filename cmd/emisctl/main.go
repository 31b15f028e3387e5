package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/pacific-emis/emisctl/internal/cli"
	"github.com/pacific-emis/emisctl/pkg/emis"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(emis.ExitPanic)
		}
	}()

	if os.Getenv("EMIS_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(emis.ExitCodeForError(err))
	}
}
