package main

import (
	"errors"
	"fmt"
	"os"

	apierrors "apicheck/internal/errors"
)

// Exit codes: 1 means the comparison found unaccepted breaking changes,
// 2 means apicheck itself failed.
const (
	exitBreaking = 1
	exitError    = 2
)

// errBreakingChanges is returned by compare after the report is printed.
var errBreakingChanges = errors.New("breaking changes found")

func main() {
	err := rootCmd.Execute()
	closeLogFile()
	if err == nil {
		return
	}
	if errors.Is(err, errBreakingChanges) {
		os.Exit(exitBreaking)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var apiErr *apierrors.ApiError
	if errors.As(err, &apiErr) {
		for _, fix := range apiErr.SuggestedFixes {
			if fix.Command != "" {
				fmt.Fprintf(os.Stderr, "  hint: %s (%s)\n", fix.Description, fix.Command)
			} else {
				fmt.Fprintf(os.Stderr, "  hint: %s\n", fix.Description)
			}
		}
	}
	os.Exit(exitError)
}
