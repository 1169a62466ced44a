package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"apicheck/internal/breaking"
	"apicheck/internal/testutil"
)

func sampleCompare() *CompareResponseCLI {
	return &CompareResponseCLI{CompareResult: breaking.CompareResult{
		Before: "old",
		After:  "new",
		Changes: []breaking.APIChange{
			{Kind: breaking.ChangeAdded, Severity: breaking.SeverityNonBreaking, SymbolKind: breaking.SymbolMethod,
				SymbolName: "p.A#bar()V", Class: "p/A", Member: "bar()V"},
			{Kind: breaking.ChangeRemoved, Severity: breaking.SeverityBreaking, SymbolKind: breaking.SymbolMethod,
				SymbolName: "p.A#foo()V", Class: "p/A", Member: "foo()V"},
			{Kind: breaking.ChangeRemoved, Severity: breaking.SeverityWarning, SymbolKind: breaking.SymbolSupertype,
				SymbolName: "p.A#p.I", Class: "p/A", Member: "p/I", Accepted: true},
			{Kind: breaking.ChangeSuperclassChanged, Severity: breaking.SeverityBreaking, SymbolKind: breaking.SymbolSuperclass,
				SymbolName: "p.A", Class: "p/A", OldValue: "p.Base"},
			{Kind: breaking.ChangeRemoved, Severity: breaking.SeverityBreaking, SymbolKind: breaking.SymbolClass,
				SymbolName: "p.Gone", Class: "p/Gone"},
			{Kind: breaking.ChangeAdded, Severity: breaking.SeverityNonBreaking, SymbolKind: breaking.SymbolInterface,
				SymbolName: "p.New", Class: "p/New"},
			{Kind: breaking.ChangeAdded, Severity: breaking.SeverityNonBreaking, SymbolKind: breaking.SymbolField,
				SymbolName: "p.B#xI", Class: "p/B", Member: "xI"},
		},
		Summary:      &breaking.Summary{BreakingChanges: 3, Warnings: 1, Additions: 3},
		SemverAdvice: "major",
	}}
}

func TestFormatCompareHuman_Golden(t *testing.T) {
	styles = newReportStyles(io.Discard, false)

	got := formatCompareHuman(sampleCompare())

	testutil.CompareGolden(t, filepath.Join("testdata", "compare_human.golden"), got)
	if strings.Contains(got, "\x1b[") {
		t.Error("plain styles must not emit escape sequences")
	}
}

func TestFormatCompareHuman_NoChanges(t *testing.T) {
	styles = newReportStyles(io.Discard, false)

	got := formatCompareHuman(&CompareResponseCLI{CompareResult: breaking.CompareResult{
		Before:       "a",
		After:        "b",
		Summary:      &breaking.Summary{},
		SemverAdvice: "patch",
	}})

	if !strings.Contains(got, "No API changes detected.") {
		t.Errorf("expected no-changes line, got:\n%s", got)
	}
}

func TestFormatCompareHuman_Colored(t *testing.T) {
	var buf bytes.Buffer
	styles = newReportStyles(&buf, true)
	defer func() { styles = newReportStyles(io.Discard, false) }()

	got := formatCompareHuman(sampleCompare())

	if !strings.Contains(got, "\x1b[") {
		t.Errorf("expected ANSI colors in output:\n%q", got)
	}
	if strings.Contains(got, "[accepted]") {
		t.Error("colored output marks accepted changes by color only")
	}
}

func TestUseColor(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if !useColor("always", f) {
		t.Error("always should force color")
	}
	if useColor("never", f) {
		t.Error("never should disable color")
	}
	if useColor("auto", f) {
		t.Error("a regular file is not a terminal")
	}
}

func TestUseColor_CommandWriter(t *testing.T) {
	var buf bytes.Buffer

	if useColor("auto", &buf) {
		t.Error("a redirected command writer is not a terminal")
	}
	if !useColor("always", &buf) {
		t.Error("always should force color for any writer")
	}
}

func TestCLI_CompareAutoColorFollowsCommandWriter(t *testing.T) {
	before := testutil.NewDistro(t, testutil.Class("p/A", object, "foo()V"))
	after := testutil.NewDistro(t, testutil.Class("p/A", object))
	t.Setenv("NO_COLOR", "")
	t.Cleanup(func() { compareNoBaseline = false })

	out, err := execute(t, "-q", "-C", t.TempDir(), "compare", before, after,
		"--color=auto", "--format=human", "--export-db=", "--no-baseline", "--write-baseline=false")
	if err == nil {
		t.Fatal("expected breaking changes")
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("output to a buffer must not be colored:\n%q", out)
	}
	if !strings.Contains(out, "  * method removed: foo()V\n") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
