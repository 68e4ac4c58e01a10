package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"contracthierarchy/internal/config"
	"contracthierarchy/internal/model"
	"contracthierarchy/internal/parser"
)

func TestDefaultOutputPath(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"contracts.xlsx":    "contracts_hierarchy.xlsx",
		"dir/contracts.csv": "dir/contracts_hierarchy.xlsx",
		"no_extension":      "no_extension_hierarchy.xlsx",
		"archive.v2.xlsm":   "archive.v2_hierarchy.xlsx",
	}
	for in, want := range cases {
		if got := defaultOutputPath(in); got != want {
			t.Fatalf("defaultOutputPath(%q)=%q want %q", in, got, want)
		}
	}
}

func TestPrintSchemaHint(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("parse: %w", &parser.SchemaError{
		SheetName:   "Contracts",
		Missing:     []parser.Field{parser.FieldSupplier},
		Suggestions: map[parser.Field][]string{parser.FieldSupplier: {"Suplier"}},
	})

	var buf bytes.Buffer
	printSchemaHint(&buf, err)
	out := buf.String()
	if !strings.Contains(out, "Supplier Legal Entity") || !strings.Contains(out, "Suplier") {
		t.Fatalf("unexpected output: %s", out)
	}

	buf.Reset()
	printSchemaHint(&buf, fmt.Errorf("other"))
	if buf.Len() != 0 {
		t.Fatalf("expected no output for non-schema error, got %q", buf.String())
	}
}

func TestPrintSummary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printSummary(&buf, &model.RunReport{
		OutputPath:   "out.xlsx",
		SheetName:    "Sheet1",
		TotalRecords: 3,
		TotalGroups:  1,
		LabelCounts: map[model.HierarchyLabel]int{
			model.LabelParent:      1,
			model.LabelChildParent: 1,
			model.LabelSubChild:    1,
		},
		Ambiguities: []model.AmbiguityDetail{{ContractID: "CW9"}},
		Warnings:    []string{"row 4: bad date"},
	})
	out := buf.String()
	for _, want := range []string{"out.xlsx", "Sub Child", "歧义引用: 1", "row 4: bad date"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestRunClassify_RejectsOutputOverInput(t *testing.T) {
	input := filepath.Join(t.TempDir(), "contracts.csv")
	body := "Original Name,ID,Contract Type,Supplier Legal Entity,Supplier Parent Child agreement links\nAcme MSA,CW1,MSA,Acme,\n"
	if err := os.WriteFile(input, []byte(body), 0644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	cfg = config.DefaultConfig()
	logger = zap.NewNop()
	classifyOutput = input
	t.Cleanup(func() { classifyOutput = "" })

	if err := runClassify(classifyCmd, []string{input}); err == nil {
		t.Fatalf("expected error when output overwrites input")
	}
	got, err := os.ReadFile(input)
	if err != nil || string(got) != body {
		t.Fatalf("input must be untouched, got %q err=%v", got, err)
	}
}
