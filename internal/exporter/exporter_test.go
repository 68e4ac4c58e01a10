package exporter

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"contracthierarchy/internal/hierarchy"
	"contracthierarchy/internal/model"
)

func sampleResult() *hierarchy.Result {
	records := []*model.ContractRecord{
		{Index: 0, ID: "CW1", Name: "Acme MSA", ContractType: "MSA", Supplier: "Acme", WorkspaceID: "WS-1"},
		{Index: 1, ID: "CW2", Name: "Acme SOW-1", ContractType: "SOW", Supplier: "Acme", LinkText: "references Acme MSA", WorkspaceID: "WS-2"},
		{Index: 2, ID: "CW3", Name: "Acme SOW-1-CO1", ContractType: "Change Order", Supplier: "Acme", LinkText: "amends Acme SOW-1"},
		{Index: 3, ID: "CW4", Name: "Hooli Order Form", ContractType: "Order Form", Supplier: "Hooli"},
		{Index: 4, ID: "CW5", Name: "Hooli Order Form", ContractType: "Order Form", Supplier: "Hooli"},
		{Index: 5, ID: "CW6", Name: "Hooli Renewal", ContractType: "Renewal", Supplier: "Hooli", LinkText: "renews hooli order form"},
	}
	return hierarchy.NewEngine(hierarchy.DefaultOptions(), nil).Classify(records)
}

func openExport(t *testing.T, e *Exporter) *excelize.File {
	t.Helper()

	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := e.ExportFile(sampleResult(), path); err != nil {
		t.Fatalf("export: %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestExporter_HierarchySheet(t *testing.T) {
	t.Parallel()

	var stages []Stage
	e := NewExporter(ExportOptions{
		IncludeWorkspaceID: true,
		Progress:           func(ev ProgressEvent) { stages = append(stages, ev.Stage) },
	})
	f := openExport(t, e)

	if diff := cmp.Diff([]string{SheetHierarchy, SheetReferences, SheetAmbiguous}, f.GetSheetList()); diff != "" {
		t.Fatalf("sheets mismatch (-want +got):\n%s", diff)
	}

	rows, err := f.GetRows(SheetHierarchy)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	want := [][]string{
		{"FileName", "ContractID", "Parent_Child", "ContractType", "PartyName", "Workspace ID"},
		{"Acme MSA", "CW1", "Parent", "MSA", "Acme", "WS-1"},
		{"Acme SOW-1", "CW2", "Child/Parent", "SOW", "Acme", "WS-2"},
		{"Acme SOW-1-CO1", "CW3", "Sub Child", "Change Order", "Acme"},
		{"Hooli Order Form", "CW4", "Child", "Order Form", "Hooli"},
		{"Hooli Order Form", "CW5", "Child", "Order Form", "Hooli"},
		{"Hooli Renewal", "CW6", "Child", "Renewal", "Hooli"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("hierarchy rows mismatch (-want +got):\n%s", diff)
	}

	wantStages := []Stage{StageHierarchy, StageReferences, StageAmbiguous, StageDone}
	if diff := cmp.Diff(wantStages, stages); diff != "" {
		t.Fatalf("stages mismatch (-want +got):\n%s", diff)
	}
}

func TestExporter_ReferencesAndAmbiguous(t *testing.T) {
	t.Parallel()

	f := openExport(t, NewExporter(ExportOptions{}))

	refs, err := f.GetRows(SheetReferences)
	if err != nil {
		t.Fatalf("read references: %v", err)
	}
	wantRefs := [][]string{
		{"Supplier", "From ID", "From Name", "To ID", "To Name", "Token", "Match"},
		{"Acme", "CW2", "Acme SOW-1", "CW1", "Acme MSA", "acme msa", "word"},
		{"Acme", "CW3", "Acme SOW-1-CO1", "CW2", "Acme SOW-1", "acme sow-1", "word"},
	}
	if diff := cmp.Diff(wantRefs, refs); diff != "" {
		t.Fatalf("references mismatch (-want +got):\n%s", diff)
	}

	amb, err := f.GetRows(SheetAmbiguous)
	if err != nil {
		t.Fatalf("read ambiguous: %v", err)
	}
	if len(amb) != 2 || amb[1][1] != "CW6" || amb[1][4] != "CW4, CW5" {
		t.Fatalf("ambiguous rows=%v", amb)
	}

	hdr, err := f.GetRows(SheetHierarchy)
	if err != nil {
		t.Fatalf("read hierarchy: %v", err)
	}
	if len(hdr[0]) != 5 {
		t.Fatalf("optional columns written without input: %v", hdr[0])
	}
}

func TestExporter_NoAmbiguousSheetWhenClean(t *testing.T) {
	t.Parallel()

	records := []*model.ContractRecord{
		{Index: 0, ID: "CW1", Name: "Acme MSA", ContractType: "MSA", Supplier: "Acme"},
	}
	res := hierarchy.NewEngine(hierarchy.DefaultOptions(), nil).Classify(records)
	f, err := NewExporter(ExportOptions{}).Export(res)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })

	if diff := cmp.Diff([]string{SheetHierarchy, SheetReferences}, f.GetSheetList()); diff != "" {
		t.Fatalf("sheets mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeReport(t *testing.T) {
	t.Parallel()

	report := &model.RunReport{
		RunID:        "run-1",
		Filename:     "contracts.xlsx",
		SortKey:      "file",
		TotalRecords: 3,
		TotalGroups:  1,
		LabelCounts:  map[model.HierarchyLabel]int{model.LabelParent: 1, model.LabelChildParent: 1, model.LabelSubChild: 1},
		Edges:        2,
	}

	var yb bytes.Buffer
	if err := EncodeReport(&yb, ReportYAML, report); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	var back model.RunReport
	if err := yaml.Unmarshal(yb.Bytes(), &back); err != nil {
		t.Fatalf("yaml decode: %v", err)
	}
	if back.LabelCounts[model.LabelSubChild] != 1 || back.RunID != "run-1" {
		t.Fatalf("yaml roundtrip=%+v", back)
	}
	if !strings.Contains(yb.String(), "Child/Parent: 1") {
		t.Fatalf("yaml output:\n%s", yb.String())
	}

	var jb bytes.Buffer
	if err := EncodeReport(&jb, ReportFormatFor("report.json"), report); err != nil {
		t.Fatalf("json: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(jb.Bytes(), &m); err != nil {
		t.Fatalf("json decode: %v", err)
	}
	if m["totalRecords"].(float64) != 3 {
		t.Fatalf("json=%v", m)
	}

	if ReportFormatFor("out.YML") != ReportYAML || ReportFormatFor("out.txt") != ReportJSON {
		t.Fatalf("ReportFormatFor mismatch")
	}
}
