package hierarchy

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"contracthierarchy/internal/model"
)

func classifyGroup(t *testing.T, records ...*model.ContractRecord) Labels {
	t.Helper()

	opts := DefaultOptions()
	g := groupOf(records...)
	refs := resolveGroup(opts, g)
	return NewClassifier(NewNormalizer(), opts.RootTypeMarkers).Classify(g, refs)
}

func TestClassifier_IsRootType(t *testing.T) {
	t.Parallel()

	c := NewClassifier(NewNormalizer(), DefaultRootTypeMarkers)
	roots := []string{"MSA", "msa amendment", "Master Services Agreement", "  technology   agreement", "Product and Service Agreement"}
	for _, typ := range roots {
		if !c.IsRootType(typ) {
			t.Fatalf("IsRootType(%q)=false, want true", typ)
		}
	}
	for _, typ := range []string{"SOW", "Change Order", "", "Order Form"} {
		if c.IsRootType(typ) {
			t.Fatalf("IsRootType(%q)=true, want false", typ)
		}
	}
}

func TestClassifier_AcmeChain(t *testing.T) {
	t.Parallel()

	labels := classifyGroup(t, acmeScenario()...)
	want := Labels{0: model.LabelParent, 1: model.LabelChildParent, 2: model.LabelSubChild}
	if diff := cmp.Diff(want, labels); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestClassifier_RootMarkerWinsOverLinkText(t *testing.T) {
	t.Parallel()

	labels := classifyGroup(t,
		rec(0, "", "Acme Legacy Terms", "SOW", "Acme", ""),
		rec(1, "", "Acme Master Services Agreement 2024", "Master Services Agreement", "Acme", "supersedes Acme Legacy Terms"),
	)
	if labels[1] != model.LabelParent {
		t.Fatalf("root-type record with link text: got %s, want Parent", labels[1])
	}
	if labels[0] != model.LabelChildParent {
		t.Fatalf("referenced non-root record: got %s, want Child/Parent", labels[0])
	}
}

func TestClassifier_ChildOfParentStaysChild(t *testing.T) {
	t.Parallel()

	labels := classifyGroup(t,
		rec(0, "", "Initech MSA", "MSA", "Initech", ""),
		rec(1, "", "Initech Order Form", "Order Form", "Initech", "under Initech MSA"),
	)
	if labels[1] != model.LabelChild {
		t.Fatalf("got %s, want Child", labels[1])
	}
}

func TestClassifier_PromotionIsMonotonic(t *testing.T) {
	t.Parallel()

	// B <- C <- D：C 同时引用了 Child/Parent，但自身被引用，保持 Child/Parent
	labels := classifyGroup(t,
		rec(0, "", "Umbrella MSA", "MSA", "Umbrella", ""),
		rec(1, "", "Umbrella Statement Alpha", "SOW", "Umbrella", "under Umbrella MSA"),
		rec(2, "", "Umbrella Change Bravo", "Change Order", "Umbrella", "amends Umbrella Statement Alpha"),
		rec(3, "", "Umbrella Change Charlie", "Change Order", "Umbrella", "revises Umbrella Change Bravo"),
	)
	want := Labels{
		0: model.LabelParent,
		1: model.LabelChildParent,
		2: model.LabelChildParent,
		3: model.LabelSubChild,
	}
	if diff := cmp.Diff(want, labels); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestClassifier_UnlinkedRecordIsChild(t *testing.T) {
	t.Parallel()

	labels := classifyGroup(t,
		rec(0, "", "Hooli MSA", "MSA", "Hooli", ""),
		rec(1, "", "Hooli Standalone NDA", "NDA", "Hooli", ""),
	)
	if labels[1] != model.LabelChild {
		t.Fatalf("got %s, want Child", labels[1])
	}
}

func TestLabels_Count(t *testing.T) {
	t.Parallel()

	counts := Labels{0: model.LabelParent, 1: model.LabelChild, 2: model.LabelChild}.Count()
	want := map[model.HierarchyLabel]int{
		model.LabelParent:      1,
		model.LabelChildParent: 0,
		model.LabelChild:       2,
		model.LabelSubChild:    0,
	}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Fatalf("counts mismatch (-want +got):\n%s", diff)
	}
}
