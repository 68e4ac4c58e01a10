package hierarchy

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"contracthierarchy/internal/model"
)

func TestResolver_WholeWordMatch(t *testing.T) {
	t.Parallel()

	g := groupOf(
		rec(0, "", "Beta", "MSA", "Acme", ""),
		rec(1, "", "Gamma Services", "SOW", "Acme", "under BETA terms"),
	)
	refs := resolveGroup(DefaultOptions(), g)

	want := []model.ReferenceEdge{{From: 1, To: 0, Token: "beta", Match: model.MatchWord}}
	if diff := cmp.Diff(want, refs.Edges); diff != "" {
		t.Fatalf("edges mismatch (-want +got):\n%s", diff)
	}
	if got := refs.ReferencedBy(0); !cmp.Equal(got, []int{1}) {
		t.Fatalf("ReferencedBy(0)=%v", got)
	}
	if got := refs.References(1); !cmp.Equal(got, []int{0}) {
		t.Fatalf("References(1)=%v", got)
	}
}

func TestResolver_SubstringFallbackForLongTokens(t *testing.T) {
	t.Parallel()

	g := groupOf(
		rec(0, "", "Beta", "MSA", "Acme", ""),
		rec(1, "", "Gamma Services", "SOW", "Acme", "alphabeta rollout"),
	)
	refs := resolveGroup(DefaultOptions(), g)

	want := []model.ReferenceEdge{{From: 1, To: 0, Token: "beta", Match: model.MatchSubstring}}
	if diff := cmp.Diff(want, refs.Edges); diff != "" {
		t.Fatalf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestResolver_ShortTokenNeedsWholeWord(t *testing.T) {
	t.Parallel()

	inside := resolveGroup(DefaultOptions(), groupOf(
		rec(0, "", "ABC", "MSA", "Acme", ""),
		rec(1, "", "Order Form", "SOW", "Acme", "abcdef plan"),
	))
	if len(inside.Edges) != 0 {
		t.Fatalf("short token must not match inside a word: %v", inside.Edges)
	}

	word := resolveGroup(DefaultOptions(), groupOf(
		rec(0, "", "ABC", "MSA", "Acme", ""),
		rec(1, "", "Order Form", "SOW", "Acme", "see abc plan"),
	))
	if len(word.Edges) != 1 || word.Edges[0].Match != model.MatchWord {
		t.Fatalf("expected one whole-word edge, got %v", word.Edges)
	}
}

func TestResolver_NumericTokenDigitCap(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.MinFragmentLength = 10
	opts.MaxNumericTokenDigits = 6

	six := resolveGroup(opts, groupOf(
		rec(0, "", "123456", "MSA", "Acme", ""),
		rec(1, "", "Order Form", "SOW", "Acme", "ref x123456y"),
	))
	if len(six.Edges) != 1 || six.Edges[0].Match != model.MatchSubstring {
		t.Fatalf("6-digit numeric token should match as substring: %v", six.Edges)
	}

	seven := resolveGroup(opts, groupOf(
		rec(0, "", "1234567", "MSA", "Acme", ""),
		rec(1, "", "Order Form", "SOW", "Acme", "ref x1234567y"),
	))
	if len(seven.Edges) != 0 {
		t.Fatalf("7-digit numeric token below length threshold must not match as substring: %v", seven.Edges)
	}
}

func TestResolver_ShortNumericIDs(t *testing.T) {
	t.Parallel()

	g := groupOf(
		rec(0, "101", "Initech Master", "MSA", "Initech", ""),
		rec(1, "102", "Initech Services", "SOW", "Initech", "see 101"),
		rec(2, "103", "Initech Change", "Change Order", "Initech", "amends 102"),
	)
	refs := resolveGroup(DefaultOptions(), g)

	want := []model.ReferenceEdge{
		{From: 1, To: 0, Token: "101", Match: model.MatchWord},
		{From: 2, To: 1, Token: "102", Match: model.MatchWord},
	}
	if diff := cmp.Diff(want, refs.Edges); diff != "" {
		t.Fatalf("edges mismatch (-want +got):\n%s", diff)
	}

	labels := NewClassifier(NewNormalizer(), DefaultRootTypeMarkers).Classify(g, refs)
	wantLabels := Labels{0: model.LabelParent, 1: model.LabelChildParent, 2: model.LabelSubChild}
	if diff := cmp.Diff(wantLabels, labels); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}

	inside := resolveGroup(DefaultOptions(), groupOf(
		rec(0, "CW1", "Initech Master", "MSA", "Initech", ""),
		rec(1, "CW2", "Initech Services", "SOW", "Initech", "batch cw1x"),
	))
	if len(inside.Edges) != 0 {
		t.Fatalf("short non-numeric id must not match inside a word: %v", inside.Edges)
	}
}

func TestResolver_SkipsSelfReference(t *testing.T) {
	t.Parallel()

	refs := resolveGroup(DefaultOptions(), groupOf(
		rec(0, "", "Acme MSA", "MSA", "Acme", "Acme MSA master copy"),
		rec(1, "", "Other Doc", "SOW", "Acme", ""),
	))
	if len(refs.Edges) != 0 {
		t.Fatalf("self reference must be skipped: %v", refs.Edges)
	}
	if refs.IsReferenced(0) {
		t.Fatalf("record 0 must not be referenced")
	}
}

func TestResolver_AmbiguousTokenIsReportedNotLinked(t *testing.T) {
	t.Parallel()

	refs := resolveGroup(DefaultOptions(), groupOf(
		rec(0, "CW1001", "Acme Order Form", "Order Form", "Acme", ""),
		rec(1, "CW1002", "Acme Order Form", "Order Form", "Acme", ""),
		rec(2, "CW1003", "Acme Renewal", "Renewal", "Acme", "see acme order form"),
	))

	if len(refs.Edges) != 0 {
		t.Fatalf("ambiguous token must not create edges: %v", refs.Edges)
	}
	want := []model.Ambiguity{{From: 2, Token: "acme order form", Candidates: []int{0, 1}}}
	if diff := cmp.Diff(want, refs.Ambiguities); diff != "" {
		t.Fatalf("ambiguities mismatch (-want +got):\n%s", diff)
	}
}

func TestResolver_UniqueTokenWinsOverAmbiguousName(t *testing.T) {
	t.Parallel()

	refs := resolveGroup(DefaultOptions(), groupOf(
		rec(0, "CW1001", "Acme Order Form", "Order Form", "Acme", ""),
		rec(1, "CW1002", "Acme Order Form", "Order Form", "Acme", ""),
		rec(2, "CW1003", "Acme Renewal", "Renewal", "Acme", "see acme order form CW1002"),
	))

	want := []model.ReferenceEdge{{From: 2, To: 1, Token: "cw1002", Match: model.MatchWord}}
	if diff := cmp.Diff(want, refs.Edges); diff != "" {
		t.Fatalf("edges mismatch (-want +got):\n%s", diff)
	}
	if len(refs.Ambiguities) != 1 {
		t.Fatalf("expected the shared name to be reported once, got %v", refs.Ambiguities)
	}
}

func TestResolver_LongerMentionShadowsPrefix(t *testing.T) {
	t.Parallel()

	refs := resolveGroup(DefaultOptions(), groupOf(
		rec(0, "", "Acme SOW-1", "SOW", "Acme", ""),
		rec(1, "", "Acme SOW-1-CO1", "Change Order", "Acme", ""),
		rec(2, "", "Acme Invoice Schedule", "Schedule", "Acme", "bills against Acme SOW-1-CO1"),
	))

	want := []model.ReferenceEdge{{From: 2, To: 1, Token: "acme sow-1-co1", Match: model.MatchWord}}
	if diff := cmp.Diff(want, refs.Edges); diff != "" {
		t.Fatalf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestResolver_OneEdgePerPair(t *testing.T) {
	t.Parallel()

	refs := resolveGroup(DefaultOptions(), groupOf(
		dated(rec(0, "", "Globex MSA", "MSA", "Globex", ""), 2023, time.January, 15),
		rec(1, "", "Globex SOW", "SOW", "Globex", "per Globex MSA dated January 15, 2023, see Globex MSA"),
	))

	want := []model.ReferenceEdge{{From: 1, To: 0, Token: "january 15, 2023", Match: model.MatchWord}}
	if diff := cmp.Diff(want, refs.Edges); diff != "" {
		t.Fatalf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestResolver_DateCitationStyles(t *testing.T) {
	t.Parallel()

	for _, link := range []string{
		"effective 1/15/2023",
		"effective 01/15/2023",
		"dated Jan 15, 2023",
		"signed 2023-01-15",
	} {
		refs := resolveGroup(DefaultOptions(), groupOf(
			dated(rec(0, "", "Initech MSA", "MSA", "Initech", ""), 2023, time.January, 15),
			rec(1, "", "Initech Work Order", "SOW", "Initech", link),
		))
		if !refs.HasEdge(1, 0) {
			t.Fatalf("link %q: expected edge 1->0, got %v", link, refs.Edges)
		}
	}
}

func TestResolver_MutualReferences(t *testing.T) {
	t.Parallel()

	refs := resolveGroup(DefaultOptions(), groupOf(
		rec(0, "", "Northwind Pilot", "SOW", "Northwind", "see Northwind Rollout"),
		rec(1, "", "Northwind Rollout", "SOW", "Northwind", "see Northwind Pilot"),
	))
	if !refs.HasEdge(0, 1) || !refs.HasEdge(1, 0) {
		t.Fatalf("expected a 2-cycle, got %v", refs.Edges)
	}
}
