package graph

import (
	"os"
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "graph.json"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s
}

func TestRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.AddCompanyNode(1, "TechCorp"); err != nil {
		t.Fatalf("add company: %v", err)
	}
	if err := s.AddOpportunityEdge(10, 1, "Security Engineer", "security"); err != nil {
		t.Fatalf("add opportunity: %v", err)
	}
	if err := s.AddSignalEdge(20, 1, "funding", "series B"); err != nil {
		t.Fatalf("add signal: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := reopened.NodeCount(); got != 3 {
		t.Fatalf("nodes=%d want=3", got)
	}
	conns := reopened.ConnectionsOf(1)
	if len(conns.Opportunities) != 1 || len(conns.Signals) != 1 {
		t.Fatalf("connections=%+v want 1 opportunity and 1 signal", conns)
	}
	if conns.Opportunities[0].Attrs["title"] != "Security Engineer" {
		t.Fatalf("opportunity attrs=%v", conns.Opportunities[0].Attrs)
	}
}

func TestAddIsIdempotent(t *testing.T) {
	s := openTemp(t)
	for i := 0; i < 3; i++ {
		if err := s.AddCompanyNode(1, "TechCorp"); err != nil {
			t.Fatalf("add company: %v", err)
		}
		if err := s.AddOpportunityEdge(10, 1, "Security Engineer", "security"); err != nil {
			t.Fatalf("add opportunity: %v", err)
		}
	}
	if got := s.NodeCount(); got != 2 {
		t.Fatalf("nodes=%d want=2", got)
	}
	if got := len(s.ConnectionsOf(1).Opportunities); got != 1 {
		t.Fatalf("opportunities=%d want=1", got)
	}
}

func TestCompaniesWithAtLeastNSignals(t *testing.T) {
	s := openTemp(t)
	_ = s.AddCompanyNode(1, "One")
	_ = s.AddCompanyNode(2, "Two")
	_ = s.AddCompanyNode(3, "Three")
	_ = s.AddSignalEdge(1, 1, "funding", "")
	_ = s.AddSignalEdge(2, 2, "funding", "")
	_ = s.AddSignalEdge(3, 2, "breach", "")
	_ = s.AddOpportunityEdge(4, 2, "Security Engineer", "security")

	got := s.CompaniesWithAtLeastNSignals(2)
	if len(got) != 1 {
		t.Fatalf("companies=%v want exactly one", got)
	}
	if got[0].CompanyID != "2" || got[0].SignalCount != 2 {
		t.Fatalf("got=%+v want company 2 with 2 signals", got[0])
	}

	all := s.CompaniesWithAtLeastNSignals(1)
	if len(all) != 2 {
		t.Fatalf("companies=%v want two", all)
	}
	if all[0].SignalCount < all[1].SignalCount {
		t.Fatalf("not sorted desc: %v", all)
	}
}

func TestOpenDiscardsCorruptSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := s.NodeCount(); got != 0 {
		t.Fatalf("nodes=%d want=0", got)
	}
}

func TestParseCompanyID(t *testing.T) {
	if id, ok := ParseCompanyID("company:42"); !ok || id != 42 {
		t.Fatalf("got id=%d ok=%v", id, ok)
	}
	if _, ok := ParseCompanyID("signal:42"); ok {
		t.Fatalf("signal node parsed as company")
	}
	if _, ok := ParseCompanyID("company:abc"); ok {
		t.Fatalf("non-numeric id parsed")
	}
}
