package store

import "testing"

func sampleScoutGame() ScoutGame {
	return NewScoutGame(74, true,
		[]ScoutPlayer{{Name: "SG", Points: 28, FGMade: 10, FGAtt: 19, ThreeMade: 4, ThreeAtt: 9}},
		"2026-08-02")
}

func TestScoutDossierDefaults(t *testing.T) {
	s := NewScoutStore(t.TempDir(), "Puerto Rico")

	d, err := s.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ScoutTeam != "Puerto Rico" {
		t.Errorf("scout team = %q, want configured default", d.ScoutTeam)
	}
	if len(d.Games) != 0 || len(d.Pending) != 0 {
		t.Errorf("fresh dossier not empty: %+v", d)
	}
}

func TestScoutApproveMovesWithinDossier(t *testing.T) {
	s := NewScoutStore(t.TempDir(), "Puerto Rico")

	g := sampleScoutGame()
	if err := s.AddPending(g); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, err := s.Approve(g.ID)
	if err != nil || !ok {
		t.Fatalf("approve = %v/%v", ok, err)
	}

	d, _ := s.Load()
	if len(d.Pending) != 0 {
		t.Errorf("pending still has %d entries", len(d.Pending))
	}
	if len(d.Games) != 1 || d.Games[0].ID != g.ID {
		t.Fatalf("approved games = %+v, want the moved record", d.Games)
	}
	if d.ScoutTeam != "Puerto Rico" {
		t.Errorf("scout team lost across save, got %q", d.ScoutTeam)
	}
}

func TestScoutApproveUnknownID(t *testing.T) {
	s := NewScoutStore(t.TempDir(), "Puerto Rico")

	if err := s.AddPending(sampleScoutGame()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ok, err := s.Approve("scout_missing"); err != nil || ok {
		t.Fatalf("approve of unknown id = %v/%v, want false", ok, err)
	}

	d, _ := s.Load()
	if len(d.Pending) != 1 {
		t.Errorf("pending = %d entries, want untouched queue", len(d.Pending))
	}
}

func TestScoutReject(t *testing.T) {
	s := NewScoutStore(t.TempDir(), "Puerto Rico")

	g := sampleScoutGame()
	if err := s.AddPending(g); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ok, err := s.Reject(g.ID); err != nil || !ok {
		t.Fatalf("reject = %v/%v", ok, err)
	}
	if ok, _ := s.Reject(g.ID); ok {
		t.Error("rejecting twice reported success")
	}

	d, _ := s.Load()
	if len(d.Pending) != 0 || len(d.Games) != 0 {
		t.Errorf("dossier after reject = %+v, want empty", d)
	}
}

func TestNewScoutGameFillsDefaults(t *testing.T) {
	g := NewScoutGame(60, false, nil, "")

	if g.ID == "" || len(g.ID) != len("scout_")+8 {
		t.Errorf("unexpected id %q", g.ID)
	}
	if g.Date == "" {
		t.Error("date not defaulted")
	}
}
