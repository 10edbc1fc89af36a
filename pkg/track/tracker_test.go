package track

import "testing"

//reading builds a frame reading with both scores present; -1 means no reading
func reading(ts float64, left, right int, quarter string) FrameReading {
	r := FrameReading{Timestamp: ts, Quarter: quarter}
	if left >= 0 {
		r.Left = Digits(left)
	}
	if right >= 0 {
		r.Right = Digits(right)
	}
	return r
}

func TestNoSpuriousFirstQuarterEvent(t *testing.T) {
	tr := NewTracker(DefaultConfig())

	tr.Observe(reading(0, 0, 0, "1st"))

	if len(tr.Events) != 0 {
		t.Fatalf("expected no events after first '1st' reading, got %d", len(tr.Events))
	}
	if len(tr.QuarterScores) != 1 {
		t.Fatalf("expected bootstrapped quarter record, got %d", len(tr.QuarterScores))
	}
}

func TestQuarterTransition(t *testing.T) {
	tr := NewTracker(DefaultConfig())

	tr.Observe(reading(0, 0, 0, "1st"))
	tr.Observe(reading(2, 0, 0, "2nd"))

	var changes []GameEvent
	for _, ev := range tr.Events {
		if ev.Type == EventQuarterChange {
			changes = append(changes, ev)
		}
	}

	if len(changes) != 1 {
		t.Fatalf("expected exactly 1 quarter_change, got %d", len(changes))
	}
	if changes[0].Details != "Quarter: 1st -> 2nd" {
		t.Errorf("unexpected details %q", changes[0].Details)
	}
	if tr.LastQuarter != "2nd" {
		t.Errorf("LastQuarter = %q, want 2nd", tr.LastQuarter)
	}
	if len(tr.QuarterScores) != 2 || !tr.QuarterScores[0].Closed {
		t.Errorf("expected first quarter record closed and a second opened")
	}
}

func TestUnknownQuarterNeverTransitions(t *testing.T) {
	tr := NewTracker(DefaultConfig())

	tr.Observe(reading(0, 0, 0, "1st"))
	tr.Observe(reading(2, 0, 0, ""))

	if tr.LastQuarter != "1st" {
		t.Errorf("unknown reading overwrote LastQuarter: %q", tr.LastQuarter)
	}
	if len(tr.Events) != 0 {
		t.Errorf("unknown reading emitted %d events", len(tr.Events))
	}
}

func TestScoreDeltaPolicy(t *testing.T) {
	tests := []struct {
		name       string
		left       int
		right      int
		wantEvents int
		wantType   EventType
		wantShot   string
		wantErrors int
		wantLeft   int
		wantRight  int
	}{
		{"free throw", 1, 0, 1, EventScoreLeft, "FT", 0, 1, 0},
		{"two pointer", 2, 0, 1, EventScoreLeft, "2PT", 0, 2, 0},
		{"three pointer right", 0, 3, 1, EventScoreRight, "3PT", 0, 0, 3},
		{"four point play", 4, 0, 1, EventScoreLeft, "3PT+FT", 0, 4, 0},
		{"medium gap becomes jump", 9, 0, 1, EventScoreJump, "", 0, 9, 0},
		{"jump on both sides", 7, 5, 1, EventScoreJump, "", 0, 7, 5},
		{"implausible jump rejected", 40, 0, 0, "", "", 1, 0, 0},
		{"out of range rejected", 120, 0, 0, "", "", 1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(DefaultConfig())
			tr.Observe(reading(2, tt.left, tt.right, "1st"))

			if len(tr.Events) != tt.wantEvents {
				t.Fatalf("got %d events, want %d", len(tr.Events), tt.wantEvents)
			}
			if tt.wantEvents > 0 {
				ev := tr.Events[0]
				if ev.Type != tt.wantType {
					t.Errorf("event type = %s, want %s", ev.Type, tt.wantType)
				}
				if ev.ShotType != tt.wantShot {
					t.Errorf("shot type = %q, want %q", ev.ShotType, tt.wantShot)
				}
			}
			if tr.Errors != tt.wantErrors {
				t.Errorf("errors = %d, want %d", tr.Errors, tt.wantErrors)
			}
			if tr.LastLeft != tt.wantLeft || tr.LastRight != tt.wantRight {
				t.Errorf("accepted score = %d-%d, want %d-%d", tr.LastLeft, tr.LastRight, tt.wantLeft, tt.wantRight)
			}
		})
	}
}

func TestNegativeDeltaRejected(t *testing.T) {
	tr := NewTracker(DefaultConfig())

	tr.Observe(reading(2, 10, 8, "1st"))
	if tr.LastLeft != 10 || tr.LastRight != 8 {
		t.Fatalf("setup: accepted score = %d-%d", tr.LastLeft, tr.LastRight)
	}

	errsBefore := tr.Errors
	tr.Observe(reading(4, 7, 8, "1st"))

	if tr.LastLeft != 10 || tr.LastRight != 8 {
		t.Errorf("negative delta changed accepted score to %d-%d", tr.LastLeft, tr.LastRight)
	}
	if tr.Errors != errsBefore+1 {
		t.Errorf("errors = %d, want %d", tr.Errors, errsBefore+1)
	}
}

func TestMissingReadMeansUnchanged(t *testing.T) {
	tr := NewTracker(DefaultConfig())

	tr.Observe(reading(2, 5, 3, "1st"))
	tr.Observe(reading(4, -1, -1, "1st")) //both regions unreadable

	if tr.LastLeft != 5 || tr.LastRight != 3 {
		t.Errorf("missing reads changed accepted score to %d-%d", tr.LastLeft, tr.LastRight)
	}
	if tr.Errors != 0 {
		t.Errorf("missing reads counted as errors: %d", tr.Errors)
	}
	if len(tr.Events) != 1 {
		t.Errorf("got %d events, want 1", len(tr.Events))
	}
}

func TestMonotonicEventScores(t *testing.T) {
	tr := NewTracker(DefaultConfig())

	samples := []struct{ left, right int }{
		{2, 0}, {2, 2}, {1, 2} /*rejected*/, {4, 2}, {4, 5}, {10, 5}, {10, 30}, /*rejected*/
	}
	for i, s := range samples {
		tr.Observe(reading(float64(i*2), s.left, s.right, "1st"))
	}

	prevLeft, prevRight := 0, 0
	for _, ev := range tr.Events {
		if ev.LeftScore < prevLeft || ev.RightScore < prevRight {
			t.Fatalf("non-monotonic event score %d-%d after %d-%d", ev.LeftScore, ev.RightScore, prevLeft, prevRight)
		}
		prevLeft, prevRight = ev.LeftScore, ev.RightScore
	}

	if tr.Errors != 2 {
		t.Errorf("errors = %d, want 2", tr.Errors)
	}
}

func TestTenSampleScenario(t *testing.T) {
	scores := [][2]int{
		{0, 0}, {0, 0}, {2, 0}, {2, 0}, {2, 3},
		{2, 3}, {5, 3}, {5, 3}, {5, 3}, {5, 6},
	}

	tr := NewTracker(DefaultConfig())
	for i, s := range scores {
		tr.Observe(reading(float64(i)*2, s[0], s[1], "1st"))
	}

	want := []struct {
		typ  EventType
		shot string
	}{
		{EventScoreLeft, "2PT"},
		{EventScoreRight, "3PT"},
		{EventScoreLeft, "3PT"},
		{EventScoreRight, "3PT"},
	}

	if len(tr.Events) != len(want) {
		t.Fatalf("got %d events, want %d", len(tr.Events), len(want))
	}
	for i, w := range want {
		if tr.Events[i].Type != w.typ || tr.Events[i].ShotType != w.shot {
			t.Errorf("event %d = %s/%s, want %s/%s", i, tr.Events[i].Type, tr.Events[i].ShotType, w.typ, w.shot)
		}
	}
	if tr.Errors != 0 {
		t.Errorf("errors = %d, want 0", tr.Errors)
	}
	if tr.LastLeft != 5 || tr.LastRight != 6 {
		t.Errorf("final score = %d-%d, want 5-6", tr.LastLeft, tr.LastRight)
	}
	if tr.FrameCount != 10 {
		t.Errorf("frame count = %d, want 10", tr.FrameCount)
	}
}

func TestPlayerStatsHistory(t *testing.T) {
	tr := NewTracker(DefaultConfig())

	r := reading(2, 0, 0, "1st")
	r.PlayerPoints = Digits(12)
	r.PlayerRebounds = Digits(4)
	r.PlayerAssists = Digits(7)
	r.PlayerFG = "50%"
	tr.Observe(r)

	if len(tr.StatsHistory) != 1 {
		t.Fatalf("got %d stat lines, want 1", len(tr.StatsHistory))
	}
	line := tr.StatsHistory[0]
	if line.Points != 12 || line.Rebounds != 4 || line.Assists != 7 || line.FieldGoal != "50%" {
		t.Errorf("unexpected stat line %+v", line)
	}
}
