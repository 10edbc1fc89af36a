package track

import "fmt"

//Config holds the tracker's plausibility thresholds. The defaults encode
//basketball scoring physics: one play is worth at most 4 points (3PT plus a
//bonus free throw), a gap of up to 15 per side is plausible across a missed
//sampling window, anything larger is an OCR misread.
type Config struct {
	//MaxEventDelta is the largest per-side delta attributed to a single play
	MaxEventDelta int
	//MaxJumpDelta is the largest per-side delta accepted as a missed-window jump
	MaxJumpDelta int
	//RunThreshold is the unanswered point count that qualifies as a scoring run
	RunThreshold int
}

//DefaultConfig returns the calibrated thresholds for Pro-Am games
func DefaultConfig() Config {
	return Config{MaxEventDelta: 4, MaxJumpDelta: 15, RunThreshold: 6}
}

//Tracker accumulates game state across one video's sampled frames. It is
//owned by exactly one processing pass and must be fed readings in increasing
//timestamp order: every transition depends on the last accepted state.
type Tracker struct {
	cfg Config

	Events        []GameEvent
	QuarterScores []QuarterScore
	StatsHistory  []PlayerStatLine

	LastLeft  int
	LastRight int
	//LastQuarter is seeded to "1st" so the first frame that reads "1st" does
	//not fire a spurious quarter_change event
	LastQuarter string

	FrameCount int
	Errors     int
}

//NewTracker returns a tracker ready for the first sampled frame
func NewTracker(cfg Config) *Tracker {
	if cfg.MaxEventDelta <= 0 {
		cfg = DefaultConfig()
	}
	return &Tracker{cfg: cfg, LastQuarter: "1st"}
}

//Config returns the thresholds this tracker runs with
func (t *Tracker) Config() Config {
	return t.cfg
}

//Observe applies one frame reading to the state machine. Implausible readings
//are rejected silently: the error counter advances and the accepted state is
//retained. Readings from non-live frames must not reach here, the caller
//gates those and only advances CountSkipped.
func (t *Tracker) Observe(r FrameReading) {
	videoTime := VideoTime(r.Timestamp)

	t.observeQuarter(r, videoTime)
	t.observeScores(r, videoTime)

	if r.PlayerPoints.Valid {
		t.StatsHistory = append(t.StatsHistory, PlayerStatLine{
			Timestamp: r.Timestamp,
			Points:    r.PlayerPoints.Value,
			Rebounds:  r.PlayerRebounds.Value,
			Assists:   r.PlayerAssists.Value,
			FieldGoal: r.PlayerFG,
		})
	}

	t.FrameCount++
}

//CountSkipped advances frame bookkeeping for a sampled frame that was
//classified non-live and therefore produced no reading
func (t *Tracker) CountSkipped() {
	t.FrameCount++
}

func (t *Tracker) observeQuarter(r FrameReading, videoTime string) {
	if ValidQuarter(r.Quarter) && r.Quarter != t.LastQuarter && ValidQuarter(t.LastQuarter) {
		//close the open record and open the next one at the same score pair
		if len(t.QuarterScores) > 0 {
			last := &t.QuarterScores[len(t.QuarterScores)-1]
			last.End = [2]int{t.LastLeft, t.LastRight}
			last.Closed = true
		}

		t.QuarterScores = append(t.QuarterScores, QuarterScore{
			Quarter: r.Quarter,
			Start:   [2]int{t.LastLeft, t.LastRight},
		})

		t.Events = append(t.Events, GameEvent{
			Timestamp:  r.Timestamp,
			VideoTime:  videoTime,
			GameClock:  r.Clock,
			Quarter:    r.Quarter,
			Type:       EventQuarterChange,
			Details:    fmt.Sprintf("Quarter: %s -> %s", t.LastQuarter, r.Quarter),
			LeftScore:  t.LastLeft,
			RightScore: t.LastRight,
		})
	}

	if ValidQuarter(r.Quarter) {
		//first recognized label bootstraps the opening record without an event
		if len(t.QuarterScores) == 0 {
			t.QuarterScores = append(t.QuarterScores, QuarterScore{
				Quarter: r.Quarter,
				Start:   [2]int{t.LastLeft, t.LastRight},
			})
		}
		t.LastQuarter = r.Quarter
	}
}

func (t *Tracker) observeScores(r FrameReading, videoTime string) {
	//missing read means "unchanged", not zero
	curLeft, curRight := t.LastLeft, t.LastRight
	if r.Left.Valid {
		curLeft = r.Left.Value
	}
	if r.Right.Valid {
		curRight = r.Right.Value
	}

	if curLeft == t.LastLeft && curRight == t.LastRight {
		return
	}

	leftDiff := curLeft - t.LastLeft
	rightDiff := curRight - t.LastRight

	quarter := r.Quarter
	if quarter == "" {
		quarter = t.LastQuarter
	}

	switch {
	case curLeft < 0 || curLeft > 99 || curRight < 0 || curRight > 99:
		t.Errors++

	case leftDiff < 0 || rightDiff < 0:
		//scores never go down, a negative delta is a misread of the prior frame
		t.Errors++

	case leftDiff <= t.cfg.MaxEventDelta && rightDiff <= t.cfg.MaxEventDelta:
		if leftDiff > 0 {
			shotType := ShotTypeForDelta(leftDiff)
			t.Events = append(t.Events, GameEvent{
				Timestamp:  r.Timestamp,
				VideoTime:  videoTime,
				GameClock:  r.Clock,
				Quarter:    quarter,
				Type:       EventScoreLeft,
				ShotType:   shotType,
				Details:    fmt.Sprintf("Left scored %s (%d->%d)", shotType, t.LastLeft, curLeft),
				LeftScore:  curLeft,
				RightScore: curRight,
			})
		}
		if rightDiff > 0 {
			shotType := ShotTypeForDelta(rightDiff)
			t.Events = append(t.Events, GameEvent{
				Timestamp:  r.Timestamp,
				VideoTime:  videoTime,
				GameClock:  r.Clock,
				Quarter:    quarter,
				Type:       EventScoreRight,
				ShotType:   shotType,
				Details:    fmt.Sprintf("Right scored %s (%d->%d)", shotType, t.LastRight, curRight),
				LeftScore:  curLeft,
				RightScore: curRight,
			})
		}
		t.LastLeft, t.LastRight = curLeft, curRight

	case leftDiff <= t.cfg.MaxJumpDelta && rightDiff <= t.cfg.MaxJumpDelta:
		//too large for one play, plausible across a missed sampling window.
		//Shot type is unknowable here
		t.Events = append(t.Events, GameEvent{
			Timestamp: r.Timestamp,
			VideoTime: videoTime,
			GameClock: r.Clock,
			Quarter:   quarter,
			Type:      EventScoreJump,
			Details: fmt.Sprintf("Score jump (missed window): %d-%d -> %d-%d",
				t.LastLeft, t.LastRight, curLeft, curRight),
			LeftScore:  curLeft,
			RightScore: curRight,
		})
		t.LastLeft, t.LastRight = curLeft, curRight

	default:
		//a jump above MaxJumpDelta on one side is almost certainly the clock
		//bleeding into the score's OCR pass
		t.Errors++
	}
}
