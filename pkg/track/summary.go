package track

//QuarterBreakdown is one quarter's score span and per-side points scored
type QuarterBreakdown struct {
	Quarter  string `json:"quarter"`
	Start    [2]int `json:"start_score"`
	End      [2]int `json:"end_score"`
	LeftPts  int    `json:"left_pts"`
	RightPts int    `json:"right_pts"`
}

//ShotCounts is a per-side shot type histogram. Jump counts shot types that
//could not be attributed (score_jump events increment it on both sides).
type ShotCounts struct {
	FT      int `json:"FT"`
	TwoPT   int `json:"2PT"`
	ThreePT int `json:"3PT"`
	ThreeFT int `json:"3PT+FT"`
	Jump    int `json:"jump"`
}

//Summary is everything derived from a finished tracking pass
type Summary struct {
	QuarterScores []QuarterBreakdown     `json:"quarter_scores"`
	ShotBreakdown map[string]*ShotCounts `json:"shot_type_breakdown"`
	ScoringRuns   []ScoringRun           `json:"scoring_runs"`
	PlayerFinal   *PlayerStatLine        `json:"player_final_stats"`
}

//Summarize derives quarter breakdowns, the shot type histogram and scoring
//runs from a finished tracker. It is a pure function: the tracker is not
//mutated, so running it twice yields identical output. The still-open last
//quarter is closed in the returned summary only.
func Summarize(t *Tracker) Summary {
	s := Summary{
		QuarterScores: make([]QuarterBreakdown, 0, len(t.QuarterScores)),
		ShotBreakdown: map[string]*ShotCounts{"left": {}, "right": {}},
		ScoringRuns:   make([]ScoringRun, 0),
	}

	finalScore := [2]int{t.LastLeft, t.LastRight}
	for _, qs := range t.QuarterScores {
		end := qs.End
		if !qs.Closed {
			end = finalScore
		}
		s.QuarterScores = append(s.QuarterScores, QuarterBreakdown{
			Quarter:  qs.Quarter,
			Start:    qs.Start,
			End:      end,
			LeftPts:  end[0] - qs.Start[0],
			RightPts: end[1] - qs.Start[1],
		})
	}

	for _, ev := range t.Events {
		switch ev.Type {
		case EventScoreLeft:
			s.ShotBreakdown["left"].count(ev.ShotType)
		case EventScoreRight:
			s.ShotBreakdown["right"].count(ev.ShotType)
		case EventScoreJump:
			s.ShotBreakdown["left"].Jump++
			s.ShotBreakdown["right"].Jump++
		}
	}

	s.ScoringRuns = detectRuns(t.Events, t.cfg.RunThreshold)

	if len(t.StatsHistory) > 0 {
		last := t.StatsHistory[len(t.StatsHistory)-1]
		s.PlayerFinal = &last
	}

	return s
}

func (c *ShotCounts) count(shotType string) {
	switch shotType {
	case "FT":
		c.FT++
	case "2PT":
		c.TwoPT++
	case "3PT":
		c.ThreePT++
	case "3PT+FT":
		c.ThreeFT++
	}
}

//detectRuns walks the event list once tracking which side currently owns a
//run and the score pair from before the run began. A run closes when the
//opponent scores or the events end; it is recorded if it reached threshold
//unanswered points. A score_jump resets tracking entirely since its
//attribution is unknown.
func detectRuns(events []GameEvent, threshold int) []ScoringRun {
	runs := make([]ScoringRun, 0)

	var runTeam string
	var runStart [2]int
	var runStartTime string
	var prevTime string
	prev := [2]int{0, 0} //accepted score before the current event

	closeRun := func(endTime string) {
		var pts int
		if runTeam == "left" {
			pts = prev[0] - runStart[0]
		} else {
			pts = prev[1] - runStart[1]
		}
		if pts >= threshold {
			runs = append(runs, ScoringRun{
				Team:      runTeam,
				Points:    pts,
				StartTime: runStartTime,
				EndTime:   endTime,
			})
		}
	}

	for _, ev := range events {
		switch ev.Type {
		case EventScoreLeft:
			if runTeam != "left" {
				if runTeam == "right" {
					closeRun(ev.VideoTime)
				}
				runTeam = "left"
				runStart = prev
				runStartTime = ev.VideoTime
			}
		case EventScoreRight:
			if runTeam != "right" {
				if runTeam == "left" {
					closeRun(ev.VideoTime)
				}
				runTeam = "right"
				runStart = prev
				runStartTime = ev.VideoTime
			}
		case EventScoreJump:
			runTeam = ""
		default:
			continue
		}

		prev = [2]int{ev.LeftScore, ev.RightScore}
		prevTime = ev.VideoTime
	}

	//a run still open when the events end closes at its last basket
	if runTeam != "" {
		closeRun(prevTime)
	}

	return runs
}
