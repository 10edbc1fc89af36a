package track

import "fmt"

//EventType classifies a detected game event
type EventType string

const (
	//EventScoreLeft is a left-side basket with an attributable shot type
	EventScoreLeft EventType = "score_left"
	//EventScoreRight is a right-side basket with an attributable shot type
	EventScoreRight EventType = "score_right"
	//EventScoreJump is a score change too large for one play but small enough
	//to be several baskets missed between samples
	EventScoreJump EventType = "score_jump"
	//EventQuarterChange is a transition between recognized quarter labels
	EventQuarterChange EventType = "quarter_change"
)

//ScoreRead is an optional score value. Valid == false means the region gave
//no usable reading, a first-class state rather than a magic sentinel value.
type ScoreRead struct {
	Valid bool
	Value int
}

//Digits returns a valid ScoreRead holding v
func Digits(v int) ScoreRead {
	return ScoreRead{Valid: true, Value: v}
}

//NoReading is the absent ScoreRead
func NoReading() ScoreRead {
	return ScoreRead{}
}

//FrameReading is everything extracted from one sampled frame. It is consumed
//by the tracker immediately and never persisted.
type FrameReading struct {
	Timestamp float64
	Left      ScoreRead
	Right     ScoreRead
	Clock     string
	ShotClock string
	Quarter   string //"1st"/"2nd"/"3rd"/"4th"/"OT", empty when unreadable

	PlayerPoints   ScoreRead
	PlayerRebounds ScoreRead
	PlayerAssists  ScoreRead
	PlayerFG       string
}

//GameEvent is one detected event. Immutable once emitted: the tracker only
//ever appends, it never rewrites history.
type GameEvent struct {
	Timestamp  float64   `json:"timestamp_sec"`
	VideoTime  string    `json:"video_time"`
	GameClock  string    `json:"game_clock"`
	Quarter    string    `json:"quarter"`
	Type       EventType `json:"event_type"`
	Details    string    `json:"details"`
	ShotType   string    `json:"shot_type,omitempty"`
	LeftScore  int       `json:"left_score"`
	RightScore int       `json:"right_score"`
}

//QuarterScore tracks the score pair at a quarter's boundaries. End is stamped
//when the quarter closes (next quarter detected or video ends).
type QuarterScore struct {
	Quarter string `json:"quarter"`
	Start   [2]int `json:"start_score"`
	End     [2]int `json:"end_score"`
	Closed  bool   `json:"-"`
}

//PlayerStatLine is one reading of the tracked player's overlay stats
type PlayerStatLine struct {
	Timestamp float64 `json:"timestamp_sec"`
	Points    int     `json:"pts"`
	Rebounds  int     `json:"reb"`
	Assists   int     `json:"ast"`
	FieldGoal string  `json:"fg"`
}

//ScoringRun is a maximal span where one side scored RunThreshold+ unanswered
//points. Derived by Summarize, never tracked incrementally.
type ScoringRun struct {
	Team      string `json:"team"`
	Points    int    `json:"points"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

var validQuarters = map[string]bool{"1st": true, "2nd": true, "3rd": true, "4th": true, "OT": true}

//ValidQuarter returns true for the recognized quarter labels
func ValidQuarter(q string) bool {
	return validQuarters[q]
}

//VideoTime formats a timestamp in seconds as M:SS
func VideoTime(sec float64) string {
	return fmt.Sprintf("%d:%02d", int(sec)/60, int(sec)%60)
}

//ShotTypeForDelta maps a single-event score delta to a shot type label.
//Deltas above 4 never reach this through the tracker's guard, the "+N" branch
//keeps the function total anyway.
func ShotTypeForDelta(delta int) string {
	switch delta {
	case 1:
		return "FT"
	case 2:
		return "2PT"
	case 3:
		return "3PT"
	case 4:
		return "3PT+FT"
	default:
		return fmt.Sprintf("+%d", delta)
	}
}
