package clip

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/usab-esports/game-tracker/pkg/track"
)

func scoreEvent(ts float64, typ track.EventType, shot string) track.GameEvent {
	return track.GameEvent{
		Timestamp: ts,
		VideoTime: track.VideoTime(ts),
		GameClock: "4:52",
		Quarter:   "2nd",
		Type:      typ,
		ShotType:  shot,
	}
}

func TestBatchSurvivesOneFailure(t *testing.T) {
	events := []track.GameEvent{
		scoreEvent(60, track.EventScoreLeft, "2PT"),
		scoreEvent(120, track.EventScoreLeft, "3PT"),
		scoreEvent(180, track.EventScoreLeft, "FT"),
		scoreEvent(240, track.EventScoreLeft, "2PT"),
		scoreEvent(300, track.EventScoreLeft, "3PT+FT"),
	}

	var mu sync.Mutex
	calls := 0
	e := &Extractor{
		BeforeSec: 30,
		AfterSec:  2,
		Workers:   2,
		Run: func(src string, start, duration float64, dst string) error {
			mu.Lock()
			calls++
			mu.Unlock()
			if strings.Contains(dst, "basket_03_") {
				return fmt.Errorf("forced failure")
			}
			return nil
		},
	}

	records, err := e.Batch("game.mp4", events, "left", t.TempDir(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records) != 5 {
		t.Fatalf("got %d records, want 5", len(records))
	}
	if calls != 5 {
		t.Errorf("runner called %d times, want 5", calls)
	}

	for i, rec := range records {
		if i == 2 {
			if rec.Error == "" || rec.Path != "" {
				t.Errorf("record 3 = %+v, want error and no path", rec)
			}
			continue
		}
		if rec.Error != "" || rec.Path == "" {
			t.Errorf("record %d = %+v, want a path and no error", i+1, rec)
		}
	}
}

func TestBatchFiltersSide(t *testing.T) {
	events := []track.GameEvent{
		scoreEvent(10, track.EventScoreLeft, "2PT"),
		scoreEvent(20, track.EventScoreRight, "3PT"),
		scoreEvent(30, track.EventScoreJump, ""),
		scoreEvent(40, track.EventQuarterChange, ""),
	}

	tests := []struct {
		side string
		want int
	}{
		{"left", 2},  //left basket + jump
		{"right", 2}, //right basket + jump
		{"both", 3},
	}

	for _, tt := range tests {
		t.Run(tt.side, func(t *testing.T) {
			e := &Extractor{Run: func(string, float64, float64, string) error { return nil }}

			records, err := e.Batch("game.mp4", events, tt.side, t.TempDir(), nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(records) != tt.want {
				t.Errorf("got %d records, want %d", len(records), tt.want)
			}
		})
	}
}

func TestClipWindowClampsAtZero(t *testing.T) {
	var gotStart, gotDuration float64
	e := &Extractor{
		BeforeSec: 30,
		AfterSec:  2,
		Run: func(src string, start, duration float64, dst string) error {
			gotStart, gotDuration = start, duration
			return nil
		},
	}

	events := []track.GameEvent{scoreEvent(10, track.EventScoreLeft, "2PT")}
	if _, err := e.Batch("game.mp4", events, "left", t.TempDir(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotStart != 0 {
		t.Errorf("start = %f, want clamp to 0", gotStart)
	}
	if gotDuration != 32 {
		t.Errorf("duration = %f, want 32", gotDuration)
	}
}

func TestClipFilenames(t *testing.T) {
	tests := []struct {
		name string
		seq  int
		ev   track.GameEvent
		want string
	}{
		{"typed basket", 2, scoreEvent(60, track.EventScoreLeft, "3PT"), "basket_03_2nd_4m52_3PT_USA.mp4"},
		{"right side", 0, scoreEvent(60, track.EventScoreRight, "FT"), "basket_01_2nd_4m52_FT_OPP.mp4"},
		{"jump", 4, scoreEvent(60, track.EventScoreJump, ""), "basket_05_2nd_4m52_jump_OPP.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clipFilename(tt.seq, tt.ev); got != tt.want {
				t.Errorf("clipFilename = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBatchReportsProgress(t *testing.T) {
	events := []track.GameEvent{
		scoreEvent(10, track.EventScoreLeft, "2PT"),
		scoreEvent(20, track.EventScoreLeft, "FT"),
	}

	var fractions []float64
	e := &Extractor{
		Workers: 1,
		Run:     func(string, float64, float64, string) error { return nil },
	}

	_, err := e.Batch("game.mp4", events, "left", t.TempDir(), func(f float64) {
		fractions = append(fractions, f)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fractions) != 2 || fractions[1] != 1.0 {
		t.Errorf("progress fractions = %v, want two ending at 1.0", fractions)
	}
}
