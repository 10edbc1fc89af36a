package clip

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path"
	"regexp"
	"strings"
	"sync"

	"github.com/usab-esports/game-tracker/pkg/track"
)

//Record is the metadata for one extraction attempt. On failure Error is set
//instead of Path; a record is written once and never mutated.
type Record struct {
	Filename   string  `json:"filename"`
	Path       string  `json:"path,omitempty"`
	Error      string  `json:"error,omitempty"`
	Timestamp  float64 `json:"timestamp"`
	Quarter    string  `json:"quarter"`
	Clock      string  `json:"clock"`
	ShotType   string  `json:"shot_type"`
	Team       string  `json:"team"`
	ScoreAfter string  `json:"score_after"`
}

//Runner performs one lossless segment extraction: seek to start, copy
//duration seconds of the source streams into dst without re-encoding
type Runner func(src string, start, duration float64, dst string) error

//Extractor cuts one clip per qualifying scoring event
type Extractor struct {
	//BeforeSec/AfterSec pad the clip window around the event timestamp
	BeforeSec float64
	AfterSec  float64
	//Workers bounds the fan-out; extractions are independent read-only seeks
	//into the same source, so they parallelize freely. <=1 runs sequentially.
	Workers int
	//Run overrides the ffmpeg runner, used by tests
	Run Runner
}

//NewExtractor returns an extractor with the standard 30s-before/2s-after
//window and the ffmpeg stream-copy runner
func NewExtractor() *Extractor {
	return &Extractor{BeforeSec: 30, AfterSec: 2, Workers: 4}
}

//Available reports whether ffmpeg can be found on PATH
func Available() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

//ffmpegCopy trims [start, start+duration] out of src by stream copy
func ffmpegCopy(src string, start, duration float64, dst string) error {
	cmd := exec.Command("ffmpeg", "-y",
		"-ss", fmt.Sprintf("%.3f", start),
		"-i", src,
		"-t", fmt.Sprintf("%.3f", duration),
		"-c", "copy",
		dst)

	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg: Error, got '%v': %s", err, lastLine(out))
	}
	return nil
}

func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	return lines[len(lines)-1]
}

//Batch extracts one clip per scoring event of the requested side ("left",
//"right" or "both"); score_jump events are always included for either side
//since their attribution is ambiguous but the footage is relevant. One failed
//extraction never aborts the batch: its record carries the error and the
//remaining clips are still produced. Records come back in event order.
//progress, when set, receives a 0..1 fraction after every attempt.
func (e *Extractor) Batch(videoPath string, events []track.GameEvent, side, outputDir string, progress func(float64)) ([]Record, error) {
	if err := os.MkdirAll(outputDir, 0766); err != nil {
		return nil, fmt.Errorf("Batch: Could not create '%s', got '%v'", outputDir, err)
	}

	scoring := filterEvents(events, side)
	records := make([]Record, len(scoring))
	if len(scoring) == 0 {
		return records, nil
	}

	run := e.Run
	if run == nil {
		run = ffmpegCopy
	}

	workers := e.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(scoring) {
		workers = len(scoring)
	}

	jobs := make(chan int)
	var done int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				records[i] = e.extractOne(run, videoPath, outputDir, i, scoring[i])

				mu.Lock()
				done++
				if progress != nil {
					progress(float64(done) / float64(len(scoring)))
				}
				mu.Unlock()
			}
		}()
	}

	for i := range scoring {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return records, nil
}

func (e *Extractor) extractOne(run Runner, videoPath, outputDir string, seq int, ev track.GameEvent) Record {
	rec := Record{
		Filename:   clipFilename(seq, ev),
		Timestamp:  ev.Timestamp,
		Quarter:    ev.Quarter,
		Clock:      ev.GameClock,
		ShotType:   shotType(ev),
		Team:       teamTag(ev),
		ScoreAfter: fmt.Sprintf("%d-%d", ev.LeftScore, ev.RightScore),
	}

	outPath := path.Join(outputDir, rec.Filename)
	start := ev.Timestamp - e.BeforeSec
	if start < 0 {
		start = 0
	}

	if err := run(videoPath, start, e.BeforeSec+e.AfterSec, outPath); err != nil {
		log.Printf("Batch: Could not extract clip '%s', got '%v'. Continuing.", rec.Filename, err)
		rec.Error = err.Error()
		return rec
	}

	rec.Path = outPath
	return rec
}

func filterEvents(events []track.GameEvent, side string) []track.GameEvent {
	target := map[track.EventType]bool{track.EventScoreJump: true}
	switch side {
	case "left":
		target[track.EventScoreLeft] = true
	case "right":
		target[track.EventScoreRight] = true
	default:
		target[track.EventScoreLeft] = true
		target[track.EventScoreRight] = true
	}

	out := make([]track.GameEvent, 0, len(events))
	for _, ev := range events {
		if target[ev.Type] {
			out = append(out, ev)
		}
	}
	return out
}

var unsafeChars = regexp.MustCompile(`[^\w\-]`)

//clipFilename builds a deterministic name encoding sequence, quarter, clock,
//shot type and team, e.g. basket_03_2nd_4m52_3PT_USA.mp4
func clipFilename(seq int, ev track.GameEvent) string {
	quarter := ev.Quarter
	if quarter == "" {
		quarter = "Q"
	}

	clock := ev.GameClock
	if clock == "" {
		clock = "unknown"
	}
	clock = strings.NewReplacer(":", "m", ".", "s").Replace(clock)

	return fmt.Sprintf("basket_%02d_%s_%s_%s_%s.mp4",
		seq+1,
		unsafeChars.ReplaceAllString(quarter, "_"),
		unsafeChars.ReplaceAllString(clock, "_"),
		shotType(ev),
		teamTag(ev))
}

func shotType(ev track.GameEvent) string {
	if ev.ShotType != "" {
		return ev.ShotType
	}
	if ev.Type == track.EventScoreJump {
		return "jump"
	}
	return "basket"
}

func teamTag(ev track.GameEvent) string {
	if ev.Type == track.EventScoreLeft {
		return "USA"
	}
	return "OPP"
}
