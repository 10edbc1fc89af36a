package track

import (
	"context"
	"fmt"
	"log"

	"gocv.io/x/gocv"
)

//FrameReader turns one decoded frame into a reading. The bool reports whether
//the frame showed live gameplay; when false the reading is discarded and no
//event can be emitted for that timestamp.
type FrameReader interface {
	ReadFrame(frame gocv.Mat, readStats bool) (FrameReading, bool)
}

//Options configures one processing pass
type Options struct {
	//SampleInterval is the seconds between sampled frames (default 2.0)
	SampleInterval float64
	//MaxSeconds caps how much of the video is processed, 0 means all of it
	MaxSeconds float64
	//ReadStats also reads the player stat overlay on every live frame
	ReadStats bool
	//Progress, when set, receives a 0..1 fraction after each sampled frame
	Progress func(float64)
}

//FinalScore is the last accepted score pair
type FinalScore struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

//Result is the full output of one tracking pass, consumed by the dashboard
//and the clip extractor
type Result struct {
	VideoPath       string      `json:"video_path"`
	DurationSec     float64     `json:"video_duration_sec"`
	FramesProcessed int         `json:"frames_processed"`
	SampleInterval  float64     `json:"sample_interval_sec"`
	OCRErrors       int         `json:"ocr_errors"`
	FinalScore      FinalScore  `json:"final_score"`
	Events          []GameEvent `json:"events"`
	Summary         Summary     `json:"summary"`
}

//ProcessVideo samples videoPath every opts.SampleInterval seconds, feeds each
//live frame through reader into a fresh tracker and returns the finished
//result. The only fatal error is a source that cannot be opened, raised
//before any sampling begins; every later problem is absorbed into the error
//counter. Cancelling ctx stops the pass between samples and returns the
//partial result.
func ProcessVideo(ctx context.Context, videoPath string, reader FrameReader, cfg Config, opts Options) (*Result, error) {
	cap, err := gocv.VideoCaptureFile(videoPath)
	if err != nil {
		return nil, fmt.Errorf("ProcessVideo: Cannot open video '%s', got '%v'", videoPath, err)
	}
	defer cap.Close()

	fps := cap.Get(gocv.VideoCaptureFPS)
	totalFrames := cap.Get(gocv.VideoCaptureFrameCount)
	if fps <= 0 || totalFrames <= 0 {
		return nil, fmt.Errorf("ProcessVideo: Cannot read stream properties of '%s'", videoPath)
	}
	duration := totalFrames / fps

	if opts.SampleInterval <= 0 {
		opts.SampleInterval = 2.0
	}
	endSec := duration
	if opts.MaxSeconds > 0 && opts.MaxSeconds < duration {
		endSec = opts.MaxSeconds
	}

	log.Printf("ProcessVideo: '%s' %.1ffps, %.1f minutes, sampling every %.1fs",
		videoPath, fps, duration/60, opts.SampleInterval)

	tracker := NewTracker(cfg)

	frame := gocv.NewMat()
	defer frame.Close()

sampleLoop:
	for currentSec := 0.0; currentSec < endSec; currentSec += opts.SampleInterval {
		select {
		case <-ctx.Done():
			log.Printf("ProcessVideo: Cancelled after %d frames", tracker.FrameCount)
			break sampleLoop
		default:
		}

		cap.Set(gocv.VideoCapturePosFrames, float64(int(currentSec*fps)))
		if ok := cap.Read(&frame); !ok || frame.Empty() {
			break
		}

		reading, live := reader.ReadFrame(frame, opts.ReadStats)
		if !live {
			tracker.CountSkipped()
		} else {
			reading.Timestamp = currentSec
			tracker.Observe(reading)
		}

		if opts.Progress != nil {
			opts.Progress(currentSec / endSec)
		}
	}

	log.Printf("ProcessVideo: Done, %d frames, %d events, %d rejected readings",
		tracker.FrameCount, len(tracker.Events), tracker.Errors)

	return &Result{
		VideoPath:       videoPath,
		DurationSec:     duration,
		FramesProcessed: tracker.FrameCount,
		SampleInterval:  opts.SampleInterval,
		OCRErrors:       tracker.Errors,
		FinalScore:      FinalScore{Left: tracker.LastLeft, Right: tracker.LastRight},
		Events:          tracker.Events,
		Summary:         Summarize(tracker),
	}, nil
}
