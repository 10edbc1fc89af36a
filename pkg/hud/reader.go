package hud

import (
	"image"
	"image/color"
	"log"
	"strconv"
	"strings"

	"github.com/usab-esports/game-tracker/pkg/ocr"
	"github.com/usab-esports/game-tracker/pkg/track"
	"gocv.io/x/gocv"
)

//upscale factor applied to the score bar before the digit OCR pass
const scoreScale = 2

//OCR is the digit/text recognition capability the reader depends on. Words
//returns per-word (text, bounding box, confidence) tuples, Text the whole
//recognized string. Implemented by ocr.Engine.
type OCR interface {
	Words(img gocv.Mat, whitelist string, psm int) ([]ocr.Word, error)
	Text(img gocv.Mat, whitelist string, psm int) (string, error)
}

//Reader extracts FrameReadings from raw video frames using the region map's
//calibration data. A region that yields nothing usable leaves the matching
//field at its no-reading state; the reader never fabricates a value.
type Reader struct {
	engine OCR
	rm     RegionMap
}

//NewReader wires a reader to a caller-owned OCR engine and one HUD layout
func NewReader(engine OCR, rm RegionMap) *Reader {
	return &Reader{engine: engine, rm: rm}
}

//Regions returns the calibration data this reader crops with
func (r *Reader) Regions() RegionMap {
	return r.rm
}

//ReadFrame decodes every HUD region of one frame. The frame is rescaled to
//the canonical resolution first so the region map applies to any source size.
//Returns false when the frame is not live gameplay; no regions are read then.
func (r *Reader) ReadFrame(frame gocv.Mat, readStats bool) (track.FrameReading, bool) {
	norm, owned := r.normalize(frame)
	if owned {
		defer norm.Close()
	}

	if !r.liveNormalized(norm) {
		return track.FrameReading{}, false
	}

	reading := track.FrameReading{
		Clock:     r.readLine(norm, r.rm.Clock, "0123456789:.", ocr.PSMSingleLine),
		ShotClock: r.readLine(norm, r.rm.ShotClock, "0123456789", ocr.PSMSingleWord),
		Quarter:   r.readQuarter(norm),
	}
	reading.Left, reading.Right = r.readScores(norm)

	if readStats {
		r.readPlayerStats(norm, &reading)
	}

	return reading, true
}

//IsLive reports whether the frame shows live gameplay (HUD visible)
func (r *Reader) IsLive(frame gocv.Mat) bool {
	norm, owned := r.normalize(frame)
	if owned {
		defer norm.Close()
	}
	return r.liveNormalized(norm)
}

func (r *Reader) normalize(frame gocv.Mat) (gocv.Mat, bool) {
	if frame.Cols() == r.rm.Frame.X && frame.Rows() == r.rm.Frame.Y {
		return frame, false
	}

	norm := gocv.NewMat()
	gocv.Resize(frame, &norm, r.rm.Frame, 0, 0, gocv.InterpolationLinear)
	return norm, true
}

//readLine runs the clock-style pipeline over a region: upsample, grayscale,
//binary threshold, pad, whitelist OCR
func (r *Reader) readLine(frame gocv.Mat, region image.Rectangle, whitelist string, psm int) string {
	crop := frame.Region(region)
	defer crop.Close()

	big := gocv.NewMat()
	defer big.Close()
	gocv.Resize(crop, &big, image.Point{}, 3, 3, gocv.InterpolationCubic)

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(big, &gray, gocv.ColorBGRToGray)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(gray, &thresh, 180, 255, gocv.ThresholdBinary)

	padded := gocv.NewMat()
	defer padded.Close()
	gocv.CopyMakeBorder(thresh, &padded, 20, 20, 20, 20, gocv.BorderConstant, color.RGBA{})

	text, err := r.engine.Text(padded, whitelist, psm)
	if err != nil {
		log.Printf("readLine: Error, got '%v'", err)
		return ""
	}

	return text
}

//readQuarter isolates the quarter badge's yellow hue to strip background
//noise, falls back to a grayscale threshold pass when the mask reads short,
//then fuzzy-matches the text against the known labels
func (r *Reader) readQuarter(frame gocv.Mat) string {
	crop := frame.Region(r.rm.Quarter)
	defer crop.Close()

	big := gocv.NewMat()
	defer big.Close()
	gocv.Resize(crop, &big, image.Point{}, 3, 3, gocv.InterpolationCubic)

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(big, &hsv, gocv.ColorBGRToHSV)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.InRangeWithScalar(hsv, gocv.NewScalar(15, 60, 150, 0), gocv.NewScalar(45, 255, 255, 0), &mask)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(2, 2))
	defer kernel.Close()
	gocv.Dilate(mask, &mask, kernel)

	padded := gocv.NewMat()
	defer padded.Close()
	gocv.CopyMakeBorder(mask, &padded, 20, 20, 20, 20, gocv.BorderConstant, color.RGBA{})

	text, err := r.engine.Text(padded, "", ocr.PSMSingleLine)
	if err != nil {
		log.Printf("readQuarter: Error, got '%v'", err)
	}

	if len(text) < 2 {
		gray := gocv.NewMat()
		defer gray.Close()
		gocv.CvtColor(big, &gray, gocv.ColorBGRToGray)

		thresh := gocv.NewMat()
		defer thresh.Close()
		gocv.Threshold(gray, &thresh, 180, 255, gocv.ThresholdBinary)

		padded2 := gocv.NewMat()
		defer padded2.Close()
		gocv.CopyMakeBorder(thresh, &padded2, 20, 20, 20, 20, gocv.BorderConstant, color.RGBA{})

		if text2, err := r.engine.Text(padded2, "", ocr.PSMSingleLine); err == nil && len(text2) > len(text) {
			text = text2
		}
	}

	return NormalizeQuarter(text)
}

//readScores runs one digit OCR pass over the whole score bar and buckets the
//hits into the left and right slots by horizontal position
func (r *Reader) readScores(frame gocv.Mat) (track.ScoreRead, track.ScoreRead) {
	crop := frame.Region(r.rm.ScoreBar)
	defer crop.Close()

	big := gocv.NewMat()
	defer big.Close()
	gocv.Resize(crop, &big, image.Point{}, scoreScale, scoreScale, gocv.InterpolationCubic)

	words, err := r.engine.Words(big, "0123456789", ocr.PSMSingleLine)
	if err != nil {
		log.Printf("readScores: Error, got '%v'", err)
		return track.NoReading(), track.NoReading()
	}

	//boxes come back in upsampled coordinates, the slot windows are defined
	//over the raw crop
	for i := range words {
		words[i].Box = image.Rect(
			words[i].Box.Min.X/scoreScale, words[i].Box.Min.Y/scoreScale,
			words[i].Box.Max.X/scoreScale, words[i].Box.Max.Y/scoreScale)
	}

	return bucketScores(words, r.rm)
}

//bucketScores applies the score noise filters and keeps the highest
//confidence surviving candidate per slot
func bucketScores(words []ocr.Word, rm RegionMap) (left, right track.ScoreRead) {
	var leftConf, rightConf float64

	for _, w := range words {
		if !isDigits(w.Text) || len(w.Text) > 2 || w.Confidence < rm.MinScoreConfidence {
			continue
		}

		val, err := strconv.Atoi(w.Text)
		if err != nil || val < 0 || val > 99 {
			continue
		}

		//wide boxes are the clock bleeding into this pass, not a score digit
		if w.Box.Dx() > rm.MaxScoreBoxWidth {
			continue
		}

		center := (w.Box.Min.X + w.Box.Max.X) / 2
		switch {
		case rm.LeftScore.Contains(center) && w.Confidence > leftConf:
			left = track.Digits(val)
			leftConf = w.Confidence
		case rm.RightScore.Contains(center) && w.Confidence > rightConf:
			right = track.Digits(val)
			rightConf = w.Confidence
		}
	}

	return left, right
}

//readPlayerStats buckets the stat overlay row into points/rebounds/assists
//slots plus a percent slot for the shooting string, with a whole-region
//fallback pass when the bucketed pass finds nothing
func (r *Reader) readPlayerStats(frame gocv.Mat, reading *track.FrameReading) {
	crop := frame.Region(r.rm.PlayerStats)
	defer crop.Close()

	words, err := r.engine.Words(crop, "0123456789%", ocr.PSMSingleLine)
	if err != nil {
		log.Printf("readPlayerStats: Error, got '%v'", err)
		words = nil
	}

	var ptsConf, rebConf, astConf, fgConf float64
	for _, w := range words {
		if w.Confidence < r.rm.MinStatConfidence {
			continue
		}

		center := (w.Box.Min.X + w.Box.Max.X) / 2

		if strings.Contains(w.Text, "%") {
			if w.Confidence > fgConf {
				reading.PlayerFG = w.Text
				fgConf = w.Confidence
			}
			continue
		}

		if !isDigits(w.Text) {
			continue
		}
		val, err := strconv.Atoi(w.Text)
		if err != nil || val > 999 {
			continue
		}

		switch {
		case r.rm.PointsSlot.Contains(center) && w.Confidence > ptsConf:
			reading.PlayerPoints = track.Digits(val)
			ptsConf = w.Confidence
		case r.rm.ReboundsSlot.Contains(center) && w.Confidence > rebConf:
			reading.PlayerRebounds = track.Digits(val)
			rebConf = w.Confidence
		case r.rm.AssistsSlot.Contains(center) && w.Confidence > astConf:
			reading.PlayerAssists = track.Digits(val)
			astConf = w.Confidence
		}
	}

	if reading.PlayerPoints.Valid || reading.PlayerRebounds.Valid || reading.PlayerAssists.Valid {
		return
	}

	//fallback: one whole-region pass parsed as whitespace-separated tokens
	big := gocv.NewMat()
	defer big.Close()
	gocv.Resize(crop, &big, image.Point{}, 3, 3, gocv.InterpolationCubic)

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(big, &gray, gocv.ColorBGRToGray)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(gray, &thresh, 150, 255, gocv.ThresholdBinary)

	padded := gocv.NewMat()
	defer padded.Close()
	gocv.CopyMakeBorder(thresh, &padded, 20, 20, 20, 20, gocv.BorderConstant, color.RGBA{})

	raw, err := r.engine.Text(padded, "0123456789%", ocr.PSMSingleLine)
	if err != nil {
		log.Printf("readPlayerStats: Fallback error, got '%v'", err)
		return
	}

	parts := strings.Fields(raw)
	if len(parts) >= 3 {
		if pts, err := strconv.Atoi(parts[0]); err == nil {
			reading.PlayerPoints = track.Digits(pts)
		}
		if reb, err := strconv.Atoi(parts[1]); err == nil {
			reading.PlayerRebounds = track.Digits(reb)
		}
		if ast, err := strconv.Atoi(parts[2]); err == nil {
			reading.PlayerAssists = track.Digits(ast)
		}
	}
	if len(parts) >= 4 {
		reading.PlayerFG = parts[3]
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
