package hud

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var annotateColor = color.RGBA{0, 255, 0, 0}
var annotateTextColor = color.RGBA{255, 255, 255, 0}

//AnnotateRegions draws the region map's rectangles and labels over a frame so
//an operator can verify the calibration against a real capture. The frame
//must already be at the map's canonical resolution.
func AnnotateRegions(frame *gocv.Mat, rm RegionMap) {
	regions := []struct {
		name string
		rect image.Rectangle
	}{
		{"score_bar", rm.ScoreBar},
		{"clock", rm.Clock},
		{"shot_clock", rm.ShotClock},
		{"quarter", rm.Quarter},
		{"liveness", rm.Liveness},
		{"player_stats", rm.PlayerStats},
	}

	for _, reg := range regions {
		gocv.Rectangle(frame, reg.rect, annotateColor, 2)

		labelPoint := image.Pt(reg.rect.Min.X, reg.rect.Min.Y-5)
		background := image.Rect(labelPoint.X, labelPoint.Y-15, labelPoint.X+9*len(reg.name), labelPoint.Y+5)
		gocv.Rectangle(frame, background, annotateColor, -1) //thickness -1 == filled rectangle
		gocv.PutText(frame, reg.name, labelPoint, gocv.FontHersheyPlain, 1, annotateTextColor, 1)
	}
}
