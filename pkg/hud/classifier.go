package hud

import "gocv.io/x/gocv"

//liveNormalized checks the mean grayscale brightness of the liveness strip in
//an already canonical-resolution frame. The gameplay HUD renders dark there;
//menus and cutscenes are brighter.
func (r *Reader) liveNormalized(frame gocv.Mat) bool {
	strip := frame.Region(r.rm.Liveness)
	defer strip.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(strip, &gray, gocv.ColorBGRToGray)

	return gray.Mean().Val1 < r.rm.LivenessCutoff
}
