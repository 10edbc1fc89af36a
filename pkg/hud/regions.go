package hud

import "image"

//Span is an inclusive horizontal pixel window within a region crop
type Span struct {
	Min int
	Max int
}

//Contains reports whether x falls inside the span
func (s Span) Contains(x int) bool {
	return x > s.Min && x < s.Max
}

//RegionMap is the calibration data for one HUD layout: where each semantic
//region sits in the canonical frame and the thresholds that filter OCR noise
//out of it. All rectangles are in canonical-resolution coordinates; any
//source frame is rescaled to Frame before regions are cropped.
type RegionMap struct {
	Name  string
	Frame image.Point

	ScoreBar    image.Rectangle
	Clock       image.Rectangle
	ShotClock   image.Rectangle
	Quarter     image.Rectangle
	Liveness    image.Rectangle
	PlayerStats image.Rectangle

	//horizontal windows within the ScoreBar crop where each score digit lands
	LeftScore  Span
	RightScore Span

	//horizontal windows within the PlayerStats crop
	PointsSlot   Span
	ReboundsSlot Span
	AssistsSlot  Span

	//MinScoreConfidence is the floor (0..1) below which a score read is noise
	MinScoreConfidence float64
	//MaxScoreBoxWidth rejects wide boxes, which are clock digits bleeding
	//into the score pass rather than a real score
	MaxScoreBoxWidth int
	//MinStatConfidence is the floor for player stat overlay reads
	MinStatConfidence float64
	//LivenessCutoff is the mean grayscale brightness above which the frame is
	//a menu or cutscene rather than gameplay
	LivenessCutoff float64
}

//ProAm1080p is the region map for NBA 2K Pro-Am captures at 1920x1080
func ProAm1080p() RegionMap {
	return RegionMap{
		Name:  "proam-1080p",
		Frame: image.Pt(1920, 1080),

		ScoreBar:    image.Rect(30, 1005, 800, 1065),
		Clock:       image.Rect(720, 1005, 820, 1060),
		ShotClock:   image.Rect(825, 1005, 875, 1060),
		Quarter:     image.Rect(878, 1005, 950, 1060),
		Liveness:    image.Rect(700, 1005, 820, 1065),
		PlayerStats: image.Rect(1570, 50, 1900, 80),

		LeftScore:  Span{Min: 190, Max: 310},
		RightScore: Span{Min: 430, Max: 580},

		PointsSlot:   Span{Min: 20, Max: 120},
		ReboundsSlot: Span{Min: 120, Max: 200},
		AssistsSlot:  Span{Min: 200, Max: 280},

		MinScoreConfidence: 0.25,
		MaxScoreBoxWidth:   150,
		MinStatConfidence:  0.10,
		LivenessCutoff:     120,
	}
}

var layouts = map[string]func() RegionMap{
	"proam-1080p": ProAm1080p,
}

//Layout returns the region map registered under given name
func Layout(name string) (RegionMap, bool) {
	f, ok := layouts[name]
	if !ok {
		return RegionMap{}, false
	}
	return f(), true
}
