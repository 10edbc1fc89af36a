package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/usab-esports/game-tracker/pkg/clip"
	"github.com/usab-esports/game-tracker/pkg/hud"
	"github.com/usab-esports/game-tracker/pkg/ocr"
	"github.com/usab-esports/game-tracker/pkg/store"
	"github.com/usab-esports/game-tracker/pkg/track"
	"github.com/usab-esports/game-tracker/pkg/utils"
	"gocv.io/x/gocv"
)

//Server holds the long-lived collaborators the handlers share: the OCR engine
//(constructed once, expensive), the game store, the opponent scouting dossier
//and the HUD calibration.
type Server struct {
	OCR     *ocr.Engine
	Games   *store.Store
	Scout   *store.ScoutStore
	Regions hud.RegionMap
}

//SetRouter builds the dashboard-facing API
func (s *Server) SetRouter() *gin.Engine {
	r := gin.Default()

	apiRoutes := r.Group("/api")

	apiRoutes.GET("/Recordings", func(ctx *gin.Context) {
		if names, err := utils.ListDir(viper.GetString("directory.source")); err != nil {
			ctx.Status(http.StatusInternalServerError)
		} else {
			ctx.JSON(http.StatusOK, names)
		}
	})

	apiRoutes.POST("/Upload", s.upload)
	apiRoutes.POST("/Track", s.startTracking)
	apiRoutes.GET("/Result", s.trackingResult)
	apiRoutes.POST("/ExtractClips", s.extractClips)
	apiRoutes.GET("/Clips", s.listClips)
	apiRoutes.GET("/Play", s.play)
	apiRoutes.GET("/CalibrationFrame", s.calibrationFrame)

	apiRoutes.GET("/Pending", func(ctx *gin.Context) {
		if pending, err := s.Games.LoadPending(); err != nil {
			ctx.Status(http.StatusInternalServerError)
		} else {
			ctx.JSON(http.StatusOK, pending)
		}
	})
	apiRoutes.POST("/Pending", s.addPending)
	apiRoutes.POST("/Approve", s.approve)
	apiRoutes.POST("/Reject", s.reject)

	apiRoutes.GET("/Scouting", func(ctx *gin.Context) {
		if dossier, err := s.Scout.Load(); err != nil {
			ctx.Status(http.StatusInternalServerError)
		} else {
			ctx.JSON(http.StatusOK, dossier)
		}
	})
	apiRoutes.POST("/Scouting", s.addScoutGame)
	apiRoutes.POST("/ScoutApprove", s.approveScoutGame)
	apiRoutes.POST("/ScoutReject", s.rejectScoutGame)

	return r
}

func (s *Server) upload(ctx *gin.Context) {
	file, fHeader, err := ctx.Request.FormFile("video")
	if err != nil {
		ctx.Status(http.StatusInternalServerError)
		return
	}
	defer file.Close()

	if existNames, err := utils.ListDir(viper.GetString("directory.source")); err != nil {
		ctx.Status(http.StatusInternalServerError)
		return
	} else if utils.InSlice(fHeader.Filename, existNames) {
		ctx.Status(http.StatusNotAcceptable)
		return
	}

	log.Printf("api/Upload: Received new file: name - '%s', size - %v Bytes", fHeader.Filename, fHeader.Size)

	out, err := os.Create(path.Join(viper.GetString("directory.source"), fHeader.Filename))
	if err != nil {
		log.Printf("api/Upload: Could not create file, got '%v'", err)
		ctx.Status(http.StatusInternalServerError)
		return
	}
	defer out.Close()

	if _, err := out.ReadFrom(file); err != nil {
		log.Printf("api/Upload: Could not write '%s', got '%v'", out.Name(), err)
		ctx.Status(http.StatusInternalServerError)
		return
	}

	ctx.Status(http.StatusOK)
}

//startTracking kicks off a full processing pass in the background and
//returns immediately; the dashboard polls /Result for the output
func (s *Server) startTracking(ctx *gin.Context) {
	videoName := ctx.Query("name")
	if videoName == "" {
		ctx.Status(http.StatusNotAcceptable)
		return
	}

	videoPath := path.Join(viper.GetString("directory.source"), videoName)
	if _, err := os.Stat(videoPath); err != nil {
		ctx.Status(http.StatusNotFound)
		return
	}

	opts := track.Options{
		SampleInterval: queryFloat(ctx, "interval", viper.GetFloat64("video.sample_interval")),
		MaxSeconds:     queryFloat(ctx, "max_seconds", viper.GetFloat64("video.max_seconds")),
		ReadStats:      queryBool(ctx, "stats", viper.GetBool("video.read_stats")),
	}

	go func() {
		reader := hud.NewReader(s.OCR, s.Regions)
		result, err := track.ProcessVideo(context.Background(), videoPath, reader, trackerConfig(), opts)
		if err != nil {
			log.Printf("api/Track: Error processing '%s', got '%v'", videoName, err)
			return
		}

		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Printf("api/Track: Could not encode result, got '%v'", err)
			return
		}

		outPath := resultPath(videoName)
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			log.Printf("api/Track: Could not write '%s', got '%v'", outPath, err)
		}
	}()

	ctx.Status(http.StatusAccepted)
}

func (s *Server) trackingResult(ctx *gin.Context) {
	videoName := ctx.Query("name")
	if videoName == "" {
		ctx.Status(http.StatusNotAcceptable)
		return
	}

	data, err := os.ReadFile(resultPath(videoName))
	if err != nil {
		if os.IsNotExist(err) {
			ctx.Status(http.StatusNotFound)
		} else {
			ctx.Status(http.StatusInternalServerError)
		}
		return
	}

	ctx.Data(http.StatusOK, "application/json", data)
}

func (s *Server) extractClips(ctx *gin.Context) {
	videoName := ctx.Query("name")
	if videoName == "" {
		ctx.Status(http.StatusNotAcceptable)
		return
	}

	side := ctx.Query("side")
	if side != "left" && side != "right" && side != "both" {
		ctx.Status(http.StatusNotAcceptable)
		return
	}

	data, err := os.ReadFile(resultPath(videoName))
	if err != nil {
		ctx.Status(http.StatusNotFound)
		return
	}

	var result track.Result
	if err := json.Unmarshal(data, &result); err != nil {
		log.Printf("api/ExtractClips: Could not parse result, got '%v'", err)
		ctx.Status(http.StatusInternalServerError)
		return
	}

	extractor := &clip.Extractor{
		BeforeSec: viper.GetFloat64("clip.before_sec"),
		AfterSec:  viper.GetFloat64("clip.after_sec"),
		Workers:   viper.GetInt("clip.workers"),
	}

	outputDir := path.Join(viper.GetString("directory.clips"), baseName(videoName), side)
	records, err := extractor.Batch(result.VideoPath, result.Events, side, outputDir, nil)
	if err != nil {
		log.Printf("api/ExtractClips: Error, got '%v'", err)
		ctx.Status(http.StatusInternalServerError)
		return
	}

	ctx.JSON(http.StatusOK, records)
}

func (s *Server) listClips(ctx *gin.Context) {
	videoName := ctx.Query("name")
	side := ctx.Query("side")
	if videoName == "" || side == "" {
		ctx.Status(http.StatusNotAcceptable)
		return
	}

	names, err := utils.ListDir(path.Join(viper.GetString("directory.clips"), baseName(videoName), side))
	if err != nil {
		ctx.JSON(http.StatusOK, []string{})
		return
	}

	ctx.JSON(http.StatusOK, names)
}

func (s *Server) play(ctx *gin.Context) {
	videoName := ctx.Query("name")
	if videoName == "" {
		ctx.Status(http.StatusNotAcceptable)
		return
	}

	var videoPath string
	if clipName := ctx.Query("clip"); clipName != "" {
		side := ctx.Query("side")
		videoPath = path.Join(viper.GetString("directory.clips"), baseName(videoName), side, clipName)
	} else {
		videoPath = path.Join(viper.GetString("directory.source"), videoName)
	}

	if _, err := os.Stat(videoPath); err != nil {
		if os.IsNotExist(err) {
			ctx.Status(http.StatusNotFound)
		} else {
			ctx.Status(http.StatusInternalServerError)
		}
		return
	}

	ctx.Header("Content-Type", "video/mp4")
	http.ServeFile(ctx.Writer, ctx.Request, videoPath)
}

//calibrationFrame grabs one frame, draws the region map over it and returns
//it as PNG so an operator can check the HUD calibration against a capture
func (s *Server) calibrationFrame(ctx *gin.Context) {
	videoName := ctx.Query("name")
	if videoName == "" {
		ctx.Status(http.StatusNotAcceptable)
		return
	}

	videoPath := path.Join(viper.GetString("directory.source"), videoName)
	cap, err := gocv.VideoCaptureFile(videoPath)
	if err != nil {
		ctx.Status(http.StatusNotFound)
		return
	}
	defer cap.Close()

	if sec := queryFloat(ctx, "t", 0); sec > 0 {
		cap.Set(gocv.VideoCapturePosMsec, sec*1000)
	}

	frame := gocv.NewMat()
	defer frame.Close()
	if ok := cap.Read(&frame); !ok || frame.Empty() {
		ctx.Status(http.StatusInternalServerError)
		return
	}

	norm := gocv.NewMat()
	defer norm.Close()
	gocv.Resize(frame, &norm, s.Regions.Frame, 0, 0, gocv.InterpolationLinear)
	hud.AnnotateRegions(&norm, s.Regions)

	buf, err := gocv.IMEncode(gocv.PNGFileExt, norm)
	if err != nil {
		log.Printf("api/CalibrationFrame: Could not encode frame, got '%v'", err)
		ctx.Status(http.StatusInternalServerError)
		return
	}

	ctx.Data(http.StatusOK, "image/png", buf)
}

func (s *Server) addPending(ctx *gin.Context) {
	var game store.Game
	if err := ctx.BindJSON(&game); err != nil {
		ctx.Status(http.StatusNotAcceptable)
		return
	}

	if game.ID == "" {
		game = store.NewGameRecord(game.Opponent, game.Score.Us, game.Score.Them,
			game.Quarters.Us, game.Quarters.Them, game.Players, game.Screenshot, game.Date)
	}

	added, err := s.Games.AddPending(game)
	if err != nil {
		ctx.JSON(http.StatusNotAcceptable, gin.H{"error": err.Error()})
		return
	}
	if !added {
		ctx.JSON(http.StatusOK, gin.H{"skipped": true})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"id": game.ID})
}

func (s *Server) approve(ctx *gin.Context) {
	gameID := ctx.Query("id")
	if gameID == "" {
		ctx.Status(http.StatusNotAcceptable)
		return
	}

	//optional stat corrections applied before the game is approved
	var corrections struct {
		Players         []store.Player `json:"players"`
		OpponentPlayers []store.Player `json:"opponent_players"`
	}
	if ctx.Request.ContentLength > 0 {
		if err := ctx.BindJSON(&corrections); err != nil {
			ctx.Status(http.StatusNotAcceptable)
			return
		}
	}

	ok, err := s.Games.Approve(gameID, corrections.Players, corrections.OpponentPlayers)
	if err != nil {
		ctx.Status(http.StatusInternalServerError)
		return
	}
	if !ok {
		ctx.Status(http.StatusNotFound)
		return
	}

	ctx.Status(http.StatusOK)
}

func (s *Server) reject(ctx *gin.Context) {
	gameID := ctx.Query("id")
	if gameID == "" {
		ctx.Status(http.StatusNotAcceptable)
		return
	}

	ok, err := s.Games.Reject(gameID)
	if err != nil {
		ctx.Status(http.StatusInternalServerError)
		return
	}
	if !ok {
		ctx.Status(http.StatusNotFound)
		return
	}

	ctx.Status(http.StatusOK)
}

func (s *Server) addScoutGame(ctx *gin.Context) {
	var game store.ScoutGame
	if err := ctx.BindJSON(&game); err != nil {
		ctx.Status(http.StatusNotAcceptable)
		return
	}

	if game.ID == "" {
		game = store.NewScoutGame(game.OppScore, game.ScoutTeamWon, game.Players, game.Date)
	}

	if err := s.Scout.AddPending(game); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"id": game.ID})
}

func (s *Server) approveScoutGame(ctx *gin.Context) {
	gameID := ctx.Query("id")
	if gameID == "" {
		ctx.Status(http.StatusNotAcceptable)
		return
	}

	ok, err := s.Scout.Approve(gameID)
	if err != nil {
		ctx.Status(http.StatusInternalServerError)
		return
	}
	if !ok {
		ctx.Status(http.StatusNotFound)
		return
	}

	ctx.Status(http.StatusOK)
}

func (s *Server) rejectScoutGame(ctx *gin.Context) {
	gameID := ctx.Query("id")
	if gameID == "" {
		ctx.Status(http.StatusNotAcceptable)
		return
	}

	ok, err := s.Scout.Reject(gameID)
	if err != nil {
		ctx.Status(http.StatusInternalServerError)
		return
	}
	if !ok {
		ctx.Status(http.StatusNotFound)
		return
	}

	ctx.Status(http.StatusOK)
}

func trackerConfig() track.Config {
	cfg := track.DefaultConfig()
	if v := viper.GetInt("tracker.max_event_delta"); v > 0 {
		cfg.MaxEventDelta = v
	}
	if v := viper.GetInt("tracker.max_jump_delta"); v > 0 {
		cfg.MaxJumpDelta = v
	}
	if v := viper.GetInt("tracker.run_threshold"); v > 0 {
		cfg.RunThreshold = v
	}
	return cfg
}

func resultPath(videoName string) string {
	return path.Join(viper.GetString("directory.data"), baseName(videoName)+"_tracked.json")
}

func baseName(videoName string) string {
	return strings.TrimSuffix(videoName, path.Ext(videoName))
}

func queryFloat(ctx *gin.Context, key string, fallback float64) float64 {
	if raw := ctx.Query(key); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	}
	return fallback
}

func queryBool(ctx *gin.Context, key string, fallback bool) bool {
	if raw := ctx.Query(key); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			return v
		}
	}
	return fallback
}
