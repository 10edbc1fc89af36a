package ocr

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
)

//Page segmentation modes passed to the underlying Tesseract client
const (
	PSMSingleLine = int(gosseract.PSM_SINGLE_LINE)
	PSMSingleWord = int(gosseract.PSM_SINGLE_WORD)
)

//Word is a single OCR hit: recognized text, its bounding box in the input
//image and a confidence normalized to 0..1
type Word struct {
	Text       string
	Box        image.Rectangle
	Confidence float64
}

//Engine wraps one Tesseract client. The model is expensive to initialize, so
//the host constructs one Engine at startup and passes it by reference to
//everything that reads frames. Tesseract clients are not documented as thread
//safe, so every call is serialized behind a mutex.
type Engine struct {
	mu     sync.Mutex
	client *gosseract.Client
}

//NewEngine constructs the process-wide OCR engine. Caller owns the lifecycle
//and must Close it when done.
func NewEngine() *Engine {
	return &Engine{client: gosseract.NewClient()}
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.client.Close()
}

//Words runs OCR over given image patch and returns every recognized word with
//it's bounding box and confidence. An empty whitelist means no character
//restriction.
func (e *Engine) Words(img gocv.Mat, whitelist string, psm int) ([]Word, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.setImage(img, whitelist, psm); err != nil {
		return nil, err
	}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("ocr.Words: Error, got '%v'", err)
	}

	words := make([]Word, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, Word{
			Text:       strings.TrimSpace(b.Word),
			Box:        b.Box,
			Confidence: b.Confidence / 100.0,
		})
	}

	return words, nil
}

//Text runs OCR over given image patch and returns the whole recognized string,
//trimmed.
func (e *Engine) Text(img gocv.Mat, whitelist string, psm int) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.setImage(img, whitelist, psm); err != nil {
		return "", err
	}

	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr.Text: Error, got '%v'", err)
	}

	return strings.TrimSpace(text), nil
}

func (e *Engine) setImage(img gocv.Mat, whitelist string, psm int) error {
	buf, err := gocv.IMEncode(gocv.PNGFileExt, img)
	if err != nil {
		return fmt.Errorf("ocr: Could not encode image, got '%v'", err)
	}

	if err := e.client.SetImageFromBytes(buf); err != nil {
		return fmt.Errorf("ocr: Could not set image, got '%v'", err)
	}

	if err := e.client.SetWhitelist(whitelist); err != nil {
		return fmt.Errorf("ocr: Could not set whitelist, got '%v'", err)
	}

	if err := e.client.SetPageSegMode(gosseract.PageSegMode(psm)); err != nil {
		return fmt.Errorf("ocr: Could not set page segmentation mode, got '%v'", err)
	}

	return nil
}
