// Package overlay draws warning marks on frame images with OpenCV.
package overlay

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"

	"github.com/oshokin/drowsiness-alarm/internal/service/monitor"
)

const (
	// labelLift raises the label above the eye box, in pixels.
	labelLift = 10
	// minBaseline keeps the label inside the image.
	minBaseline = 30
	fontScale   = 1.0
	thickness   = 2
	dirPerm     = 0o750
)

var (
	// warningColor is the label color; gocv converts it to BGR.
	warningColor = color.RGBA{R: 255, A: 255}

	// errNoImage is returned for frames without an image.
	errNoImage = errors.New("frame has no image")
	// errEmptyImage is returned when OpenCV cannot decode the image.
	errEmptyImage = errors.New("image is empty or unreadable")
	// errWrite is returned when OpenCV cannot encode the output.
	errWrite = errors.New("image write failed")
)

// Renderer writes annotated copies of frame images into a directory.
type Renderer struct {
	outputDir string
}

// NewRenderer creates the output directory if needed.
func NewRenderer(outputDir string) (*Renderer, error) {
	if err := os.MkdirAll(outputDir, dirPerm); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	return &Renderer{
		outputDir: outputDir,
	}, nil
}

// Render draws the frame's marks on its image and returns the written path.
func (r *Renderer) Render(frame *monitor.Frame) (string, error) {
	if frame.ImagePath == "" {
		return "", errNoImage
	}

	img := gocv.IMRead(frame.ImagePath, gocv.IMReadColor)
	defer img.Close()

	if img.Empty() {
		return "", fmt.Errorf("%s: %w", frame.ImagePath, errEmptyImage)
	}

	for _, mark := range frame.Marks {
		err := gocv.PutText(&img, mark.Label, labelOrigin(mark), gocv.FontHersheySimplex, fontScale, warningColor, thickness)
		if err != nil {
			return "", fmt.Errorf("draw %s: %w", mark.SubjectID, err)
		}
	}

	path := r.OutputPath(frame)
	if !gocv.IMWrite(path, img) {
		return "", fmt.Errorf("%s: %w", path, errWrite)
	}

	return path, nil
}

// OutputPath returns where the annotated frame is written.
// The name is the zero-padded frame index with the source extension.
func (r *Renderer) OutputPath(frame *monitor.Frame) string {
	ext := filepath.Ext(frame.ImagePath)
	if ext == "" {
		ext = ".png"
	}

	return filepath.Join(r.outputDir, fmt.Sprintf("%06d%s", frame.Index, ext))
}

// labelOrigin places the label baseline just above the eye box.
func labelOrigin(mark monitor.Mark) image.Point {
	return image.Pt(
		max(int(mark.At.X), 0),
		max(int(mark.At.Y)-labelLift, minBaseline),
	)
}
