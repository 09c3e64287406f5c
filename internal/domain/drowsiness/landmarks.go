package drowsiness

import (
	"errors"
	"fmt"
)

const (
	// EyePoints is the number of ordered landmarks describing one eye.
	EyePoints = 6
	// FacePoints is the number of landmarks in the iBUG 68-point layout.
	FacePoints = 68

	// leftEyeStart is the first left-eye index in the 68-point layout.
	leftEyeStart = 36
	// rightEyeStart is the first right-eye index in the 68-point layout.
	rightEyeStart = 42
)

// ErrLandmarkCount is returned when a landmark set has an unexpected size.
var ErrLandmarkCount = errors.New("unexpected landmark count")

// Point is a 2-D landmark position in pixel coordinates.
type Point struct {
	X float64
	Y float64
}

// EyeLandmarks holds the six ordered points of one eye.
// Points 0 and 3 are the horizontal corners, 1 and 2 the upper lid,
// 4 and 5 the lower lid.
type EyeLandmarks [EyePoints]Point

// FaceLandmarks holds both eyes of one detected face.
type FaceLandmarks struct {
	Left  EyeLandmarks
	Right EyeLandmarks
}

// EyesFromFace extracts both eyes from a full 68-point landmark set.
func EyesFromFace(points []Point) (FaceLandmarks, error) {
	var face FaceLandmarks

	if len(points) != FacePoints {
		return face, fmt.Errorf("face has %d points, want %d: %w", len(points), FacePoints, ErrLandmarkCount)
	}

	copy(face.Left[:], points[leftEyeStart:leftEyeStart+EyePoints])
	copy(face.Right[:], points[rightEyeStart:rightEyeStart+EyePoints])

	return face, nil
}

// EyesFromPoints builds face landmarks from two separate six-point eyes.
func EyesFromPoints(left, right []Point) (FaceLandmarks, error) {
	var face FaceLandmarks

	if len(left) != EyePoints || len(right) != EyePoints {
		return face, fmt.Errorf(
			"eyes have %d and %d points, want %d each: %w",
			len(left), len(right), EyePoints, ErrLandmarkCount,
		)
	}

	copy(face.Left[:], left)
	copy(face.Right[:], right)

	return face, nil
}

// Anchor returns the top-left corner of the box spanning both eyes.
func (f *FaceLandmarks) Anchor() Point {
	anchor := f.Left[0]

	for _, eye := range []*EyeLandmarks{&f.Left, &f.Right} {
		for _, p := range eye {
			anchor.X = min(anchor.X, p.X)
			anchor.Y = min(anchor.Y, p.Y)
		}
	}

	return anchor
}
