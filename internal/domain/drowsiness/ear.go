package drowsiness

import "math"

// minHorizontalExtent is the smallest corner-to-corner distance treated as non-zero.
const minHorizontalExtent = 1e-9

// distance returns the Euclidean distance between two points.
func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// EyeAspectRatio computes (|p1-p5| + |p2-p4|) / (2 * |p0-p3|) for one eye.
// The second result is false when the eye corners coincide and the ratio is
// indeterminate; the returned value is 0 in that case.
func EyeAspectRatio(eye *EyeLandmarks) (float64, bool) {
	horizontal := distance(eye[0], eye[3])
	if horizontal < minHorizontalExtent {
		return 0, false
	}

	vertical := distance(eye[1], eye[5]) + distance(eye[2], eye[4])

	return vertical / (2 * horizontal), true
}

// FaceAspectRatio averages the aspect ratios of both eyes.
// A face is indeterminate when either eye is.
func FaceAspectRatio(face *FaceLandmarks) (float64, bool) {
	left, ok := EyeAspectRatio(&face.Left)
	if !ok {
		return 0, false
	}

	right, ok := EyeAspectRatio(&face.Right)
	if !ok {
		return 0, false
	}

	return (left + right) / 2, true
}
