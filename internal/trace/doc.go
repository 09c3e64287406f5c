// Package trace reads recorded face detections from YAML files and replays
// them as monitor frames.
//
// A trace lists frames in capture order. Each frame carries either an
// absolute timestamp or an offset from the trace start, an optional image
// path relative to the trace file and the faces detected in it. A face holds
// either the 68 landmarks of the iBUG layout or the six points of each eye.
package trace
