// Package drowsiness contains the per-frame drowsiness detection core.
//
// It turns ordered eye landmarks into an eye aspect ratio (EAR), smooths the
// ratio with an exponential moving average and feeds it to a Machine that
// debounces closed eyes into Awake, EyesClosing and Alarming phases.
// Everything here is pure or internally stateful; side effects live with the
// callers that consume a Transition.
package drowsiness
