// Package sound plays an audio file with the operating system's player while
// at least one subject is alarming.
//
// The player is started on the first active subject and stopped when the
// last one clears. Players left behind by this process are reaped on Close.
package sound
