package main

import "github.com/oshokin/drowsiness-alarm/cmd/drowsy-monitor/cmd"

func main() {
	cmd.Execute()
}
