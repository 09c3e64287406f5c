package main

import "github.com/oshokin/drowsiness-alarm/cmd/alert-watcher/cmd"

func main() {
	cmd.Execute()
}
