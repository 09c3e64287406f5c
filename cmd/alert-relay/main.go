package main

import "github.com/oshokin/drowsiness-alarm/cmd/alert-relay/cmd"

func main() {
	cmd.Execute()
}
