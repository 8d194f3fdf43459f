package main

import "github.com/joshdurbin/fitness-wrapped/internal/cmd"

func main() {
	cmd.Execute()
}
