package main

import "github.com/francois-poidevin/astrotracker/cli/cmd"

func main() {
	cmd.Execute()
}
