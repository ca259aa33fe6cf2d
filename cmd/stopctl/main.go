package main

import "github.com/MrJamesThe3rd/stoptracker/cmd/stopctl/cmd"

func main() {
	cmd.Execute()
}
