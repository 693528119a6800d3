package main

import "cal-sync/cmd"

func main() {
	cmd.Execute()
}
