package main

import "github.com/Alturino/gearshare/cmd"

func main() {
	cmd.Start()
}
