package main

import (
	"tweetharvest/cmd/tweetharvest/cmd"
)

func main() {
	cmd.Execute()
}
