package main

import (
	"github.com/JakeFAU/realtime-progress/cmd"
)

func main() {
	cmd.Execute()
}
