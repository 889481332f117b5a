package main

import "github.com/MeKo-Tech/tokenprinter/cmd/tokenprinter/cmd"

func main() {
	cmd.Execute()
}
