package main

import "github.com/StinkyLord/sbomconv/cmd"

func main() {
	cmd.Execute()
}
