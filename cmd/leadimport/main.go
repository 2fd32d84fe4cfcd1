package main

import "github.com/JonMunkholm/leadboard/internal/cli"

func main() {
	cli.Execute()
}
