package main

import "github.com/maltedev/wheel-catalog-scraper/cmd/wheelscrape/commands"

func main() {
	commands.Execute()
}
