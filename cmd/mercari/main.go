package main

import (
	"log"

	"simplemercari/cmd/mercari/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		log.Fatal(err)
	}
}
