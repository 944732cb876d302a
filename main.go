package main

import (
	"log"

	"snapwin-admin/cmd"
)

func main() {
	if err := cmd.Start(); err != nil {
		log.Fatal(err)
	}
}
