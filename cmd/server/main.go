package main

import "peopleops/internal/app/server"

func main() {
	server.Run()
}
