// Command livesite serves the live showcase site.
package main

import (
	"log"

	"github.com/rajcreationz/livesite/internal/application/startup"
)

func main() {
	if err := startup.Initialize(); err != nil {
		log.Fatalf("Application startup failed: %v", err)
	}

	log.Println("Application has shut down gracefully.")
}
