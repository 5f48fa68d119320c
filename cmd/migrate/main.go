// Command migrate applies or rolls back the schema migrations.
//
//	migrate up
//	migrate down [steps]
//	migrate version
package main

import (
	"log"
	"os"
	"strconv"

	"github.com/iliyamo/travel-booking/internal/config"
	"github.com/iliyamo/travel-booking/internal/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate up|down [steps]|version")
	}
	cfg := config.Load()

	switch os.Args[1] {
	case "up":
		if err := database.Migrate(cfg); err != nil {
			log.Fatalf("migrate up: %v", err)
		}
		log.Print("migrations applied")
	case "down":
		steps := 1
		if len(os.Args) > 2 {
			n, err := strconv.Atoi(os.Args[2])
			if err != nil || n < 1 {
				log.Fatalf("invalid steps %q", os.Args[2])
			}
			steps = n
		}
		if err := database.MigrateDown(cfg, steps); err != nil {
			log.Fatalf("migrate down: %v", err)
		}
		log.Printf("rolled back %d step(s)", steps)
	case "version":
		v, dirty, err := database.Version(cfg)
		if err != nil {
			log.Fatalf("version: %v", err)
		}
		log.Printf("version=%d dirty=%v", v, dirty)
	default:
		log.Fatalf("unknown command %q", os.Args[1])
	}
}
