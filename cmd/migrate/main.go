// Command migrate runs schema operations for the Warbler database.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"warbler/internal/config"
	"warbler/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate <auto|status>")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Open(database.Dialector(cfg))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(flag.Arg(0))) {
	case "auto":
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("automigrate failed: %w", err)
		}
		log.Println("automigrations applied")
	case "status":
		status, err := database.SchemaStatus(db)
		if err != nil {
			return fmt.Errorf("schema status failed: %w", err)
		}
		for _, s := range status {
			log.Printf("%-16s exists=%t", s.Table, s.Exists)
		}
	default:
		return usage()
	}
	return nil
}
