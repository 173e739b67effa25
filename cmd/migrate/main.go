package main

import (
	"embed"
	"flag"
	"fmt"
	"log"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/nhom11/attendance-api/pkg/config"
	"github.com/nhom11/attendance-api/pkg/database"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		return
	}
	command := args[0]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("failed to set goose dialect: %v", err)
	}

	switch command {
	case "up":
		if err := goose.Up(db.DB, "migrations"); err != nil {
			log.Fatalf("migration up failed: %v", err)
		}
		fmt.Println("migrations applied")
	case "down":
		if err := goose.Down(db.DB, "migrations"); err != nil {
			log.Fatalf("migration down failed: %v", err)
		}
		fmt.Println("last migration rolled back")
	case "status":
		if err := goose.Status(db.DB, "migrations"); err != nil {
			log.Fatalf("migration status failed: %v", err)
		}
	default:
		fmt.Printf("unknown command: %s\n", command)
		flag.Usage()
	}
}

func usage() {
	fmt.Println("usage: migrate [command]")
	fmt.Println("commands:")
	fmt.Println("  up      apply all pending migrations")
	fmt.Println("  down    roll back the last migration")
	fmt.Println("  status  show migration status")
}
