package main

import (
	"bytes"
	"flag"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/ekuzmina/foodgram-go/data"
	"github.com/ekuzmina/foodgram-go/internal/config"
	"github.com/ekuzmina/foodgram-go/internal/database"
	"github.com/ekuzmina/foodgram-go/internal/services"
)

// Seeds the ingredient catalog from a JSON or CSV file. Without --path the
// embedded starter catalog is loaded. Safe to run repeatedly.
func main() {
	format := flag.String("format", "json", "input data format: json or csv")
	path := flag.String("path", "", "path to the data file (embedded catalog when empty)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	var reader io.Reader
	if *path == "" {
		if *format != "json" {
			log.Fatal("embedded catalog is JSON; pass --path for csv input")
		}
		reader = bytes.NewReader(data.IngredientsJSON)
	} else {
		f, err := os.Open(*path)
		if err != nil {
			log.Fatalf("Failed to open %s: %v", *path, err)
		}
		defer f.Close()
		reader = f
	}

	var count int
	switch *format {
	case "json":
		count, err = services.LoadIngredientsJSON(db, reader)
	case "csv":
		count, err = services.LoadIngredientsCSV(db, reader)
	default:
		log.Fatalf("Unknown format %q", *format)
	}
	if err != nil {
		log.Fatalf("Failed to load ingredients: %v", err)
	}

	log.Printf("Loaded %d ingredients", count)
}
