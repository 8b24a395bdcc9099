package main

import (
	"log"

	"github.com/cityforge/cityforge/config"
	"github.com/cityforge/cityforge/database"
	"gorm.io/gorm"
)

// Seeds the admin account, default forum categories, and site
// settings. Safe to run repeatedly; existing rows are left alone.
func main() {
	if err := config.LoadENV(); err != nil {
		log.Printf("Warning: could not load .env: %v", err)
	}

	store, err := database.StartGORM()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	seeder := database.NewSeeder(db)
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding complete")
}
