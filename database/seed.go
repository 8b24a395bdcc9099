package database

import (
	"fmt"
	"log"
	"os"

	"github.com/cityforge/cityforge/model"
	"github.com/cityforge/cityforge/utils/auth"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("Starting database seeding...")

	if err := s.SeedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := s.SeedForumCategories(); err != nil {
		return fmt.Errorf("failed to seed forum categories: %w", err)
	}

	if err := s.SeedSiteSettings(); err != nil {
		return fmt.Errorf("failed to seed site settings: %w", err)
	}

	log.Println("Database seeding completed successfully.")
	return nil
}

// SeedAdminUser creates the default admin user from ADMIN_EMAIL /
// ADMIN_PASSWORD; skipped when an admin already exists or the
// variables are unset.
func (s *Seeder) SeedAdminUser() error {
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping...")
		return nil
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		log.Println("ADMIN_EMAIL and ADMIN_PASSWORD not set, skipping admin user creation")
		return nil
	}

	passwordHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &model.User{
		Email:         adminEmail,
		PasswordHash:  passwordHash,
		FirstName:     "Site",
		LastName:      "Administrator",
		Role:          model.RoleAdmin,
		IsActive:      true,
		EmailVerified: true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("Created admin user: %s\n", admin.Email)
	return nil
}

// SeedForumCategories creates the default discussion categories
func (s *Seeder) SeedForumCategories() error {
	var count int64
	if err := s.db.Model(&model.ForumCategory{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Forum categories already exist, skipping...")
		return nil
	}

	var admin model.User
	if err := s.db.Where("role = ?", model.RoleAdmin).First(&admin).Error; err != nil {
		log.Println("No admin user found, skipping forum category seeding")
		return nil
	}

	categories := []model.ForumCategory{
		{Name: "General Discussion", Slug: "general-discussion", Description: "Town talk that fits nowhere else", DisplayOrder: 1, IsActive: true, CreatedBy: admin.ID},
		{Name: "Local Events", Slug: "local-events", Description: "Announcements and event planning", DisplayOrder: 2, IsActive: true, CreatedBy: admin.ID},
		{Name: "Recommendations", Slug: "recommendations", Description: "Ask for and share local business tips", DisplayOrder: 3, IsActive: true, CreatedBy: admin.ID},
	}

	if err := s.db.Create(&categories).Error; err != nil {
		return err
	}

	log.Printf("Created %d forum categories\n", len(categories))
	return nil
}

// SeedSiteSettings creates default site configuration entries
func (s *Seeder) SeedSiteSettings() error {
	var count int64
	if err := s.db.Model(&model.SiteSetting{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Site settings already exist, skipping...")
		return nil
	}

	settings := []model.SiteSetting{
		{Key: "site_title", Value: "CityForge", Description: "Site display title"},
		{Key: "welcome_message", Value: "Welcome to the community business directory", Description: "Home page banner text"},
		{Key: "submissions_enabled", Value: "true", Description: "Allow public business submissions"},
		{Key: "reviews_enabled", Value: "true", Description: "Allow business reviews"},
	}

	if err := s.db.Create(&settings).Error; err != nil {
		return err
	}

	log.Printf("Created %d site settings\n", len(settings))
	return nil
}
