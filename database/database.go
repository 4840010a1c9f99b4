package database

import (
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	config "github.com/studiobook/studiobook/configs"
	"github.com/studiobook/studiobook/models"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.Membership{},
		&models.ClassTemplate{},
		&models.ClassInstance{},
		&models.Package{},
		&models.Payment{},
		&models.UserPackage{},
		&models.Booking{},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	fmt.Println("✅ Database migration successful")
}

func SeedSuperAdmin() {
	adminEmail := config.Config("SUPERADMIN_EMAIL")
	adminPassword := config.Config("SUPERADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		log.Println("Superadmin credentials not configured, skipping seed.")
		return
	}

	var count int64
	if err := DB.Model(&models.User{}).Where("email = ?", adminEmail).Count(&count).Error; err != nil {
		log.Fatalf("🔥 Failed to check for superadmin user: %v", err)
		return
	}
	if count > 0 {
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash superadmin password: %v", err)
		return
	}

	admin := models.User{
		Name:     config.Config("SUPERADMIN_NAME"),
		Email:    adminEmail,
		Password: string(hashedPassword),
		Role:     "superadmin",
	}
	if err := DB.Create(&admin).Error; err != nil {
		log.Fatalf("🔥 Failed to seed superadmin user: %v", err)
		return
	}

	log.Println("✅ Superadmin user seeded successfully")
}
