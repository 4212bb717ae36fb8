package bootstrap

import (
	"log"

	"github.com/Mathumitha-create/grievance-cell/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Grievance{},
	)
}

// SeedAdminUser creates a development admin account. The email carries the
// "admin" cue so lexical role derivation agrees with the stored role.
func SeedAdminUser(db *gorm.DB, emailDomain string) error {
	email := "admin@" + emailDomain

	var count int64
	if err := db.Model(&model.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	password := "admin123"
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	name := "Administrator"
	adminUser := model.User{
		Email:        email,
		DisplayName:  &name,
		PasswordHash: string(hashedPasswordBytes),
		Role:         model.RoleAdmin,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	log.Println("✅ Admin user seeded successfully")
	log.Printf("   Email: %s", email)
	log.Printf("   Password: %s", password)

	return nil
}
