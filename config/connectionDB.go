package config

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"dacsanviet/internal/entity"
)

func ConnectionDb(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // Disable prepared statements completely
	}), &gorm.Config{
		PrepareStmt: false,
	})
	if err != nil {
		log.Printf("error connect to database %s", err)
	}

	fmt.Println("success connect to db")
	return db
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Session{},
		&entity.OTPCode{},
		&entity.Category{},
		&entity.Product{},
	)
}
