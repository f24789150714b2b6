package model

import "gorm.io/gorm"

// AutoMigrate выполняет миграцию всех сущностей маркетплейса.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&ProviderProfile{},
		&CustomerProfile{},
		&Category{},
		&Location{},
		&Service{},
		&Booking{},
		&Review{},
		&Notification{},
		&Event{},
	)
}
