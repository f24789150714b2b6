package main

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/Leganyst/service-marketplace/internal/auth"
	"github.com/Leganyst/service-marketplace/internal/config"
	"github.com/Leganyst/service-marketplace/internal/db"
	"github.com/Leganyst/service-marketplace/internal/httpapi"
	"github.com/Leganyst/service-marketplace/internal/model"
	"github.com/Leganyst/service-marketplace/internal/repository"
	"github.com/Leganyst/service-marketplace/internal/service"
)

func openDB(cfg *config.Config, log *slog.Logger, migrate bool) (*gorm.DB, error) {
	gormDB, err := db.NewGormDB(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}
	if migrate {
		if err := model.AutoMigrate(gormDB); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}
	return gormDB, nil
}

func closeDB(gormDB *gorm.DB, log *slog.Logger) {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("close db", "error", err)
	}
}

// newServices собирает репозитории и сервисы поверх одного *gorm.DB.
func newServices(gormDB *gorm.DB, cfg config.AuthConfig, observer service.TransitionObserver) httpapi.Services {
	users := repository.NewGormUserRepository(gormDB)
	providers := repository.NewGormProviderRepository(gormDB)
	customers := repository.NewGormCustomerRepository(gormDB)
	categories := repository.NewGormCategoryRepository(gormDB)
	locations := repository.NewGormLocationRepository(gormDB)
	services := repository.NewGormServiceRepository(gormDB)
	bookings := repository.NewGormBookingRepository(gormDB)
	events := repository.NewGormEventRepository(gormDB)
	reviews := repository.NewGormReviewRepository(gormDB)
	notifications := repository.NewGormNotificationRepository(gormDB)

	return httpapi.Services{
		Identity:      service.NewIdentityService(users, auth.NewPasswordHasher(cfg.BcryptCost), auth.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL)),
		Profiles:      service.NewProfileService(providers, customers, bookings, reviews),
		Categories:    service.NewCategoryService(categories, services, providers, bookings),
		Locations:     service.NewLocationService(locations),
		Catalog:       service.NewCatalogService(services, categories, providers, bookings),
		Bookings:      service.NewBookingService(bookings, events, services, providers, customers, notifications, observer),
		Reviews:       service.NewReviewService(reviews, services, bookings, customers, providers),
		Notifications: service.NewNotificationService(notifications, users),
		Analytics:     service.NewAnalyticsService(bookings, services, providers, users),
	}
}
