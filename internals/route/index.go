// file: internals/route/index.go
package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	housingRepo "dormitory_backend/internals/features/housing/repository"
	housingRoute "dormitory_backend/internals/features/housing/route"
	housingService "dormitory_backend/internals/features/housing/service"
	registryService "dormitory_backend/internals/features/registry/service"
)

var startTime time.Time

// NewHousingService merangkai repository housing + directory registry.
func NewHousingService(housingDB, registryDB *gorm.DB) *housingService.HousingService {
	return housingService.NewHousingService(
		housingRepo.NewHousingRepository(housingDB),
		registryService.NewStudentDirectory(registryDB),
		logrus.WithField("component", "housing"),
	)
}

func SetupRoutes(app *fiber.App, housingDB, registryDB *gorm.DB, svc *housingService.HousingService, allowedIPs []string) {
	startTime = time.Now()

	logrus.Info("[INFO] Setting up BaseRoutes...")
	BaseRoutes(app, housingDB, registryDB)

	logrus.Info("[INFO] Mounting Student routes...")
	housingRoute.StudentRoutes(app, svc)

	logrus.WithField("allowed_ips", len(allowedIPs)).Info("[INFO] Mounting Staff routes...")
	housingRoute.StaffRoutes(app, svc, allowedIPs)
}
