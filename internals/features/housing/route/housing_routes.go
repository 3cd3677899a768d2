package route

import (
	"github.com/gofiber/fiber/v2"

	"dormitory_backend/internals/features/housing/controller"
	"dormitory_backend/internals/features/housing/service"
	"dormitory_backend/internals/middlewares"
)

// StudentRoutes: endpoint publik untuk mahasiswa
func StudentRoutes(r fiber.Router, svc *service.HousingService) {
	ctrl := controller.NewStudentController(svc)

	g := r.Group("/student/applications", middlewares.StudentRateLimiter())
	g.Post("/", ctrl.SubmitApplication)
	g.Post("/status_by_details", ctrl.StatusByDetails)
}

// StaffRoutes: hanya untuk IP di allow-list (kosong = semua boleh)
func StaffRoutes(r fiber.Router, svc *service.HousingService, allowedIPs []string) {
	dormCtrl := controller.NewDormitoryController(svc)
	appCtrl := controller.NewApplicationController(svc)

	staff := r.Group("/staff", middlewares.IPAllowList(allowedIPs))

	dorms := staff.Group("/dormitories")
	dorms.Get("/", dormCtrl.List)
	dorms.Post("/", dormCtrl.Create)
	// static path sebelum :id
	dorms.Get("/structure/export", dormCtrl.Export)
	dorms.Post("/structure/import", dormCtrl.Import)
	dorms.Delete("/:id", dormCtrl.Delete)
	dorms.Post("/:id/structure", dormCtrl.ReplaceRooms)
	dorms.Get("/:id/details", dormCtrl.Details)

	apps := staff.Group("/applications")
	apps.Get("/", appCtrl.List)
	apps.Get("/available_rooms", appCtrl.AvailableRooms)
	apps.Post("/process_auto", appCtrl.ProcessAuto)
	apps.Put("/:id/status", appCtrl.UpdateStatus)
	apps.Put("/:id/allocate", appCtrl.Allocate)
}
