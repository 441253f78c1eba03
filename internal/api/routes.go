package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	auth := app.Group("/Auth")
	auth.Post("/Registration", handler.Registration)
	auth.Post("/Login", handler.Login)
	auth.Post("/Refresh", handler.Refresh)
	auth.Get("/Validate", handler.AuthRequired, handler.Validate)
	auth.Post("/Logout", handler.AuthRequired, handler.Logout)

	users := app.Group("/Users")
	users.Get("/Roles", handler.Roles)
	users.Post("/Info", handler.AuthRequired, handler.UpdateInfo)

	app.Get("/features", handler.AuthRequired, handler.Features)

	families := app.Group("/families", handler.AuthRequired)
	families.Post("", handler.CreateFamily)
	families.Post("/join-by-code", handler.JoinByCode)
	families.Get("/:familyId/members", handler.FamilyMembers)
	families.Patch("/:familyId/members/:memberId", handler.UpdateMember)
	families.Delete("/:familyId/members/:memberId", handler.RemoveMember)
	families.Post("/:familyId/leave", handler.LeaveFamily)
	families.Get("/:familyId/messages", handler.ListMessages)
	families.Post("/:familyId/messages", handler.SendMessage)
	families.Patch("/:familyId/messages/:messageId", handler.EditMessage)
	families.Delete("/:familyId/messages/:messageId", handler.DeleteMessage)
}
