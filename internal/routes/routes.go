package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/TigerK9/CSCI-432-Final/internal/handlers"
	"github.com/TigerK9/CSCI-432-Final/internal/middleware"
)

func Setup(app *fiber.App) {
	api := app.Group("/api")

	users := api.Group("/users")
	users.Post("/signup", handlers.Signup)
	users.Post("/login", handlers.Login)

	protected := api.Group("/", middleware.Protected())

	protected.Get("/profile", handlers.GetProfile)
	protected.Put("/profile", handlers.UpdateProfile)

	protected.Get("/users", handlers.GetUsers)
	protected.Get("/users/by-ids", handlers.GetUsersByIDs)
	protected.Get("/users/by-email/:email", handlers.GetUserByEmail)

	meetings := protected.Group("/meetings")
	meetings.Get("/", handlers.GetMeetings)
	meetings.Post("/", handlers.CreateMeeting)
	meetings.Post("/join", handlers.JoinMeeting)
	meetings.Get("/:meetingId", handlers.GetMeeting)
	meetings.Put("/:meetingId", handlers.UpdateMeeting)
	meetings.Delete("/:meetingId", handlers.DeleteMeeting)
	meetings.Put("/:meetingId/participants", handlers.UpdateParticipants)
	meetings.Post("/:meetingId/end", handlers.EndMeeting)
	meetings.Get("/:meetingId/minutes", handlers.GetMinutes)
	meetings.Get("/:meetingId/activity", handlers.GetMeetingActivity)

	// Motion lifecycle
	meetings.Post("/:meetingId/propose-motion", handlers.ProposeMotion)
	meetings.Post("/:meetingId/motions/:motionIndex/review", handlers.ReviewMotion)
	meetings.Post("/:meetingId/start-vote/:motionIndex", handlers.StartVote)
	meetings.Post("/:meetingId/vote/:motionIndex", handlers.CastVote)
	meetings.Post("/:meetingId/complete-voting/:motionIndex", handlers.CompleteVote)
}
