package handlers

import (
	"bounty-board-system/middleware"
	"bounty-board-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupConversationRoutes(router fiber.Router, conversationService *services.ConversationService) {
	router.Get("/conversations", func(c *fiber.Ctx) error {
		convs, err := conversationService.List(middleware.CallerID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(convs)
	})

	router.Get("/conversations/:id/messages", func(c *fiber.Ctx) error {
		msgs, err := conversationService.Messages(middleware.CallerID(c), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(msgs)
	})

	router.Post("/conversations/:id/messages", func(c *fiber.Ctx) error {
		var req struct {
			Content string `json:"content"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		msg, err := conversationService.SendMessage(middleware.CallerID(c), c.Params("id"), req.Content)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(msg)
	})

	router.Post("/conversations/:id/pay-requests", func(c *fiber.Ctx) error {
		var req struct {
			Amount int `json:"amount"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		msg, err := conversationService.SendPayRequest(middleware.CallerID(c), c.Params("id"), req.Amount)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(msg)
	})

	router.Post("/conversations/:id/messages/:message_id/accept", func(c *fiber.Ctx) error {
		direct, err := conversationService.AcceptPayRequest(middleware.CallerID(c), c.Params("id"), c.Params("message_id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"conversation": direct})
	})

	router.Post("/conversations/:id/accept-original-price", func(c *fiber.Ctx) error {
		direct, err := conversationService.AcceptOriginalPrice(middleware.CallerID(c), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"conversation": direct})
	})

	router.Post("/conversations/:id/read", func(c *fiber.Ctx) error {
		if err := conversationService.MarkRead(middleware.CallerID(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true})
	})
}
