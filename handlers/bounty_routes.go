package handlers

import (
	"bounty-board-system/middleware"
	"bounty-board-system/models"
	"bounty-board-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupBountyRoutes(router fiber.Router, bountyService *services.BountyService, settlementService *services.SettlementService, conversationService *services.ConversationService) {
	router.Post("/bounties", func(c *fiber.Ctx) error {
		var req struct {
			Title         string   `json:"title"`
			Description   string   `json:"description"`
			Category      *string  `json:"category"`
			Reward        int      `json:"reward"`
			Duration      string   `json:"duration"`
			Tags          []string `json:"tags"`
			HuntersNeeded int      `json:"hunters_needed"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		bounty, err := bountyService.Create(middleware.CallerID(c), services.CreateBountyInput{
			Title:         req.Title,
			Description:   req.Description,
			Category:      req.Category,
			Reward:        req.Reward,
			Duration:      req.Duration,
			Tags:          req.Tags,
			HuntersNeeded: req.HuntersNeeded,
		})
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(bounty)
	})

	// The home feed. ?all=true returns every bounty unfiltered; otherwise
	// open bounties the caller has not accepted, with optional q/category/
	// duration filters and sort=newest|reward-high|reward-low.
	router.Get("/bounties", func(c *fiber.Ctx) error {
		if c.QueryBool("all") {
			bounties, err := bountyService.List()
			if err != nil {
				return fail(c, err)
			}
			return c.JSON(bounties)
		}

		bounties, err := bountyService.Browse(middleware.CallerID(c), services.BrowseQuery{
			Search:   c.Query("q"),
			Category: c.Query("category"),
			Duration: c.Query("duration"),
			Sort:     c.Query("sort", services.SortNewest),
		})
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(bounties)
	})

	router.Get("/bounties/mine", func(c *fiber.Ctx) error {
		bounties, err := bountyService.MyBounties(middleware.CallerID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(bounties)
	})

	router.Get("/bounties/accepted", func(c *fiber.Ctx) error {
		bounties, err := bountyService.Accepted(middleware.CallerID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(bounties)
	})

	router.Post("/bounties/:id/accept", func(c *fiber.Ctx) error {
		conv, err := bountyService.Accept(middleware.CallerID(c), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"conversation": conv})
	})

	router.Post("/bounties/:id/cancel-acceptance", func(c *fiber.Ctx) error {
		if err := bountyService.CancelAcceptance(middleware.CallerID(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true})
	})

	router.Post("/bounties/:id/negotiate", func(c *fiber.Ctx) error {
		conv, err := conversationService.StartNegotiation(middleware.CallerID(c), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"conversation": conv})
	})

	router.Post("/bounties/:id/complete", func(c *fiber.Ctx) error {
		result, err := settlementService.Complete(middleware.CallerID(c), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(result)
	})

	router.Patch("/bounties/:id/status", func(c *fiber.Ctx) error {
		var req struct {
			Status string `json:"status"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		status, ok := models.ParseBountyStatus(req.Status)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown status"})
		}
		if err := bountyService.UpdateStatus(middleware.CallerID(c), c.Params("id"), status); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true})
	})

	router.Delete("/bounties/:id", func(c *fiber.Ctx) error {
		if err := bountyService.Delete(middleware.CallerID(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true})
	})
}
