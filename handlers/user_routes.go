package handlers

import (
	"fmt"
	"path/filepath"

	"bounty-board-system/middleware"
	"bounty-board-system/services"
	"bounty-board-system/utils"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(router fiber.Router, userService *services.UserService, reviewService *services.ReviewService, notificationService *services.NotificationService) {
	// First call after sign-in: creates the profile if it does not exist.
	router.Get("/users/me", func(c *fiber.Ctx) error {
		user, err := userService.EnsureUser(
			middleware.CallerID(c),
			middleware.CallerClaim(c, "user_name"),
			middleware.CallerClaim(c, "user_picture"),
		)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(user)
	})

	router.Put("/users/me", func(c *fiber.Ctx) error {
		var req struct {
			Name   *string `json:"name"`
			Bio    *string `json:"bio"`
			Avatar *string `json:"avatar"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		user, err := userService.UpdateProfile(middleware.CallerID(c), services.UpdateProfileInput{
			Name:   req.Name,
			Bio:    req.Bio,
			Avatar: req.Avatar,
		})
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(user)
	})

	router.Post("/users/me/avatar", func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("avatar")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is required"})
		}

		callerID := middleware.CallerID(c)
		key := fmt.Sprintf("avatars/%s%s", callerID, filepath.Ext(fileHeader.Filename))
		url, err := utils.UploadAvatarToR2(fileHeader, key)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload avatar"})
		}

		user, err := userService.UpdateProfile(callerID, services.UpdateProfileInput{Avatar: &url})
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(user)
	})

	router.Get("/users/:id", func(c *fiber.Ctx) error {
		user, followers, following, err := userService.Get(c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"user":      user,
			"followers": followers,
			"following": following,
		})
	})

	router.Post("/users/:id/follow", func(c *fiber.Ctx) error {
		if err := userService.Follow(middleware.CallerID(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true})
	})

	router.Delete("/users/:id/follow", func(c *fiber.Ctx) error {
		if err := userService.Unfollow(middleware.CallerID(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true})
	})

	router.Post("/reviews", func(c *fiber.Ctx) error {
		var req struct {
			BountyID   string `json:"bounty_id"`
			RevieweeID string `json:"reviewee_id"`
			Rating     int    `json:"rating"`
			Comment    string `json:"comment"`
			Role       string `json:"role"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		review, err := reviewService.Create(middleware.CallerID(c), services.CreateReviewInput{
			BountyID:   req.BountyID,
			RevieweeID: req.RevieweeID,
			Rating:     req.Rating,
			Comment:    req.Comment,
			Role:       req.Role,
		})
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(review)
	})

	router.Get("/users/:id/reviews", func(c *fiber.Ctx) error {
		reviews, err := reviewService.ForUser(c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(reviews)
	})

	router.Get("/notifications", func(c *fiber.Ctx) error {
		notifications, err := notificationService.ForUser(middleware.CallerID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(notifications)
	})

	router.Patch("/notifications/:id/read", func(c *fiber.Ctx) error {
		if err := notificationService.MarkRead(middleware.CallerID(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"success": true})
	})
}
