package controller

import (
	"errors"

	"ai-imagegen-be/internal/dto"
	"ai-imagegen-be/internal/pkg/serverutils"
	"ai-imagegen-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IImageController interface {
	RegisterRoutes(r fiber.Router, rateLimit fiber.Handler)
	Generate(ctx *fiber.Ctx) error
}

type imageController struct {
	service service.IImageService
}

func NewImageController(service service.IImageService) IImageController {
	return &imageController{service: service}
}

func (c *imageController) RegisterRoutes(r fiber.Router, rateLimit fiber.Handler) {
	h := r.Group("/image")
	h.Post("/generate", serverutils.JwtMiddleware, rateLimit, c.Generate)
}

func (c *imageController) Generate(ctx *fiber.Ctx) error {
	userId, err := authenticatedUserId(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "invalid token subject"))
	}

	var req dto.GenerateImageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Generate(ctx.Context(), userId, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInsufficientBalance):
			return ctx.Status(fiber.StatusPaymentRequired).JSON(serverutils.ErrorResponse(402, "no credit balance"))
		case errors.Is(err, service.ErrAccountNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
		case errors.Is(err, service.ErrProviderUnavailable):
			return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.ErrorResponse(502, "image generation is temporarily unavailable"))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Image generated", res))
}
