package controller

import (
	"errors"

	"ai-imagegen-be/internal/dto"
	"ai-imagegen-be/internal/pkg/serverutils"
	"ai-imagegen-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPaymentController interface {
	RegisterRoutes(r fiber.Router)
	GetPlans(ctx *fiber.Ctx) error
	CreateOrder(ctx *fiber.Ctx) error
	Verify(ctx *fiber.Ctx) error
	ListTransactions(ctx *fiber.Ctx) error
}

type paymentController struct {
	service service.IPaymentService
}

func NewPaymentController(service service.IPaymentService) IPaymentController {
	return &paymentController{service: service}
}

func (c *paymentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/payment")
	h.Get("/plans", c.GetPlans)
	h.Post("/verify", c.Verify)

	// Protected Routes
	h.Post("/order", serverutils.JwtMiddleware, c.CreateOrder)
	h.Get("/transactions", serverutils.JwtMiddleware, c.ListTransactions)
}

func (c *paymentController) GetPlans(ctx *fiber.Ctx) error {
	res := c.service.GetPlans(ctx.Context())
	return ctx.JSON(serverutils.SuccessResponse("Plans fetched", res))
}

func (c *paymentController) CreateOrder(ctx *fiber.Ctx) error {
	userId, err := authenticatedUserId(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "invalid token subject"))
	}

	var req dto.CreateOrderRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateOrder(ctx.Context(), userId, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPlan):
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
		case errors.Is(err, service.ErrAccountNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
		case errors.Is(err, service.ErrProviderUnavailable):
			return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.ErrorResponse(502, "payment provider unavailable"))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Order created", res))
}

func (c *paymentController) ListTransactions(ctx *fiber.Ctx) error {
	userId, err := authenticatedUserId(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "invalid token subject"))
	}

	req := dto.ListTransactionsRequest{
		Status: ctx.Query("status"),
		Limit:  ctx.QueryInt("limit", 20),
		Offset: ctx.QueryInt("offset", 0),
	}

	res, err := c.service.ListTransactions(ctx.Context(), userId, &req)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Transactions fetched", res))
}

func (c *paymentController) Verify(ctx *fiber.Ctx) error {
	var req dto.VerifyPaymentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.VerifyPayment(ctx.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyProcessed):
			// Success-equivalent ack so the provider stops retrying.
			return ctx.JSON(serverutils.SuccessResponse("Payment already processed",
				&dto.VerifyPaymentResponse{AlreadyApplied: true}))
		case errors.Is(err, service.ErrInvalidSignature), errors.Is(err, service.ErrUnknownTransaction):
			// Same body for both: don't tell a forger which check failed.
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "payment verification failed"))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, "internal server error"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment verified, credits added", res))
}
