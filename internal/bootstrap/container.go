package bootstrap

import (
	"log"

	"ai-imagegen-be/internal/config"
	"ai-imagegen-be/internal/controller"
	"ai-imagegen-be/internal/pkg/logger"
	"ai-imagegen-be/internal/pkg/mailer"
	"ai-imagegen-be/internal/repository/unitofwork"
	"ai-imagegen-be/internal/service"
	"ai-imagegen-be/pkg/imagegen/clipdrop"
	pktNats "ai-imagegen-be/pkg/nats"
	"ai-imagegen-be/pkg/payment/razorpay"

	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController    controller.IAuthController
	UserController    controller.IUserController
	ImageController   controller.IImageController
	PaymentController controller.IPaymentController

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	imageProvider := clipdrop.NewClipdropProvider(cfg.ImageGen.BaseURL, cfg.ImageGen.APIKey)
	paymentGateway := razorpay.NewRazorpayGateway(cfg.Payment.KeyID, cfg.Payment.KeySecret)

	// 3. Services
	creditService := service.NewCreditService(uowFactory)
	authService := service.NewAuthService(uowFactory, emailService, natsPub, sysLogger)
	userService := service.NewUserService(uowFactory)
	imageService := service.NewImageService(creditService, imageProvider, natsPub, sysLogger)
	paymentService := service.NewPaymentService(
		uowFactory,
		paymentGateway,
		cfg.Payment.KeySecret,
		cfg.Payment.Currency,
		natsPub,
		sysLogger,
	)

	// 4. Controllers
	return &Container{
		AuthController:    controller.NewAuthController(authService),
		UserController:    controller.NewUserController(userService),
		ImageController:   controller.NewImageController(imageService),
		PaymentController: controller.NewPaymentController(paymentService),
		Logger:            sysLogger,
	}
}
