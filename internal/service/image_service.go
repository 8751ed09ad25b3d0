package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"ai-imagegen-be/internal/dto"
	"ai-imagegen-be/internal/pkg/logger"
	"ai-imagegen-be/pkg/events"
	"ai-imagegen-be/pkg/imagegen"
	pktNats "ai-imagegen-be/pkg/nats"

	"github.com/google/uuid"
)

type IImageService interface {
	Generate(ctx context.Context, userId uuid.UUID, req *dto.GenerateImageRequest) (*dto.GenerateImageResponse, error)
}

type imageService struct {
	credits        ICreditService
	provider       imagegen.Provider
	eventPublisher *pktNats.Publisher
	log            logger.ILogger
}

func NewImageService(credits ICreditService, provider imagegen.Provider, eventPublisher *pktNats.Publisher, log logger.ILogger) IImageService {
	return &imageService{
		credits:        credits,
		provider:       provider,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

// Generate debits one credit before calling the provider, so an exhausted
// account never reaches the paid API. A provider failure refunds the debit.
func (s *imageService) Generate(ctx context.Context, userId uuid.UUID, req *dto.GenerateImageRequest) (*dto.GenerateImageResponse, error) {
	balance, err := s.credits.Debit(ctx, userId)
	if err != nil {
		return nil, err
	}

	imageBytes, genErr := s.provider.Generate(ctx, req.Prompt)
	if genErr != nil {
		s.log.Error("image", "generation provider failed, refunding credit", map[string]interface{}{
			"user_id": userId,
			"error":   genErr.Error(),
		})
		if refundErr := s.credits.Refund(ctx, userId); refundErr != nil {
			// The debited credit is now lost until reconciliation; log loudly.
			s.log.Error("image", "refund after provider failure also failed", map[string]interface{}{
				"user_id": userId,
				"error":   refundErr.Error(),
			})
			return nil, errors.Join(ErrProviderUnavailable, refundErr)
		}
		return nil, ErrProviderUnavailable
	}

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "IMAGE_GENERATED",
			Data: map[string]interface{}{
				"user_id":     userId,
				"occurred_at": time.Now(),
			},
			OccurredAt: time.Now(),
		}
		if pubErr := s.eventPublisher.Publish(ctx, evt); pubErr != nil {
			s.log.Warn("image", "failed to publish IMAGE_GENERATED event", map[string]interface{}{"error": pubErr.Error()})
		}
	}

	return &dto.GenerateImageResponse{
		Image:         fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString(imageBytes)),
		CreditBalance: balance,
	}, nil
}
