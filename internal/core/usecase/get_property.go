package usecase

import (
	"context"
	"errors"
	"fmt"
	"listing-organizer/internal/contextkeys"
	"listing-organizer/internal/core/domain"
	"listing-organizer/internal/core/port"
	"strings"
)

// GetPropertyUseCase читает объект через локальный кэш, при промахе идет во внешний API.
type GetPropertyUseCase struct {
	api   port.ListingsAPIPort
	cache port.PropertyCachePort
}

func NewGetPropertyUseCase(api port.ListingsAPIPort, cache port.PropertyCachePort) *GetPropertyUseCase {
	return &GetPropertyUseCase{api: api, cache: cache}
}

func (uc *GetPropertyUseCase) Execute(ctx context.Context, cred domain.Credential, propertyID string) (*domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "GetProperty",
		"user_id":     cred.UserID,
		"property_id": propertyID,
	})

	if strings.TrimSpace(propertyID) == "" {
		return nil, fmt.Errorf("%w: empty property id", domain.ErrInvalidIdentifier)
	}

	cached, err := uc.cache.Get(ctx, cred.UserID, propertyID)
	if err == nil {
		ucLogger.Debug("Property served from cache", nil)
		return cached, nil
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		// кэш недоступен - это не повод падать, идем в API
		ucLogger.Warn("Property cache read failed", port.Fields{"error": err.Error()})
	}

	property, err := uc.api.FetchProperty(ctx, cred, propertyID)
	if err != nil {
		ucLogger.Error("Failed to fetch property from listings api", err, nil)
		return nil, err
	}

	if err := uc.cache.Put(ctx, cred.UserID, *property); err != nil {
		ucLogger.Warn("Failed to store property in cache", port.Fields{"error": err.Error()})
	}

	ucLogger.Info("Property fetched and cached", nil)
	return property, nil
}
