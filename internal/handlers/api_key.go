package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/SICout9010/K-Camp/internal/auth"
	"github.com/SICout9010/K-Camp/internal/i18n"
	"github.com/SICout9010/K-Camp/internal/models"
	"github.com/SICout9010/K-Camp/internal/store"
	"github.com/danielgtaylor/huma/v2"
)

type APIKeyHandler struct {
	store       *store.Store
	authHandler *auth.AuthHandler
}

func NewAPIKeyHandler(s *store.Store, authHandler *auth.AuthHandler) *APIKeyHandler {
	return &APIKeyHandler{store: s, authHandler: authHandler}
}

type CreateAPIKeyInput struct {
	auth.AuthInput
	Body struct {
		Name      string     `json:"name" minLength:"1" maxLength:"100"`
		ExpiresAt *time.Time `json:"expires_at,omitempty"`
	}
}

type APIKeyResponse struct {
	ID         uint       `json:"id"`
	Name       string     `json:"name"`
	Key        string     `json:"key"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}

type CreateAPIKeyOutput struct {
	Status int
	Body   APIKeyResponse
}

func apiKeyResponse(k models.APIKey, key string) APIKeyResponse {
	return APIKeyResponse{
		ID:         k.ID,
		Name:       k.Name,
		Key:        key,
		CreatedAt:  k.CreatedAt,
		ExpiresAt:  k.ExpiresAt,
		LastUsedAt: k.LastUsedAt,
	}
}

// maskKey keeps the last four characters so keys can be told apart.
func maskKey(key string) string {
	if len(key) > 4 {
		return "..." + key[len(key)-4:]
	}
	return key
}

// HandleCreate issues a key. The full key is only ever returned here.
func (h *APIKeyHandler) HandleCreate(ctx context.Context, input *CreateAPIKeyInput) (*CreateAPIKeyOutput, error) {
	user, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	keyBytes := make([]byte, 32)
	if _, err := rand.Read(keyBytes); err != nil {
		return nil, problem(ctx, "generate api key", err)
	}

	apiKey := models.APIKey{
		UserID:    user.ID,
		Key:       hex.EncodeToString(keyBytes),
		Name:      input.Body.Name,
		ExpiresAt: input.Body.ExpiresAt,
	}
	if err := h.store.CreateAPIKey(ctx, &apiKey); err != nil {
		return nil, problem(ctx, "create api key", err)
	}

	return &CreateAPIKeyOutput{Status: 201, Body: apiKeyResponse(apiKey, apiKey.Key)}, nil
}

type ListAPIKeysOutput struct {
	Body []APIKeyResponse
}

func (h *APIKeyHandler) HandleList(ctx context.Context, input *auth.AuthInput) (*ListAPIKeysOutput, error) {
	user, err := h.authHandler.Authorize(ctx, *input)
	if err != nil {
		return nil, err
	}

	keys, err := h.store.ListAPIKeys(ctx, user.ID)
	if err != nil {
		return nil, problem(ctx, "list api keys", err)
	}

	response := make([]APIKeyResponse, 0, len(keys))
	for _, k := range keys {
		response = append(response, apiKeyResponse(k, maskKey(k.Key)))
	}
	return &ListAPIKeysOutput{Body: response}, nil
}

type DeleteAPIKeyInput struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *APIKeyHandler) HandleDelete(ctx context.Context, input *DeleteAPIKeyInput) (*struct{}, error) {
	user, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	if err := h.store.DeleteAPIKey(ctx, input.ID, user.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound(i18n.T(ctx, i18n.KeyNotFound))
		}
		return nil, problem(ctx, "delete api key", err)
	}
	return nil, nil
}
