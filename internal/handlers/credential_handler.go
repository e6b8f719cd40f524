package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/aucsheet/internal/interfaces"
	"github.com/ternarybob/aucsheet/internal/models"
)

// CredentialHandler manages named credential sets in the key/value
// store. Responses never include the stored secret.
type CredentialHandler struct {
	kv     interfaces.KeyValueStorage
	logger arbor.ILogger
}

// NewCredentialHandler creates a new credential handler
func NewCredentialHandler(storage interfaces.StorageManager, logger arbor.ILogger) *CredentialHandler {
	return &CredentialHandler{
		kv:     storage.KeyValueStorage(),
		logger: logger,
	}
}

type credentialRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Description string `json:"description"`
}

type credentialSummary struct {
	Ref         string    `json:"ref"`
	Username    string    `json:"username"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// credentialPrefix namespaces credential entries within the shared KV store.
const credentialPrefix = "credentials/"

// ListHandler handles GET /api/credentials
func (h *CredentialHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	pairs, err := h.kv.ListByPrefix(r.Context(), credentialPrefix)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list credentials")
		WriteError(w, http.StatusInternalServerError, "failed to list credentials")
		return
	}

	summaries := make([]credentialSummary, 0, len(pairs))
	for _, pair := range pairs {
		var creds models.Credentials
		if err := json.Unmarshal([]byte(pair.Value), &creds); err != nil {
			h.logger.Warn().Str("key", pair.Key).Msg("Skipping malformed credential entry")
			continue
		}
		summaries = append(summaries, credentialSummary{
			Ref:         strings.TrimPrefix(pair.Key, credentialPrefix),
			Username:    creds.Username,
			Description: pair.Description,
			UpdatedAt:   pair.UpdatedAt,
		})
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"credentials": summaries,
		"count":       len(summaries),
	})
}

// SetHandler handles PUT /api/credentials/{ref}
func (h *CredentialHandler) SetHandler(w http.ResponseWriter, r *http.Request, ref string) {
	var req credentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		WriteError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	value, err := json.Marshal(models.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to encode credentials")
		return
	}

	if err := h.kv.Set(r.Context(), credentialPrefix+ref, string(value), req.Description); err != nil {
		h.logger.Error().Err(err).Str("ref", ref).Msg("Failed to store credentials")
		WriteError(w, http.StatusInternalServerError, "failed to store credentials")
		return
	}

	h.logger.Info().Str("ref", ref).Str("username", req.Username).Msg("Credentials stored")
	WriteSuccess(w, "credentials stored")
}

// DeleteHandler handles DELETE /api/credentials/{ref}
func (h *CredentialHandler) DeleteHandler(w http.ResponseWriter, r *http.Request, ref string) {
	if err := h.kv.Delete(r.Context(), credentialPrefix+ref); err != nil {
		if errors.Is(err, interfaces.ErrKeyNotFound) {
			WriteError(w, http.StatusNotFound, "credential ref not found")
			return
		}
		h.logger.Error().Err(err).Str("ref", ref).Msg("Failed to delete credentials")
		WriteError(w, http.StatusInternalServerError, "failed to delete credentials")
		return
	}
	WriteSuccess(w, "credentials deleted")
}
