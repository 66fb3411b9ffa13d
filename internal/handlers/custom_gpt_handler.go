// File: internal/handlers/custom_gpt_handler.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/iyunix/go-gptchat/internal/domain"
	"github.com/iyunix/go-gptchat/internal/dtos"
	"github.com/iyunix/go-gptchat/internal/middleware"
	"github.com/iyunix/go-gptchat/internal/services/customgpt"
)

// PersonaService is the custom GPT service as seen by the handlers.
type PersonaService interface {
	Create(ctx context.Context, req customgpt.CreateRequest) (*domain.CustomGPT, error)
	Get(ctx context.Context, viewerID, id string) (*domain.CustomGPT, error)
	ListMine(ctx context.Context, creatorID string) ([]domain.CustomGPT, error)
	Update(ctx context.Context, callerID, id string, patch domain.CustomGPTPatch) (*domain.CustomGPT, error)
	Delete(ctx context.Context, callerID, id string) error
	Star(ctx context.Context, userID, id string, star bool) (*customgpt.StarResult, error)
	ListPublic(ctx context.Context, viewerID string) ([]domain.CustomGPT, error)
	ListStarred(ctx context.Context, userID string) ([]domain.CustomGPT, error)
}

type CustomGPTHandler struct {
	personas PersonaService
	logger   Logger
}

func NewCustomGPTHandler(personas PersonaService, logger Logger) *CustomGPTHandler {
	return &CustomGPTHandler{personas: personas, logger: logger}
}

func callerID(r *http.Request) string {
	return middleware.IdentityFromContext(r.Context()).UserID
}

func (h *CustomGPTHandler) List(w http.ResponseWriter, r *http.Request) {
	gpts, err := h.personas.ListMine(r.Context(), callerID(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.CustomGPTsResponse{CustomGPTs: dtos.ToCustomGPTs(gpts)})
}

func (h *CustomGPTHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateCustomGPTRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	gpt, err := h.personas.Create(r.Context(), customgpt.CreateRequest{
		Name:         req.Name,
		Description:  req.Description,
		SystemPrompt: req.SystemPrompt,
		IsPublic:     req.IsPublic,
		CreatorID:    callerID(r),
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.CustomGPTResponse{CustomGPT: dtos.ToCustomGPT(gpt)})
}

func (h *CustomGPTHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	gpts, err := h.personas.ListPublic(r.Context(), callerID(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.CustomGPTsResponse{CustomGPTs: dtos.ToCustomGPTs(gpts)})
}

func (h *CustomGPTHandler) ListStarred(w http.ResponseWriter, r *http.Request) {
	gpts, err := h.personas.ListStarred(r.Context(), callerID(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.CustomGPTsResponse{CustomGPTs: dtos.ToCustomGPTs(gpts)})
}

func (h *CustomGPTHandler) Get(w http.ResponseWriter, r *http.Request) {
	gpt, err := h.personas.Get(r.Context(), callerID(r), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.CustomGPTResponse{CustomGPT: dtos.ToCustomGPT(gpt)})
}

func (h *CustomGPTHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dtos.UpdateCustomGPTRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	gpt, err := h.personas.Update(r.Context(), callerID(r), mux.Vars(r)["id"], req.Patch())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.CustomGPTResponse{CustomGPT: dtos.ToCustomGPT(gpt)})
}

func (h *CustomGPTHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.personas.Delete(r.Context(), callerID(r), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.SuccessResponse{Success: true})
}

// Star handles both POST (star) and DELETE (unstar).
func (h *CustomGPTHandler) Star(w http.ResponseWriter, r *http.Request) {
	result, err := h.personas.Star(r.Context(), callerID(r), mux.Vars(r)["id"], r.Method != http.MethodDelete)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.StarResponse{Success: result.Success, Starred: result.Starred})
}
