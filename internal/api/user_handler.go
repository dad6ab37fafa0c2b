package api

import (
	"log/slog"
	"net/http"

	"github.com/taskboard/taskboard-api/internal/api/shared"
	"github.com/taskboard/taskboard-api/internal/domain"
	"github.com/taskboard/taskboard-api/internal/service"
)

// UserHandler handles admin-only user management requests.
type UserHandler struct {
	userService service.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService, log *slog.Logger) *UserHandler {
	if log == nil {
		log = slog.Default()
	}

	return &UserHandler{
		userService: userService,
		logger:      log.With(slog.String("component", "user_handler")),
	}
}

// List handles GET /api/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := getActingUser(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User not found or invalid")
		return
	}

	users, err := h.userService.List(r.Context(), user)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userToResponse(u))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// SetRole handles PUT /api/users/{id}/role.
func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	user, err := h.userService.SetRole(r.Context(), actor, id, domain.Role(req.Role))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// SetActive handles PUT /api/users/{id}/active.
func (h *UserHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateActiveRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	user, err := h.userService.SetActive(r.Context(), actor, id, *req.Active)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// Delete handles DELETE /api/users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.userService.Delete(r.Context(), actor, id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "User removed"})
}
