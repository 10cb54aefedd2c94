package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rutacontrol/backend/internal/domain"
	"github.com/rutacontrol/backend/internal/middleware"
	"github.com/rutacontrol/backend/internal/service"
)

type userBody struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	RoleID      int       `json:"role_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type createUserRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
	RoleID      int    `json:"role_id"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string   `json:"token"`
	User  userBody `json:"user"`
}

func userToResponse(u domain.User) userBody {
	return userBody{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		RoleID:      u.RoleID,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// Login handles POST /auth/login. Bad credentials answer 401.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	token, u, err := s.users.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: userToResponse(u)})
}

// GetMe handles GET /auth/me: the user the token was issued to.
func (s *Server) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	u, err := s.users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(u))
}

// ListUsers handles GET /users.
func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	out := make([]userBody, len(users))
	for i, u := range users {
		out[i] = userToResponse(u)
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateUser handles POST /users.
func (s *Server) CreateUser(w http.ResponseWriter, r *http.Request) {
	var body createUserRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	u, err := s.users.Create(r.Context(), service.NewUser{
		Username:    body.Username,
		DisplayName: body.DisplayName,
		Password:    body.Password,
		RoleID:      body.RoleID,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, userToResponse(u))
}

// GetUser handles GET /users/{id}.
func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	u, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(u))
}

// DeleteUser handles DELETE /users/{id}. Deleting your own account answers 409.
func (s *Server) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	claims, _ := middleware.ClaimsFromContext(r.Context())
	if err := s.users.Delete(r.Context(), claims.UserID, id); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
