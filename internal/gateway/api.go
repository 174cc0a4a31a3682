// ABOUTME: HTTP API handlers for auth, browser, files, and monitoring endpoints
// ABOUTME: JSON request parsing with errors mapped to status codes per failure class

package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/hearthside/hearth/internal/auth"
	"github.com/hearthside/hearth/internal/browser"
	"github.com/hearthside/hearth/internal/monitor"
	"github.com/hearthside/hearth/internal/store"
)

// RegisterRequest is the JSON request body for POST /api/v1/auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the JSON request body for POST /api/v1/auth/login.
// Username also accepts the account's email address.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateMeRequest is the JSON request body for PATCH /api/v1/auth/me.
type UpdateMeRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// UserResponse is the JSON representation of a user. The password hash
// never leaves the server.
type UserResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// TokenResponse is the JSON response for POST /api/v1/auth/login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RegisterResponse is the JSON response for POST /api/v1/auth/register.
type RegisterResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
}

// FileCreateRequest is the JSON request body for POST /api/v1/files.
// Registers a metadata record for a file; the bytes themselves are
// never stored by the server.
type FileCreateRequest struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type,omitempty"`
}

// FileResponse is the JSON representation of a file metadata record.
type FileResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type,omitempty"`
	OwnerID     string `json:"owner_id,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// FileListResponse is the JSON response for GET /api/v1/files.
type FileListResponse struct {
	Files []FileResponse `json:"files"`
	Total int            `json:"total"`
}

func userResponse(u *store.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
		CreatedAt:   u.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   u.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func fileResponse(f *store.FileMetadata) FileResponse {
	return FileResponse{
		ID:          f.ID,
		Name:        f.Name,
		Path:        f.Path,
		Size:        f.Size,
		ContentType: f.ContentType,
		OwnerID:     f.OwnerID,
		CreatedAt:   f.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (g *Gateway) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// isValidationError reports whether err is a client-caused auth failure
// that maps to 400.
func isValidationError(err error) bool {
	return errors.Is(err, auth.ErrInvalidUsername) ||
		errors.Is(err, auth.ErrInvalidPassword) ||
		errors.Is(err, auth.ErrInvalidEmail) ||
		errors.Is(err, auth.ErrUsernameTaken) ||
		errors.Is(err, auth.ErrEmailTaken)
}

// handleRegister handles POST /api/v1/auth/register.
// Creates an account and returns it with a fresh access token.
func (g *Gateway) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, err := g.authSvc.Register(r.Context(), auth.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if isValidationError(err) {
			g.sendJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		g.logger.Error("registration failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	token, err := g.issuer.Issue(user.Username, user.ID)
	if err != nil {
		g.logger.Error("issuing token failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	g.writeJSON(w, http.StatusCreated, RegisterResponse{
		User:        userResponse(user),
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// handleLogin handles POST /api/v1/auth/login.
// All credential failures return the same 401 response.
func (g *Gateway) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, err := g.authSvc.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			g.sendJSONError(w, http.StatusUnauthorized, "incorrect username or password")
			return
		}
		g.logger.Error("login failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	token, err := g.issuer.Issue(user.Username, user.ID)
	if err != nil {
		g.logger.Error("issuing token failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	g.writeJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// handleMe handles GET /api/v1/auth/me.
func (g *Gateway) handleMe(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	user, err := g.authSvc.GetUser(r.Context(), authCtx.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			g.sendJSONError(w, http.StatusNotFound, "user not found")
			return
		}
		g.logger.Error("user lookup failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	g.writeJSON(w, http.StatusOK, userResponse(user))
}

// handleUpdateMe handles PATCH /api/v1/auth/me.
func (g *Gateway) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	var req UpdateMeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, err := g.authSvc.UpdateUser(r.Context(), authCtx.UserID, auth.UpdateRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case isValidationError(err):
			g.sendJSONError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrUserNotFound):
			g.sendJSONError(w, http.StatusNotFound, "user not found")
		default:
			g.logger.Error("user update failed", "error", err)
			g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	g.writeJSON(w, http.StatusOK, userResponse(user))
}

// handleDeleteMe handles DELETE /api/v1/auth/me.
func (g *Gateway) handleDeleteMe(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	if err := g.authSvc.DeleteUser(r.Context(), authCtx.UserID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			g.sendJSONError(w, http.StatusNotFound, "user not found")
			return
		}
		g.logger.Error("user delete failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetUser handles GET /api/v1/auth/users/{id} (superuser only).
func (g *Gateway) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := g.authSvc.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			g.sendJSONError(w, http.StatusNotFound, "user not found")
			return
		}
		g.logger.Error("user lookup failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	g.writeJSON(w, http.StatusOK, userResponse(user))
}

// sendBrowserError maps browser sentinel errors to status codes.
func (g *Gateway) sendBrowserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, browser.ErrAccessDenied):
		g.sendJSONError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, browser.ErrNotFound):
		g.sendJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, browser.ErrNotADirectory), errors.Is(err, browser.ErrIsADirectory):
		g.sendJSONError(w, http.StatusBadRequest, err.Error())
	default:
		g.logger.Error("browser operation failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
	}
}

// handleBrowserList handles GET /api/v1/browser/list?path=X.
func (g *Gateway) handleBrowserList(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		g.sendJSONError(w, http.StatusBadRequest, "path query parameter is required")
		return
	}

	listing, err := g.browser.ListDirectory(r.Context(), path)
	if err != nil {
		g.sendBrowserError(w, err)
		return
	}
	g.writeJSON(w, http.StatusOK, listing)
}

// handleBrowserInfo handles GET /api/v1/browser/info?path=X.
func (g *Gateway) handleBrowserInfo(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		g.sendJSONError(w, http.StatusBadRequest, "path query parameter is required")
		return
	}

	item, err := g.browser.Describe(r.Context(), path)
	if err != nil {
		g.sendBrowserError(w, err)
		return
	}
	g.writeJSON(w, http.StatusOK, item)
}

// handleBrowserDownload handles GET /api/v1/browser/download?path=X.
func (g *Gateway) handleBrowserDownload(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		g.sendJSONError(w, http.StatusBadRequest, "path query parameter is required")
		return
	}

	content, item, err := g.browser.ReadFile(r.Context(), path)
	if err != nil {
		g.sendBrowserError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", item.Name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

// handleBrowserRoots handles GET /api/v1/browser/roots.
func (g *Gateway) handleBrowserRoots(w http.ResponseWriter, r *http.Request) {
	g.writeJSON(w, http.StatusOK, g.browser.Roots())
}

// handleFileCreate handles POST /api/v1/files.
// Registers metadata for a file; the record's owner is the caller.
func (g *Gateway) handleFileCreate(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	var req FileCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" || req.Path == "" {
		g.sendJSONError(w, http.StatusBadRequest, "name and path are required")
		return
	}
	if req.Size < 0 {
		g.sendJSONError(w, http.StatusBadRequest, "size must not be negative")
		return
	}

	now := time.Now().UTC()
	meta := &store.FileMetadata{
		ID:          uuid.New().String(),
		Name:        filepath.Base(req.Name),
		Path:        req.Path,
		Size:        req.Size,
		ContentType: req.ContentType,
		OwnerID:     authCtx.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := g.store.CreateFile(r.Context(), meta); err != nil {
		if errors.Is(err, store.ErrDuplicatePath) {
			g.sendJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		g.logger.Error("registering file failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	g.writeJSON(w, http.StatusCreated, fileResponse(meta))
}

// handleFileList handles GET /api/v1/files?owner_id=X.
func (g *Gateway) handleFileList(w http.ResponseWriter, r *http.Request) {
	records, err := g.store.ListFiles(r.Context(), r.URL.Query().Get("owner_id"), 0)
	if err != nil {
		g.logger.Error("listing files failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := FileListResponse{Files: make([]FileResponse, 0, len(records))}
	for _, f := range records {
		resp.Files = append(resp.Files, fileResponse(f))
	}
	resp.Total = len(resp.Files)
	g.writeJSON(w, http.StatusOK, resp)
}

// handleFileMetadata handles GET /api/v1/files/{id}/metadata.
func (g *Gateway) handleFileMetadata(w http.ResponseWriter, r *http.Request) {
	meta, err := g.store.GetFile(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrFileNotFound) {
			g.sendJSONError(w, http.StatusNotFound, "file not found")
			return
		}
		g.logger.Error("file lookup failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	g.writeJSON(w, http.StatusOK, fileResponse(meta))
}

// handleFileDelete handles DELETE /api/v1/files/{id}.
func (g *Gateway) handleFileDelete(w http.ResponseWriter, r *http.Request) {
	if err := g.store.DeleteFile(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, store.ErrFileNotFound) {
			g.sendJSONError(w, http.StatusNotFound, "file not found")
			return
		}
		g.logger.Error("file delete failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMonitoringSystem handles GET /api/v1/monitoring/system.
func (g *Gateway) handleMonitoringSystem(w http.ResponseWriter, r *http.Request) {
	metrics, err := g.monitorSvc.System(r.Context())
	if err != nil {
		if errors.Is(err, monitor.ErrNoSampler) {
			g.sendJSONError(w, http.StatusServiceUnavailable, "system metrics unavailable")
			return
		}
		g.logger.Error("system metrics failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	g.writeJSON(w, http.StatusOK, metrics)
}

// handleMonitoringStorage handles GET /api/v1/monitoring/storage.
func (g *Gateway) handleMonitoringStorage(w http.ResponseWriter, r *http.Request) {
	stats, err := g.monitorSvc.Storage(r.Context())
	if err != nil {
		g.logger.Error("storage stats failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	g.writeJSON(w, http.StatusOK, stats)
}

// handleMonitoringDashboard handles GET /api/v1/monitoring/dashboard.
func (g *Gateway) handleMonitoringDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := g.monitorSvc.Snapshot(r.Context())
	if err != nil {
		g.logger.Error("dashboard snapshot failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	g.writeJSON(w, http.StatusOK, dash)
}
