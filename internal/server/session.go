package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/MarcoPoloResearchLab/bookfriends/internal/sessions"
	"github.com/gin-gonic/gin"
)

type switchSessionPayload struct {
	GroupCode string `json:"groupCode"`
}

func (h *httpHandler) handleGetSession(c *gin.Context) {
	session, found, err := h.sessions.GetActive(c.Request.Context())
	if err != nil {
		h.respondStorageError(c, "failed to load session", err)
		return
	}
	if !found {
		respondError(c, http.StatusNotFound, errorCodeNoActiveSession)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *httpHandler) handleSwitchSession(c *gin.Context) {
	var request switchSessionPayload
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.GroupCode) == "" {
		respondError(c, http.StatusBadRequest, errorCodeInvalidRequest)
		return
	}
	session, err := h.sessions.SwitchTo(c.Request.Context(), request.GroupCode)
	if errors.Is(err, sessions.ErrNotJoined) {
		respondError(c, http.StatusNotFound, errorCodeGroupNotJoined)
		return
	}
	if err != nil {
		h.respondStorageError(c, "failed to switch session", err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *httpHandler) handleClearSession(c *gin.Context) {
	if err := h.sessions.ClearActive(c.Request.Context()); err != nil {
		h.respondStorageError(c, "failed to clear session", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) handleListJoined(c *gin.Context) {
	joined, err := h.sessions.ListJoined(c.Request.Context())
	if err != nil {
		h.respondStorageError(c, "failed to list joined sessions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": joined})
}
