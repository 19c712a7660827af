package server

import (
	"net/http"

	"github.com/MarcoPoloResearchLab/bookfriends/internal/records"
	"github.com/gin-gonic/gin"
)

func (h *httpHandler) handleGetDraft(c *gin.Context) {
	draft, found, err := h.drafts.Get(c.Request.Context())
	if err != nil {
		h.respondStorageError(c, "failed to load draft", err)
		return
	}
	if !found {
		respondError(c, http.StatusNotFound, errorCodeNoDraft)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *httpHandler) handleSaveDraft(c *gin.Context) {
	var draft records.Draft
	if err := c.ShouldBindJSON(&draft); err != nil || !knownGenre(draft) {
		respondError(c, http.StatusBadRequest, errorCodeInvalidRequest)
		return
	}
	if err := h.drafts.Save(c.Request.Context(), draft); err != nil {
		h.respondStorageError(c, "failed to save draft", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) handleClearDraft(c *gin.Context) {
	if err := h.drafts.Clear(c.Request.Context()); err != nil {
		h.respondStorageError(c, "failed to clear draft", err)
		return
	}
	c.Status(http.StatusNoContent)
}
