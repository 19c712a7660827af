package server

import (
	"net/http"
	"strings"

	"github.com/MarcoPoloResearchLab/bookfriends/internal/records"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *httpHandler) handleListAuthorRecords(c *gin.Context) {
	author := c.Query("author")
	if author == "" {
		session, found, err := h.sessions.GetActive(c.Request.Context())
		if err != nil {
			h.respondStorageError(c, "failed to load session", err)
			return
		}
		if !found {
			respondError(c, http.StatusBadRequest, errorCodeInvalidRequest)
			return
		}
		author = session.User.Name
	}

	list, err := h.records.ListByAuthor(c.Request.Context(), author)
	if err != nil {
		h.respondStorageError(c, "failed to list author records", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records.SortByRecency(list)})
}

// handleCreateRecord submits a form for the active group and drops the saved draft.
func (h *httpHandler) handleCreateRecord(c *gin.Context) {
	var form records.Draft
	if err := c.ShouldBindJSON(&form); err != nil {
		respondError(c, http.StatusBadRequest, errorCodeInvalidRequest)
		return
	}
	if form.Title == nil || strings.TrimSpace(*form.Title) == "" || form.CoverImage == nil || *form.CoverImage == "" {
		respondError(c, http.StatusBadRequest, errorCodeInvalidRequest)
		return
	}
	if !knownGenre(form) {
		respondError(c, http.StatusBadRequest, errorCodeInvalidRequest)
		return
	}

	ctx := c.Request.Context()
	session, found, err := h.sessions.GetActive(ctx)
	if err != nil {
		h.respondStorageError(c, "failed to load session", err)
		return
	}
	if !found {
		respondError(c, http.StatusConflict, errorCodeNoActiveSession)
		return
	}

	record, err := h.factory.Build(form, session.Group.Code, session.User.Name)
	if err != nil {
		h.logger.Error("failed to build record",
			zap.String("group_code", session.Group.Code),
			zap.Error(err))
		respondError(c, http.StatusInternalServerError, errorCodeRecordBuildFailed)
		return
	}
	if err := h.records.Create(ctx, record); err != nil {
		h.respondStorageError(c, "failed to create record", err)
		return
	}
	if err := h.drafts.Clear(ctx); err != nil {
		h.logger.Warn("record saved but draft not cleared", zap.String("record_id", record.ID), zap.Error(err))
	}
	c.JSON(http.StatusCreated, record)
}

// handleDeleteRecord lets the active member delete a record journaled under their name.
func (h *httpHandler) handleDeleteRecord(c *gin.Context) {
	ctx := c.Request.Context()
	session, found, err := h.sessions.GetActive(ctx)
	if err != nil {
		h.respondStorageError(c, "failed to load session", err)
		return
	}
	if !found {
		respondError(c, http.StatusConflict, errorCodeNoActiveSession)
		return
	}

	id := c.Param("id")
	record, exists, err := h.records.FindByID(ctx, id)
	if err != nil {
		h.respondStorageError(c, "failed to find record", err)
		return
	}
	if !exists {
		c.Status(http.StatusNoContent)
		return
	}
	if !records.CanDelete(record, session.User.Name) {
		respondError(c, http.StatusForbidden, errorCodeForbidden)
		return
	}
	if err := h.records.DeleteByID(ctx, id); err != nil {
		h.respondStorageError(c, "failed to delete record", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// knownGenre reports whether the form leaves the genre unset or picks one from the fixed list.
func knownGenre(form records.Draft) bool {
	return form.Genre == nil || form.Genre.Valid()
}
