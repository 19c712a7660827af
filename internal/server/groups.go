package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/bookfriends/internal/groups"
	"github.com/MarcoPoloResearchLab/bookfriends/internal/records"
	"github.com/MarcoPoloResearchLab/bookfriends/internal/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	monthLayout = "2006-01"
	dayLayout   = "2006-01-02"
)

type createGroupPayload struct {
	Name        string `json:"name"`
	LeaderName  string `json:"leaderName"`
	MaxMembers  int    `json:"maxMembers"`
	Description string `json:"description"`
	Password    string `json:"password"`
}

type joinGroupPayload struct {
	Name         string `json:"name"`
	Password     string `json:"password"`
	ProfileImage string `json:"profileImage"`
}

type calendarResponsePayload struct {
	Month   string               `json:"month,omitempty"`
	Day     string               `json:"day,omitempty"`
	Count   int                  `json:"count"`
	Records []records.BookRecord `json:"records"`
}

func (h *httpHandler) handleListGenres(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"genres": records.Genres()})
}

func (h *httpHandler) handleListGroups(c *gin.Context) {
	all, err := h.registry.ListAll(c.Request.Context())
	if err != nil {
		h.respondStorageError(c, "failed to list groups", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": all})
}

func (h *httpHandler) handleCreateGroup(c *gin.Context) {
	var request createGroupPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		respondError(c, http.StatusBadRequest, errorCodeInvalidRequest)
		return
	}
	if strings.TrimSpace(request.Name) == "" || strings.TrimSpace(request.LeaderName) == "" || request.Password == "" {
		respondError(c, http.StatusBadRequest, errorCodeInvalidRequest)
		return
	}

	ctx := c.Request.Context()
	code, err := h.registry.GenerateCode(ctx)
	if errors.Is(err, groups.ErrCodeSpaceExhausted) {
		respondError(c, http.StatusServiceUnavailable, errorCodeCodeExhausted)
		return
	}
	if err != nil {
		h.respondStorageError(c, "failed to generate group code", err)
		return
	}

	maxMembers := request.MaxMembers
	if maxMembers <= 0 {
		maxMembers = groups.DefaultMaxMembers
	}
	group := groups.Group{
		Code:        code,
		Name:        request.Name,
		LeaderName:  request.LeaderName,
		MaxMembers:  maxMembers,
		Description: request.Description,
		Password:    request.Password,
	}
	if err := h.registry.Create(ctx, group); err != nil {
		h.respondStorageError(c, "failed to create group", err)
		return
	}
	h.logger.Info("group created", zap.String("group_code", code))
	c.JSON(http.StatusCreated, group)
}

func (h *httpHandler) handleGetGroup(c *gin.Context) {
	group, ok := h.lookupGroup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, group)
}

// handleJoinGroup signs a member up for a group and makes that membership active.
func (h *httpHandler) handleJoinGroup(c *gin.Context) {
	group, ok := h.lookupGroup(c)
	if !ok {
		return
	}

	var request joinGroupPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		respondError(c, http.StatusBadRequest, errorCodeInvalidRequest)
		return
	}
	if strings.TrimSpace(request.Name) == "" || request.Password == "" {
		respondError(c, http.StatusBadRequest, errorCodeInvalidRequest)
		return
	}

	session := sessions.NewMembership(group, sessions.UserProfile{
		Name:         request.Name,
		Password:     request.Password,
		ProfileImage: request.ProfileImage,
	})
	if err := h.sessions.SetActive(c.Request.Context(), session); err != nil {
		h.respondStorageError(c, "failed to activate session", err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *httpHandler) handleListGroupRecords(c *gin.Context) {
	list, ok := h.groupRecords(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records.SortByRecency(list)})
}

func (h *httpHandler) handleGroupShelf(c *gin.Context) {
	list, ok := h.groupRecords(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"shelf": records.Shelf(records.SortByRecency(list))})
}

// handleGroupCalendar answers either ?day=YYYY-MM-DD with that day's records or
// ?month=YYYY-MM with the month's records and count. day wins when both are set.
func (h *httpHandler) handleGroupCalendar(c *gin.Context) {
	if rawDay := c.Query("day"); rawDay != "" {
		day, err := time.Parse(dayLayout, rawDay)
		if err != nil {
			respondError(c, http.StatusBadRequest, errorCodeInvalidRequest)
			return
		}
		list, ok := h.groupRecords(c)
		if !ok {
			return
		}
		onDate := records.OnDate(list, day.Format(dayLayout))
		c.JSON(http.StatusOK, calendarResponsePayload{
			Day:     day.Format(dayLayout),
			Count:   len(onDate),
			Records: onDate,
		})
		return
	}

	month, err := time.Parse(monthLayout, c.Query("month"))
	if err != nil {
		respondError(c, http.StatusBadRequest, errorCodeInvalidRequest)
		return
	}
	list, ok := h.groupRecords(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, calendarResponsePayload{
		Month:   month.Format(monthLayout),
		Count:   records.CountInMonth(list, month.Year(), month.Month()),
		Records: records.InMonth(list, month.Year(), month.Month()),
	})
}

func (h *httpHandler) lookupGroup(c *gin.Context) (groups.Group, bool) {
	group, found, err := h.registry.FindByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.respondStorageError(c, "failed to find group", err)
		return groups.Group{}, false
	}
	if !found {
		respondError(c, http.StatusNotFound, errorCodeGroupNotFound)
		return groups.Group{}, false
	}
	return group, true
}

// groupRecords lists the records of the group in the path. Records of a code that is not
// registered are still returned; the repository does not know about groups.
func (h *httpHandler) groupRecords(c *gin.Context) ([]records.BookRecord, bool) {
	list, err := h.records.ListByGroup(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.respondStorageError(c, "failed to list group records", err)
		return nil, false
	}
	return list, true
}
