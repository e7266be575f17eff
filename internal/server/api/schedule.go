package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/models"
)

func (a *API) ListRooms(c *gin.Context) {
	rooms, err := a.schedule.ListRooms(c.Request.Context())
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

func (a *API) CreateRoom(c *gin.Context) {
	var room models.Room
	if err := c.ShouldBindJSON(&room); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := a.schedule.CreateRoom(c.Request.Context(), &room); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

type roomStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (a *API) UpdateRoomStatus(c *gin.Context) {
	var req roomStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := a.schedule.UpdateRoomStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		a.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) DeleteRoom(c *gin.Context) {
	if err := a.schedule.DeleteRoom(c.Request.Context(), c.Param("id")); err != nil {
		a.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) ListMeetings(c *gin.Context) {
	meetings, err := a.schedule.ListMeetings(c.Request.Context())
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meetings)
}

func (a *API) CreateMeeting(c *gin.Context) {
	var m models.Meeting
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if m.HostID == "" {
		m.HostID = callerID(c)
	}
	if err := a.schedule.CreateMeeting(c.Request.Context(), &m); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (a *API) UpdateMeeting(c *gin.Context) {
	var m models.Meeting
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m.ID = c.Param("id")
	if err := a.schedule.UpdateMeeting(c.Request.Context(), &m); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (a *API) DeleteMeeting(c *gin.Context) {
	if err := a.schedule.DeleteMeeting(c.Request.Context(), c.Param("id")); err != nil {
		a.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
