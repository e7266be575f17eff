package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/common"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/models"
)

func (a *API) ListUsers(c *gin.Context) {
	users, err := a.users.List(c.Request.Context())
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (a *API) GetUser(c *gin.Context) {
	user, err := a.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type createUserRequest struct {
	models.User
	Password string `json:"password" binding:"required"`
}

func (a *API) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := a.users.Register(c.Request.Context(), &req.User, []byte(req.Password))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (a *API) UpdateUser(c *gin.Context) {
	var user models.User
	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user.ID = c.Param("id")

	if err := a.users.Update(c.Request.Context(), &user); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (a *API) DeleteUser(c *gin.Context) {
	if err := a.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		a.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetSession is the authoritative point read behind every validity check.
func (a *API) GetSession(c *gin.Context) {
	sessionID, err := a.users.GetCurrentSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": sessionID})
}

type putSessionRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

// PutSession overwrites the account's session marker. Only the account owner
// may move its own marker.
func (a *API) PutSession(c *gin.Context) {
	if callerID(c) != c.Param("id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot move another account's session"})
		return
	}

	var req putSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := a.users.SetCurrentSession(c.Request.Context(), c.Param("id"), req.SessionID); err != nil {
		a.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) respondError(c *gin.Context, err error) {
	if errors.Is(err, common.ErrorNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	a.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
