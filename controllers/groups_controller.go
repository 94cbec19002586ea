package controllers

import (
	"encoding/json"
	"io"
	"net/http"

	"Postline/models"
	"Postline/utils/formaterror"
	"Postline/utils/httpctx"

	"github.com/gin-gonic/gin"
)

// GetGroups lists every group, alphabetically.
func (server *Server) GetGroups(c *gin.Context) {
	group := models.Group{}
	groups, err := group.FindAllGroups(server.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to retrieve groups"})
		return
	}

	groupResponses := make([]GroupDTO, len(*groups))
	for i := range *groups {
		groupResponses[i] = toGroupResponse(&(*groups)[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": groupResponses,
	})
}

// CreateGroup registers a new group. Admin only, since groups are curated
// rather than user-generated.
func (server *Server) CreateGroup(c *gin.Context) {
	if !httpctx.IsAdminRequest(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Unable to get request"})
		return
	}
	var group models.Group
	if err := json.Unmarshal(body, &group); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cannot unmarshal body"})
		return
	}

	group.Prepare()
	errorMessages := group.Validate()
	if len(errorMessages) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": http.StatusUnprocessableEntity,
			"error":  errorMessages,
		})
		return
	}

	groupCreated, err := group.SaveGroup(server.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": http.StatusInternalServerError,
			"error":  formaterror.FormatError(err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":   http.StatusCreated,
		"response": toGroupResponse(groupCreated),
	})
}

// DeleteGroup removes a group; its posts survive with the group cleared.
func (server *Server) DeleteGroup(c *gin.Context) {
	if !httpctx.IsAdminRequest(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	group := models.Group{}
	groupFound, err := group.FindGroupBySlug(server.DB, c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	if _, err := groupFound.DeleteAGroup(server.DB, groupFound.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to delete group"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": "Group deleted",
	})
}
