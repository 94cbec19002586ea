package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"Postline/models"
	"Postline/utils/formaterror"
	"Postline/utils/httpctx"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AddComment attaches a comment to a post and bounces back to the detail
// view, mirroring the page flow.
func (server *Server) AddComment(c *gin.Context) {
	uid, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	post, err := resolvePostByIdentifier(server.DB, c.Param("id"))
	if err != nil {
		respondPostLookupError(c, err)
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Unable to get request"})
		return
	}
	var comment models.Comment
	if err := json.Unmarshal(body, &comment); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cannot unmarshal body"})
		return
	}

	comment.Prepare()
	comment.AuthorID = uid
	comment.PostID = post.ID
	errorMessages := comment.Validate()
	if len(errorMessages) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": http.StatusUnprocessableEntity,
			"error":  errorMessages,
		})
		return
	}

	if _, err := comment.SaveComment(server.DB); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": http.StatusInternalServerError,
			"error":  formaterror.FormatError(err.Error()),
		})
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d/", post.ID))
}

// DeleteComment removes a comment. Only its author (or an admin) may.
func (server *Server) DeleteComment(c *gin.Context) {
	uid, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	comment, err := resolveCommentByIdentifier(server.DB, c.Param("id"))
	if err != nil {
		if errors.Is(err, errInvalidIdentifier) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Request"})
			return
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to retrieve comment"})
		return
	}

	if comment.AuthorID != uid && !httpctx.IsAdminRequest(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	if _, err := comment.DeleteAComment(server.DB); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": "Comment deleted",
	})
}
