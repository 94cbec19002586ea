package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"Postline/models"
	"Postline/utils/httpctx"
	"Postline/utils/pagination"

	"github.com/gin-gonic/gin"
)

// FollowIndex renders the viewer's personalized feed: posts from every
// author they follow, newest first, paginated. Never cached because the
// content is per-viewer.
func (server *Server) FollowIndex(c *gin.Context) {
	uid, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	post := models.Post{}
	posts, err := post.FindFeedPosts(server.DB, uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to retrieve feed"})
		return
	}

	page := pagination.ParsePage(c.DefaultQuery("page", "1"))
	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"page_obj": pagination.Paginate(toPostResponses(posts), page),
	})
}

// ProfileFollow creates the follow edge viewer -> author and bounces back to
// the profile. A self-follow is silently ignored, and re-following is a
// no-op rather than a duplicate.
func (server *Server) ProfileFollow(c *gin.Context) {
	uid, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user := models.User{}
	author, err := user.FindUserByUsername(server.DB, c.Param("username"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	follow := models.Follow{}
	if _, err := follow.Follow(server.DB, uid, author.ID); err != nil &&
		!errors.Is(err, models.ErrSelfFollow) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error following user"})
		return
	}

	c.Redirect(http.StatusFound, profilePath(author.Username))
}

// ProfileUnfollow removes the follow edge and bounces back to the profile.
// A missing edge is not an error.
func (server *Server) ProfileUnfollow(c *gin.Context) {
	uid, ok := httpctx.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user := models.User{}
	author, err := user.FindUserByUsername(server.DB, c.Param("username"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	follow := models.Follow{}
	if _, err := follow.Unfollow(server.DB, uid, author.ID); err != nil &&
		!errors.Is(err, models.ErrSelfFollow) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error unfollowing user"})
		return
	}

	c.Redirect(http.StatusFound, profilePath(author.Username))
}

func profilePath(username string) string {
	return fmt.Sprintf("/profile/%s/", username)
}
