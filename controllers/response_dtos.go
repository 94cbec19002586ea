package controllers

import (
	"time"

	"Postline/models"
)

// The wire shapes the views render. Internal numeric IDs stay internal;
// clients see public IDs, usernames and slugs.

type AuthorDTO struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	AvatarPath     string `json:"avatar_path,omitempty"`
	FollowersCount int64  `json:"followers_count"`
	FollowingCount int64  `json:"following_count"`
}

type GroupDTO struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

type PostDTO struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	PubDate   time.Time `json:"pub_date"`
	Author    AuthorDTO `json:"author"`
	Group     *GroupDTO `json:"group,omitempty"`
	ImagePath string    `json:"image_path,omitempty"`
}

type CommentDTO struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Text     string    `json:"text"`
	Created  time.Time `json:"created"`
}

func toAuthorResponse(user *models.User) AuthorDTO {
	return AuthorDTO{
		ID:             user.PublicID,
		Username:       user.Username,
		AvatarPath:     user.AvatarPath,
		FollowersCount: user.FollowersCount,
		FollowingCount: user.FollowingCount,
	}
}

func toGroupResponse(group *models.Group) GroupDTO {
	return GroupDTO{
		Title:       group.Title,
		Slug:        group.Slug,
		Description: group.Description,
	}
}

func toPostResponse(post *models.Post) PostDTO {
	dto := PostDTO{
		ID:        post.PublicID,
		Text:      post.Text,
		PubDate:   post.PubDate,
		Author:    toAuthorResponse(&post.Author),
		ImagePath: post.ImagePath,
	}
	if post.Group != nil {
		group := toGroupResponse(post.Group)
		dto.Group = &group
	}
	return dto
}

func toPostResponses(posts *[]models.Post) []PostDTO {
	out := make([]PostDTO, len(*posts))
	for i := range *posts {
		out[i] = toPostResponse(&(*posts)[i])
	}
	return out
}

func toCommentResponse(comment *models.Comment) CommentDTO {
	return CommentDTO{
		ID:       comment.PublicID,
		Username: comment.Author.Username,
		Text:     comment.Text,
		Created:  comment.Created,
	}
}
