package controllers

import (
	"errors"
	"strconv"
	"strings"

	"Postline/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var errInvalidIdentifier = errors.New("invalid identifier")

// resolvePostByIdentifier accepts either the internal numeric ID or the
// public UUID, so both the page URLs and API clients work.
func resolvePostByIdentifier(db *gorm.DB, identifier string) (*models.Post, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, errInvalidIdentifier
	}

	var post models.Post
	if pid, err := strconv.ParseUint(identifier, 10, 32); err == nil {
		if err := db.Preload("Author").Preload("Group").First(&post, uint(pid)).Error; err != nil {
			return nil, err
		}
		return &post, nil
	}

	if _, err := uuid.Parse(identifier); err != nil {
		return nil, errInvalidIdentifier
	}
	if err := db.Preload("Author").Preload("Group").
		Where("public_id = ?", identifier).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func resolveCommentByIdentifier(db *gorm.DB, identifier string) (*models.Comment, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, errInvalidIdentifier
	}

	var comment models.Comment
	if cid, err := strconv.ParseUint(identifier, 10, 32); err == nil {
		if err := db.First(&comment, uint(cid)).Error; err != nil {
			return nil, err
		}
		return &comment, nil
	}

	if _, err := uuid.Parse(identifier); err != nil {
		return nil, errInvalidIdentifier
	}
	if err := db.Where("public_id = ?", identifier).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}
