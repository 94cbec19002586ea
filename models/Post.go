package models

import (
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is the unit of publishing. PubDate is assigned once at creation and
// is the global ordering key: every listing (index, group, profile, feed)
// sorts on it, newest first.
type Post struct {
	ID        uint      `gorm:"primary_key;autoIncrement" json:"id"`
	PublicID  string    `gorm:"type:uuid;uniqueIndex;column:public_id" json:"public_id"`
	Text      string    `gorm:"text;not null;" json:"text"`
	PubDate   time.Time `gorm:"column:pub_date;not null;index:idx_posts_pub_date,sort:desc" json:"pub_date"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	GroupID   *uint     `gorm:"index" json:"group_id"`
	Group     *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"group,omitempty"`
	ImagePath string    `gorm:"size:255;null;" json:"image_path"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) (err error) {
	if strings.TrimSpace(p.PublicID) == "" {
		p.PublicID = uuid.NewString()
	}
	return nil
}

func (p *Post) Prepare() {
	p.ID = 0
	p.Text = html.EscapeString(strings.TrimSpace(p.Text))
	p.Author = User{}
	p.Group = nil
	p.PubDate = time.Now()
	p.UpdatedAt = time.Now()
}

func (p *Post) Validate() map[string]string {
	var errorMessages = make(map[string]string)

	if p.Text == "" {
		errorMessages["Required_text"] = "Text is required"
	}
	if p.AuthorID == 0 {
		errorMessages["Required_author"] = "Author is required"
	}
	return errorMessages
}

func (p *Post) SavePost(db *gorm.DB) (*Post, error) {
	err := db.Create(&p).Error
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Post) FindPostByID(db *gorm.DB, pid uint) (*Post, error) {
	var post Post
	err := db.Preload("Author").Preload("Group").Where("id = ?", pid).Take(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// FindAllPosts returns the global index, newest first.
func (p *Post) FindAllPosts(db *gorm.DB) (*[]Post, error) {
	var posts []Post
	err := db.Preload("Author").Preload("Group").
		Order("pub_date DESC, id DESC").Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return &posts, nil
}

// FindAuthorPosts returns one author's posts for the profile view.
func (p *Post) FindAuthorPosts(db *gorm.DB, authorID uint) (*[]Post, error) {
	var posts []Post
	err := db.Preload("Author").Preload("Group").
		Where("author_id = ?", authorID).
		Order("pub_date DESC, id DESC").Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return &posts, nil
}

// FindGroupPosts returns the posts filed under one group.
func (p *Post) FindGroupPosts(db *gorm.DB, groupID uint) (*[]Post, error) {
	var posts []Post
	err := db.Preload("Author").Preload("Group").
		Where("group_id = ?", groupID).
		Order("pub_date DESC, id DESC").Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return &posts, nil
}

// FindFeedPosts assembles the viewer's personalized feed: every post whose
// author the viewer follows, newest first. The viewer's own posts can never
// appear because a self edge is rejected at creation.
func (p *Post) FindFeedPosts(db *gorm.DB, viewerID uint) (*[]Post, error) {
	var posts []Post
	err := db.Preload("Author").Preload("Group").
		Joins("JOIN follows ON follows.author_id = posts.author_id").
		Where("follows.user_id = ?", viewerID).
		Order("pub_date DESC, posts.id DESC").Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return &posts, nil
}

// UpdateAPost replaces the editable fields. PubDate is immutable, so the
// post keeps its place in every listing.
func (p *Post) UpdateAPost(db *gorm.DB) (*Post, error) {
	err := db.Model(&Post{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"text":       p.Text,
		"group_id":   p.GroupID,
		"updated_at": time.Now(),
	}).Error
	if err != nil {
		return nil, err
	}
	return p.FindPostByID(db, p.ID)
}

func (p *Post) UpdatePostImage(db *gorm.DB, pid uint, imagePath string) (*Post, error) {
	err := db.Model(&Post{}).Where("id = ?", pid).Updates(map[string]interface{}{
		"image_path": imagePath,
		"updated_at": time.Now(),
	}).Error
	if err != nil {
		return nil, err
	}
	return p.FindPostByID(db, pid)
}

// DeleteAPost removes a post together with its comments.
func (p *Post) DeleteAPost(db *gorm.DB, pid uint) (int64, error) {
	var deleted int64
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", pid).Delete(&Comment{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", pid).Delete(&Post{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	return deleted, err
}

// DeleteUserPosts cascades an account deletion to the user's posts and the
// comments under them. Runs inside the caller's transaction.
func (p *Post) DeleteUserPosts(tx *gorm.DB, uid uint) (int64, error) {
	if err := tx.Where("post_id IN (?)",
		tx.Model(&Post{}).Select("id").Where("author_id = ?", uid),
	).Delete(&Comment{}).Error; err != nil {
		return 0, err
	}
	result := tx.Where("author_id = ?", uid).Delete(&Post{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
