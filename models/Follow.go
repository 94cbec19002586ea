package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Follow is one directed edge of the follow graph: UserID reads AuthorID.
// The pair is unique, and a CHECK constraint (added in base initialization)
// backs up the application-level self-follow rejection.
type Follow struct {
	ID        uint      `gorm:"primary_key;autoIncrement" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_follows_pair" json:"user_id"`
	AuthorID  uint      `gorm:"not null;index;uniqueIndex:idx_follows_pair" json:"author_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ErrSelfFollow marks a rejected self edge. Handlers swallow it: the action
// simply has no effect, no error page.
var ErrSelfFollow = errors.New("cannot follow yourself")

// Follow inserts the edge follower -> author. Re-following is idempotent:
// an existing edge means success with created=false and no duplicate row.
// The endpoint users' counters are kept in step in the same transaction.
func (f *Follow) Follow(db *gorm.DB, followerID, authorID uint) (bool, error) {
	if followerID == authorID {
		return false, ErrSelfFollow
	}

	created := false
	err := db.Transaction(func(tx *gorm.DB) error {
		edge := Follow{
			UserID:   followerID,
			AuthorID: authorID,
		}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		created = true

		if err := tx.Model(&User{}).
			Where("id = ?", followerID).
			UpdateColumn("following_count", gorm.Expr("following_count + 1")).Error; err != nil {
			return err
		}
		if err := tx.Model(&User{}).
			Where("id = ?", authorID).
			UpdateColumn("followers_count", gorm.Expr("followers_count + 1")).Error; err != nil {
			return err
		}
		return nil
	})
	return created, err
}

// Unfollow removes the edge follower -> author. A missing edge is success
// with removed=false, and the counters only move when a row actually went
// away, so they cannot drift negative.
func (f *Follow) Unfollow(db *gorm.DB, followerID, authorID uint) (bool, error) {
	if followerID == authorID {
		return false, ErrSelfFollow
	}

	removed := false
	err := db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND author_id = ?", followerID, authorID).
			Delete(&Follow{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		removed = true

		if err := tx.Model(&User{}).
			Where("id = ?", followerID).
			UpdateColumn("following_count", gorm.Expr("following_count - 1")).Error; err != nil {
			return err
		}
		if err := tx.Model(&User{}).
			Where("id = ?", authorID).
			UpdateColumn("followers_count", gorm.Expr("followers_count - 1")).Error; err != nil {
			return err
		}
		return nil
	})
	return removed, err
}

// IsFollowing reports whether the edge follower -> author exists. The
// profile view uses it to pick the follow/unfollow affordance.
func (f *Follow) IsFollowing(db *gorm.DB, followerID, authorID uint) (bool, error) {
	var n int64
	err := db.Model(&Follow{}).
		Where("user_id = ? AND author_id = ?", followerID, authorID).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteUserFollows removes every edge incident to a deleted user, fixing
// up the counters on the surviving endpoints first. Runs inside the
// caller's transaction.
func (f *Follow) DeleteUserFollows(tx *gorm.DB, uid uint) error {
	if err := tx.Exec(
		"UPDATE users SET followers_count = followers_count - 1 WHERE id IN (SELECT author_id FROM follows WHERE user_id = ?)",
		uid,
	).Error; err != nil {
		return err
	}
	if err := tx.Exec(
		"UPDATE users SET following_count = following_count - 1 WHERE id IN (SELECT user_id FROM follows WHERE author_id = ?)",
		uid,
	).Error; err != nil {
		return err
	}
	return tx.Where("user_id = ? OR author_id = ?", uid, uid).
		Delete(&Follow{}).Error
}
