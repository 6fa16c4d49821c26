package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// StringList is a JSON encoded list of strings (image urls, etc).
type StringList []string

// Scan implements sql.Scanner for reading from database
func (l *StringList) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("failed to scan StringList: expected []byte or string, got %T", value)
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	return json.Unmarshal(raw, l)
}

// Value implements driver.Valuer for writing to database
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	bytes, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(bytes), nil
}

// Contains reports whether s is in the list.
func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

// Without returns a copy of the list with every occurrence of s removed.
func (l StringList) Without(s string) StringList {
	out := make(StringList, 0, len(l))
	for _, v := range l {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

// Post is a user (or system) authored entry with optional media.
// A nil OwnerID marks system content.
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:p"`

	ID          string     `bun:"id,pk,type:uuid"`
	OwnerID     *string    `bun:"owner_id,type:uuid"` // FK to users(id), nullable
	Description string     `bun:"description,type:text"`
	ImageURLs   StringList `bun:"image_urls,type:jsonb"`
	VideoURL    string     `bun:"video_url"`
	CreatedAt   time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull,default:current_timestamp"`

	// UploadedURLs lists blobs stored on behalf of this post. Only these are
	// removed from the blob store with the post; client supplied urls never are.
	UploadedURLs StringList `bun:"uploaded_urls,type:jsonb"`

	LikeCount int `bun:"like_count,scanonly"`
}

// PostLike records that UserID liked PostID.
type PostLike struct {
	bun.BaseModel `bun:"table:post_likes,alias:pl"`

	PostID    string    `bun:"post_id,pk,type:uuid"` // FK to posts(id)
	UserID    string    `bun:"user_id,pk,type:uuid"` // FK to users(id)
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Comment belongs to a post.
type Comment struct {
	bun.BaseModel `bun:"table:comments,alias:c"`

	ID        string    `bun:"id,pk,type:uuid"`
	PostID    string    `bun:"post_id,notnull,type:uuid"` // FK to posts(id)
	OwnerID   *string   `bun:"owner_id,type:uuid"`
	Content   string    `bun:"content,notnull,type:text"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Feed is a named, owner curated collection of posts.
type Feed struct {
	bun.BaseModel `bun:"table:feeds,alias:fd"`

	ID          string    `bun:"id,pk,type:uuid"`
	OwnerID     *string   `bun:"owner_id,type:uuid"`
	Name        string    `bun:"name,notnull"`
	Description string    `bun:"description,type:text"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// FeedPost is feed membership.
type FeedPost struct {
	bun.BaseModel `bun:"table:feed_posts,alias:fp"`

	FeedID  string    `bun:"feed_id,pk,type:uuid"` // FK to feeds(id)
	PostID  string    `bun:"post_id,pk,type:uuid"` // FK to posts(id)
	AddedAt time.Time `bun:"added_at,notnull,default:current_timestamp"`
}

// Learning progress statuses.
const (
	ProgressPlanned    = "planned"
	ProgressInProgress = "in_progress"
	ProgressCompleted  = "completed"
)

// LearningProgress is a log entry of something the owner studied.
type LearningProgress struct {
	bun.BaseModel `bun:"table:learning_progress,alias:lp"`

	ID              string     `bun:"id,pk,type:uuid"`
	OwnerID         *string    `bun:"owner_id,type:uuid"`
	Title           string     `bun:"title,notnull"`
	Description     string     `bun:"description,type:text"`
	Status          string     `bun:"status,notnull"`
	Date            *time.Time `bun:"date"`
	DurationMinutes int        `bun:"duration_minutes,notnull,default:0"`
	CreatedAt       time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt       time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}

// Notification types.
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
)

// Notification is owned by its recipient.
type Notification struct {
	bun.BaseModel `bun:"table:notifications,alias:n"`

	ID        string    `bun:"id,pk,type:uuid"`
	OwnerID   *string   `bun:"owner_id,type:uuid"` // recipient
	ActorID   *string   `bun:"actor_id,type:uuid"`
	Type      string    `bun:"type,notnull"`
	Message   string    `bun:"message,notnull"`
	TargetID  string    `bun:"target_id"`
	Read      bool      `bun:"read,notnull,default:false"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
