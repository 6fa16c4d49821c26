package server

import (
	"time"

	"github.com/terraconstructs/skillshare/internal/db/models"
	"github.com/terraconstructs/skillshare/internal/services/iam"
	"github.com/terraconstructs/skillshare/internal/services/progress"
)

// UserResponse represents an account in API responses. Email and account
// state are only included for the account itself and for administrators.
type UserResponse struct {
	ID                string     `json:"id"`
	Username          string     `json:"username"`
	Name              string     `json:"name"`
	Email             string     `json:"email,omitempty"`
	Bio               string     `json:"bio"`
	ProfilePictureURL string     `json:"profile_picture_url"`
	Role              string     `json:"role"`
	Disabled          bool       `json:"disabled,omitempty"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func newUserResponse(u *models.User, private bool) UserResponse {
	resp := UserResponse{
		ID:                u.ID,
		Username:          u.Username,
		Name:              u.Name,
		Bio:               u.Bio,
		ProfilePictureURL: u.ProfilePictureURL,
		Role:              u.Role,
		CreatedAt:         u.CreatedAt,
	}
	if private {
		resp.Email = u.Email
		resp.Disabled = !u.Enabled()
		resp.LastLoginAt = u.LastLoginAt
	}
	return resp
}

func newUserList(users []models.User, private bool) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, newUserResponse(&users[i], private))
	}
	return out
}

// SessionResponse is returned by register and login.
type SessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

func newSessionResponse(s *iam.Session) SessionResponse {
	return SessionResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		User:      newUserResponse(s.User, true),
	}
}

// PostResponse represents a post. A null owner_id marks system content.
type PostResponse struct {
	ID          string    `json:"id"`
	OwnerID     *string   `json:"owner_id"`
	Description string    `json:"description"`
	ImageURLs   []string  `json:"image_urls"`
	VideoURL    string    `json:"video_url,omitempty"`
	LikeCount   int       `json:"like_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newPostResponse(p *models.Post) PostResponse {
	images := []string(p.ImageURLs)
	if images == nil {
		images = []string{}
	}
	return PostResponse{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		Description: p.Description,
		ImageURLs:   images,
		VideoURL:    p.VideoURL,
		LikeCount:   p.LikeCount,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func newPostList(posts []models.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for i := range posts {
		out = append(out, newPostResponse(&posts[i]))
	}
	return out
}

// CommentResponse represents a comment.
type CommentResponse struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	OwnerID   *string   `json:"owner_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newCommentResponse(c *models.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		PostID:    c.PostID,
		OwnerID:   c.OwnerID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// FeedResponse represents a feed. Posts is only set on single-feed reads.
type FeedResponse struct {
	ID          string         `json:"id"`
	OwnerID     *string        `json:"owner_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Posts       []PostResponse `json:"posts,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func newFeedResponse(f *models.Feed) FeedResponse {
	return FeedResponse{
		ID:          f.ID,
		OwnerID:     f.OwnerID,
		Name:        f.Name,
		Description: f.Description,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

func newFeedList(feeds []models.Feed) []FeedResponse {
	out := make([]FeedResponse, 0, len(feeds))
	for i := range feeds {
		out = append(out, newFeedResponse(&feeds[i]))
	}
	return out
}

// ProgressResponse represents a learning progress entry.
type ProgressResponse struct {
	ID              string    `json:"id"`
	OwnerID         *string   `json:"owner_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Status          string    `json:"status"`
	Date            string    `json:"date,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func newProgressResponse(p *models.LearningProgress) ProgressResponse {
	resp := ProgressResponse{
		ID:              p.ID,
		OwnerID:         p.OwnerID,
		Title:           p.Title,
		Description:     p.Description,
		Status:          p.Status,
		DurationMinutes: p.DurationMinutes,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if p.Date != nil {
		resp.Date = p.Date.Format(progress.DateLayout)
	}
	return resp
}

func newProgressList(entries []models.LearningProgress) []ProgressResponse {
	out := make([]ProgressResponse, 0, len(entries))
	for i := range entries {
		out = append(out, newProgressResponse(&entries[i]))
	}
	return out
}

// NotificationResponse represents a notification; also the websocket message.
type NotificationResponse struct {
	ID        string    `json:"id"`
	ActorID   *string   `json:"actor_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	TargetID  string    `json:"target_id,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func newNotificationResponse(n *models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		ActorID:   n.ActorID,
		Type:      n.Type,
		Message:   n.Message,
		TargetID:  n.TargetID,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
