package domain

import (
	"time"
)

const (
	// MaxCommentLength comment content limit in characters
	MaxCommentLength = 2000
	// MaxPostTitleLength post title limit
	MaxPostTitleLength = 200
	// MaxPostContentLength post content limit
	MaxPostContentLength = 5000

	// CommunityPostTitle the pinned post every student chats under
	CommunityPostTitle   = "Community Discussion"
	communityPostContent = "Official public chatroom for all students."
	// SystemAuthor author of posts created by the server
	SystemAuthor = "system"
)

// TrendingTags static tag list served to the forum sidebar
var TrendingTags = []string{"General", "Help", "Projects", "Resources"}

// Post forum thread
type Post struct {
	ID           string    `bson:"_id" json:"id"`
	User         string    `bson:"user" json:"user"`
	Title        string    `bson:"title" json:"title"`
	Content      string    `bson:"content" json:"content"`
	Tags         []string  `bson:"tags" json:"tags"`
	Upvotes      []string  `bson:"upvotes" json:"upvotes"`
	Downvotes    []string  `bson:"downvotes" json:"downvotes"`
	Views        int       `bson:"views" json:"views"`
	CommentCount int       `bson:"comment_count" json:"commentCount"`
	IsEdited     bool      `bson:"is_edited" json:"isEdited"`
	IsPinned     bool      `bson:"is_pinned" json:"isPinned"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`
}

// NewCommunityPost the pinned discussion post
func NewCommunityPost(id string, now time.Time) *Post {
	return &Post{
		ID:        id,
		User:      SystemAuthor,
		Title:     CommunityPostTitle,
		Content:   communityPostContent,
		Tags:      []string{},
		Upvotes:   []string{},
		Downvotes: []string{},
		IsPinned:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// VoteScore upvotes minus downvotes
func (p *Post) VoteScore() int {
	return len(p.Upvotes) - len(p.Downvotes)
}

// Comment forum comment, ParentComment nil for top level
type Comment struct {
	ID            string    `bson:"_id" json:"id"`
	Post          string    `bson:"post" json:"post"`
	User          string    `bson:"user" json:"user"`
	Content       string    `bson:"content" json:"content"`
	ParentComment *string   `bson:"parent_comment" json:"parentComment"`
	Upvotes       []string  `bson:"upvotes" json:"upvotes"`
	Downvotes     []string  `bson:"downvotes" json:"downvotes"`
	IsEdited      bool      `bson:"is_edited" json:"isEdited"`
	CreatedAt     time.Time `bson:"created_at" json:"createdAt"`
}

// CommentView comment with vote aggregates for listing
type CommentView struct {
	Comment
	VoteScore     int `json:"voteScore"`
	UpvoteCount   int `json:"upvoteCount"`
	DownvoteCount int `json:"downvoteCount"`
}

// NewCommentViews attaches vote aggregates
func NewCommentViews(comments []Comment) []CommentView {
	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, CommentView{
			Comment:       c,
			VoteScore:     len(c.Upvotes) - len(c.Downvotes),
			UpvoteCount:   len(c.Upvotes),
			DownvoteCount: len(c.Downvotes),
		})
	}
	return views
}

// CreatePostInput body of POST /forum/posts
type CreatePostInput struct {
	Title   string   `json:"title" validate:"required,max=200"`
	Content string   `json:"content" validate:"required,max=5000"`
	Tags    []string `json:"tags" validate:"max=10,dive,max=30"`
}

// UpdatePostInput body of PUT /forum/posts/:id, nil fields are left unchanged
type UpdatePostInput struct {
	Title   *string  `json:"title" validate:"omitempty,min=1,max=200"`
	Content *string  `json:"content" validate:"omitempty,min=1,max=5000"`
	Tags    []string `json:"tags" validate:"omitempty,max=10,dive,max=30"`
}

// VoteTarget kind of voted entity
type VoteTarget string

const (
	// VoteTargetPost vote on a post
	VoteTargetPost VoteTarget = "post"
	// VoteTargetComment vote on a comment
	VoteTargetComment VoteTarget = "comment"
)

// VoteDirection up or down
type VoteDirection string

const (
	// VoteUp upvote
	VoteUp VoteDirection = "up"
	// VoteDown downvote
	VoteDown VoteDirection = "down"
)

// VoteUpdate aggregate counts broadcast after a vote
type VoteUpdate struct {
	TargetType VoteTarget `json:"targetType"`
	TargetID   string     `json:"targetId"`
	PostID     string     `json:"postId"`
	CommentID  string     `json:"commentId,omitempty"`
	Upvotes    int        `json:"upvotes"`
	Downvotes  int        `json:"downvotes"`
}

// Fields the vote set dir toggles and the set it clears
func (d VoteDirection) Fields() (same, opposite string) {
	if d == VoteDown {
		return "downvotes", "upvotes"
	}
	return "upvotes", "downvotes"
}

// PostTopic broadcast group of one post
func PostTopic(postID string) string {
	return "post:" + postID
}
