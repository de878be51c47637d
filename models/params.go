package models

// Request parameter structs. binding tags drive validator/v10 through gin's
// ShouldBind helpers.

// ParamSignUp carries a registration request.
type ParamSignUp struct {
	Username   string `json:"username" binding:"required,max=64"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	RePassword string `json:"re_password" binding:"required"`
}

// ParamLogin carries a login request.
type ParamLogin struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ParamNewThread creates a thread together with its opening post.
type ParamNewThread struct {
	Title     string `json:"title" binding:"required,max=250"`
	Body      string `json:"body" binding:"required"`
	Subscribe bool   `json:"subscribe"`
}

// ParamReply adds a post to an existing thread. QuotePostID is optional and
// prepends a quote of the referenced post to the body.
type ParamReply struct {
	Body        string `json:"body" binding:"required"`
	Subscribe   bool   `json:"subscribe"`
	QuotePostID int64  `json:"quote_post_id,string,omitempty"`
}

// ParamEditPost replaces the body of an existing post.
type ParamEditPost struct {
	Body string `json:"body" binding:"required"`
}

// ParamModeratePost sets the moderation state of a post.
type ParamModeratePost struct {
	ModerationState string `json:"moderation_state" binding:"required,oneof=OK NM"`
}

// ParamPage carries pagination query parameters.
type ParamPage struct {
	Page int `json:"page" form:"page"`
	Size int `json:"size" form:"size"`
}

// ThreadDetail is the thread page payload: the thread plus one page of its
// moderated posts.
type ThreadDetail struct {
	*Thread
	Posts      []*Post `json:"posts"`
	TotalPosts int64   `json:"total_posts"`
	Page       int     `json:"page"`
	Size       int     `json:"size"`
}

// ForumDetail is the forum page payload: the forum plus one page of its
// threads.
type ForumDetail struct {
	*Forum
	Threads      []*Thread `json:"threads"`
	TotalThreads int64     `json:"total_threads"`
	Page         int       `json:"page"`
	Size         int       `json:"size"`
}

// PostLocator tells a client where a post lives: its thread and the page of
// the thread view that contains it.
type PostLocator struct {
	Post     *Post  `json:"post"`
	ThreadID int64  `json:"thread_id,string"`
	ForumID  int64  `json:"forum_id,string"`
	Slug     string `json:"forum_slug"`
	Page     int    `json:"page"`
}
