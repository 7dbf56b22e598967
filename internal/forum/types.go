package forum

// SortMode orders posts within a thread. It is both a request parameter and
// the signal for which end of the window "newest" lives at.
type SortMode int

const (
	SortAsc SortMode = iota
	SortDesc
	SortHot
)

// Toggle flips between ascending and descending order. Hot sort toggles
// back to ascending.
func (m SortMode) Toggle() SortMode {
	if m == SortAsc {
		return SortDesc
	}
	return SortAsc
}

// Object-type discriminants for the agree endpoint.
const (
	ObjTypePost   = 1
	ObjTypeThread = 3
)

// Source tags accepted by the page-fetch endpoint.
const (
	SourceMention     = "mention"
	SourceStoreThread = "store_thread"
)

// UserInfo identifies a forum user.
type UserInfo struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Portrait string `json:"portrait"`
}

// ThreadInfo is the wire shape of a thread summary. Optional fields are
// pointers: nil means the source did not carry the field at all.
type ThreadInfo struct {
	ID          int64  `json:"id"`
	FirstPostID *int64 `json:"first_post_id,omitempty"`

	Title         *string `json:"title,omitempty"`
	ReplyCount    *int    `json:"reply_num,omitempty"`
	ViewCount     *int    `json:"view_num,omitempty"`
	CreateTime    *int64  `json:"create_time,omitempty"`
	LastReplyTime *int64  `json:"last_time,omitempty"`

	AuthorID *int64    `json:"author_id,omitempty"`
	Author   *UserInfo `json:"author,omitempty"`

	ForumID   *int64  `json:"forum_id,omitempty"`
	ForumName *string `json:"forum_name,omitempty"`

	Abstract   *string `json:"abstract,omitempty"`
	MediaCount *int    `json:"media_num,omitempty"`

	HasAgreed       *int   `json:"has_agree,omitempty"`
	AgreeCount      *int   `json:"agree_num,omitempty"`
	CollectStatus   *int   `json:"collect_status,omitempty"`
	CollectMarkPost *int64 `json:"collect_mark_pid,omitempty"`

	// PostIDs is the comma-separated id list of the posts the server chose
	// for this page, in page order. Used for cursor computation.
	PostIDs string `json:"pids"`
}

// PostInfo is the wire shape of a single post within a page.
type PostInfo struct {
	ID       int64 `json:"id"`
	ThreadID int64 `json:"tid"`
	Floor    int   `json:"floor"`
	Time     int64 `json:"time"`

	AuthorID int64     `json:"author_id"`
	Author   *UserInfo `json:"author,omitempty"`

	Content       string `json:"content"`
	SubReplyCount int    `json:"sub_post_number"`

	HasAgreed  int `json:"has_agree"`
	AgreeCount int `json:"agree_num"`
}

// ForumBlock is the forum summary carried by every page response.
type ForumBlock struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// AntiBlock carries the anti-spam token required by write endpoints.
type AntiBlock struct {
	TBS string `json:"tbs"`
}

// PageInfo describes the server-side pagination of a page response.
type PageInfo struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_page"`
	HasMore     int `json:"has_more"`
	HasPrevious int `json:"has_prev"`
}

// PageData is the payload of a successful page fetch.
type PageData struct {
	Page     *PageInfo   `json:"page"`
	Thread   *ThreadInfo `json:"thread"`
	Forum    *ForumBlock `json:"forum"`
	Anti     *AntiBlock  `json:"anti"`
	UserList []UserInfo  `json:"user_list"`
	Posts    []PostInfo  `json:"post_list"`

	// FirstFloorPost is the head post, carried separately when the
	// requested page does not naturally include floor 1.
	FirstFloorPost *PostInfo `json:"first_floor_post,omitempty"`
}

// PageResponse is the page-fetch envelope.
type PageResponse struct {
	ErrorCode int       `json:"error_code"`
	ErrorMsg  string    `json:"error_msg"`
	Data      *PageData `json:"data"`
}

// MutationResponse is the envelope shared by all mutation endpoints.
type MutationResponse struct {
	ErrorCode int    `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
}

// PageQuery configures a page fetch.
type PageQuery struct {
	ThreadID int64
	Page     int
	PostID   int64 // anchor post; 0 means none
	ForumID  int64

	SeeAuthorOnly bool
	Sort          SortMode
	Backward      bool

	SourceTag  string
	Mark       bool
	LastPostID int64 // watermark for "load latest"
}

// AgreeRequest toggles the agree state of a thread or post. Per the API's
// toggle convention HasAgreed carries the state being left, not the state
// being requested.
type AgreeRequest struct {
	ThreadID  string
	PostID    string
	HasAgreed int
	ObjType   int
}
