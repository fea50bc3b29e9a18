package config

const (
	// Auth errors
	ErrAuthenticationRequired = "Authentication required"
	ErrInvalidToken           = "Invalid or expired token"
	ErrInvalidCredentials     = "Invalid email or password"
	ErrEmailTaken             = "Email already registered"
	ErrTooManyRequests        = "Too many requests"

	// Request errors
	ErrInvalidJSON       = "Invalid JSON body"
	ErrValidationFailed  = "Validation failed"
	ErrInternalServer    = "Internal server error"
	ErrTitleOrContent    = "Title or content is required"
	ErrPublishIncomplete = "Draft must have title and content to publish"

	// Not found / ownership errors
	ErrDraftNotFound      = "Draft not found"
	ErrPostNotFound       = "Post not found"
	ErrPostUpdateNotOwner = "Unauthorized to update this post"
	ErrPostDeleteNotOwner = "Unauthorized to delete this post"

	// Store errors, user facing
	ErrFetchDrafts  = "Failed to fetch drafts"
	ErrSaveDraft    = "Failed to save draft"
	ErrDeleteDraft  = "Failed to delete draft"
	ErrPublishDraft = "Failed to publish draft"
	ErrFetchPosts   = "Failed to fetch posts"
	ErrCreatePost   = "Failed to create post"
	ErrUpdatePost   = "Failed to update post"
	ErrDeletePost   = "Failed to delete post"
	ErrRegisterUser = "Failed to register user"

	// Client errors
	ErrNetwork = "Network error, changes not saved"
)

const (
	MsgDraftCreated   = "Draft saved successfully"
	MsgDraftUpdated   = "Draft updated successfully"
	MsgDraftDeleted   = "Draft deleted successfully"
	MsgDraftPublished = "Draft published successfully"
	MsgPostCreated    = "Post created successfully"
	MsgPostUpdated    = "Post updated successfully"
	MsgPostDeleted    = "Post deleted successfully"
)
