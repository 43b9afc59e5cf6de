package domain

type (
	ThreadId = int32
	PostId   = int64

	Poster    = string
	Title     = string
	Body      = string
	ImagePath = string
)

// AnonymousPoster is used when a submission leaves the name field empty.
const AnonymousPoster Poster = "Anonymous"
