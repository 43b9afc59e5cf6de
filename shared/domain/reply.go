package domain

import (
	"time"
)

// Reply is a comment attached to a thread. PostId is issued by the allocator
// before the reply reaches the record store.
type Reply struct {
	ThreadId  ThreadId
	PostId    PostId
	Poster    Poster
	Body      Body
	ImagePath ImagePath
	CreatedAt time.Time
}

type ReplyCreationData struct {
	ThreadId  ThreadId
	Poster    Poster
	Body      Body
	ImagePath ImagePath
}

// Image is one attachment as shown in the gallery. PostId is 0 for a head post image.
type Image struct {
	ThreadId ThreadId
	PostId   PostId
	Path     ImagePath
}
