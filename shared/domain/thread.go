package domain

import (
	"time"
)

// HeadPost is the originating post of a thread. It is written once and never modified.
type HeadPost struct {
	ThreadId  ThreadId
	Poster    Poster
	Title     Title
	Body      Body
	ImagePath ImagePath
	CreatedAt time.Time
}

type Thread struct {
	Head    HeadPost
	Replies []Reply // ordered by PostId ascending
}

// to iterate thru layers: handler -> service -> storage
type ThreadCreationData struct {
	Poster    Poster
	Title     Title
	Body      Body
	ImagePath ImagePath
}
