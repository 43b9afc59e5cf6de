package domain

import (
	"fmt"
	"time"
)

const (
	displayTimeLayout = "15:04:05"
	displayDateLayout = "02.01.2006"
)

// DisplayTime and DisplayDate split a timestamp into the two strings pages show.
func DisplayTime(t time.Time) string {
	return t.UTC().Format(displayTimeLayout)
}

func DisplayDate(t time.Time) string {
	return t.UTC().Format(displayDateLayout)
}

// for debug
func (r *Reply) String() string {
	return fmt.Sprintf("[thread:%d, post:%d, poster:%s, body:%s, image:%s, created:%s]",
		r.ThreadId, r.PostId, r.Poster, r.Body, r.ImagePath, r.CreatedAt.Format(time.StampMilli))
}

func (t *Thread) String() string {
	s := fmt.Sprintf("[thread:%d, title:%s, poster:%s, replies:[", t.Head.ThreadId, t.Head.Title, t.Head.Poster)
	for i := range t.Replies {
		if i > 0 {
			s += ", "
		}
		s += t.Replies[i].String()
	}
	return s + "]]"
}

// LatestPostId returns the highest reply id present in the thread, 0 if it has no replies.
func (t *Thread) LatestPostId() PostId {
	if len(t.Replies) == 0 {
		return 0
	}
	return t.Replies[len(t.Replies)-1].PostId
}
