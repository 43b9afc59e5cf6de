package handler

import (
	"net/http"

	"github.com/oboe-board/oboe/shared/api"
	"github.com/oboe-board/oboe/shared/domain"
	"github.com/oboe-board/oboe/shared/utils"
)

func (h *Handler) CreateReply(w http.ResponseWriter, r *http.Request) {
	threadId, err := threadIdParam(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	var body api.CreateReplyRequest
	if err := decodeBody(w, r, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	postId, err := h.reply.Create(r.Context(), domain.ReplyCreationData{
		ThreadId:  threadId,
		Poster:    body.Poster,
		Body:      body.Body,
		ImagePath: body.ImagePath,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, api.CreateReplyResponse{PostId: postId})
}

// RepliesAfter is polled by open thread pages: it returns the replies newer
// than ?after as a JSON list, [] when there are none.
func (h *Handler) RepliesAfter(w http.ResponseWriter, r *http.Request) {
	threadId, err := threadIdParam(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	after, err := afterParam(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	replies, err := h.reply.After(r.Context(), threadId, after)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.NewReplyResponses(replies))
}

func (h *Handler) LatestPost(w http.ResponseWriter, r *http.Request) {
	threadId, err := threadIdParam(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	latest, err := h.reply.Latest(r.Context(), threadId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.LatestPostResponse{ThreadId: threadId, LatestPostId: latest})
}
