package handler

import (
	"fmt"
	"net/http"

	"github.com/oboe-board/oboe/shared/api"
	"github.com/oboe-board/oboe/shared/domain"
	"github.com/oboe-board/oboe/shared/utils"
)

func (h *Handler) CreateThread(w http.ResponseWriter, r *http.Request) {
	var body api.CreateThreadRequest
	if err := decodeBody(w, r, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	threadId, err := h.thread.Create(r.Context(), domain.ThreadCreationData{
		Poster:    body.Poster,
		Title:     body.Title,
		Body:      body.Body,
		ImagePath: body.ImagePath,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/v1/threads/%d", threadId))
	utils.WriteJSON(w, http.StatusCreated, api.CreateThreadResponse{ThreadId: threadId})
}

func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
	threadId, err := threadIdParam(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	thread, err := h.thread.Get(r.Context(), threadId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	latest, err := h.reply.Latest(r.Context(), threadId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, api.NewThreadResponse(thread, latest))
}

func (h *Handler) ListThreads(w http.ResponseWriter, r *http.Request) {
	heads, err := h.thread.List(r.Context())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.NewThreadListResponse(heads))
}

func (h *Handler) Gallery(w http.ResponseWriter, r *http.Request) {
	images, err := h.thread.Gallery(r.Context())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.NewGalleryResponse(images))
}
