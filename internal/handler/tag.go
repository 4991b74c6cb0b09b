package handler

import (
	"net/http"

	"conduit/internal/httputil"
	"conduit/internal/model"
	"conduit/internal/service"
)

type TagHandler struct {
	registry *service.TagRegistry
}

func NewTagHandler(registry *service.TagRegistry) *TagHandler {
	return &TagHandler{registry: registry}
}

// List handles GET /tags
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	names, err := h.registry.ListAllTagNames(r.Context())
	if err != nil {
		httputil.WriteServiceError(w, "ListTags handler", err)
		return
	}
	if names == nil {
		names = []string{}
	}

	httputil.WriteJSON(w, http.StatusOK, model.TagListResponse{Tags: names})
}
