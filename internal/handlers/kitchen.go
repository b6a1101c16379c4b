package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/TwigBush/permission-go/internal/httpx"
	"github.com/TwigBush/permission-go/internal/kitchen"
)

type KitchenHandler struct {
	dir *kitchen.Directory
}

func NewKitchenHandler(dir *kitchen.Directory) *KitchenHandler {
	return &KitchenHandler{dir: dir}
}

// ViewUser runs behind MayViewUser, so only the caller's own id gets here.
// Unknown ids still answer with the same 404 the guard uses.
func (h *KitchenHandler) ViewUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "viewedUserID"))
	if err != nil {
		httpx.WriteError(w, http.StatusNotFound, "No such user")
		return
	}
	u, ok := h.dir.Get(r.Context(), id)
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "No such user")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *KitchenHandler) Cook(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
