package web

import (
	"fmt"
	"net/http"

	"github.com/Olprog59/go-crudstarter/internal/service"
)

// Route binds a method and path pattern to a handler / Associe une méthode et un motif à un handler
type Route struct {
	Method   string
	Pattern  string
	Resource string
	Handler  http.HandlerFunc
}

// String returns the ServeMux pattern, e.g. "GET /pizzas/{id}"
func (rt Route) String() string {
	return rt.Method + " " + rt.Pattern
}

// Routes returns the record routes of every resource, in catalog order / Retourne les routes de chaque ressource
func (h *Handler) Routes() []Route {
	routes := make([]Route, 0, 5*len(h.container.Resources))
	for _, res := range h.container.Resources {
		svc, ok := h.container.Service(res.Name())
		if !ok {
			continue
		}
		collection := "/" + res.Name()
		item := collection + "/{id}"

		routes = append(routes,
			Route{http.MethodPost, collection, res.Name(), h.createRecord(svc)},
			Route{http.MethodGet, collection, res.Name(), h.listRecords(svc)},
			Route{http.MethodGet, item, res.Name(), h.getRecord(svc)},
			Route{http.MethodPatch, item, res.Name(), h.updateRecord(svc)},
			Route{http.MethodDelete, item, res.Name(), h.deleteRecord(svc)},
		)
	}
	return routes
}

// createRecord handles POST /{entity}
func (h *Handler) createRecord(svc *service.RecordService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := h.decodeObject(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		rec, err := svc.Create(r.Context(), raw)
		if err != nil {
			writeError(w, r, err)
			return
		}

		w.Header().Set("Location", fmt.Sprintf("/%s/%d", svc.Resource().Name(), rec.ID))
		writeJSON(w, http.StatusCreated, rec)
	}
}

// listRecords handles GET /{entity}
func (h *Handler) listRecords(svc *service.RecordService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := svc.List(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, records)
	}
}

// getRecord handles GET /{entity}/{id}
func (h *Handler) getRecord(svc *service.RecordService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		rec, err := svc.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// updateRecord handles PATCH /{entity}/{id}
func (h *Handler) updateRecord(svc *service.RecordService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		raw, err := h.decodeObject(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		rec, err := svc.Update(r.Context(), id, raw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// deleteRecord handles DELETE /{entity}/{id}
func (h *Handler) deleteRecord(svc *service.RecordService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"message": fmt.Sprintf("%s %d deleted", svc.Resource().Entity.Singular, id),
		})
	}
}
