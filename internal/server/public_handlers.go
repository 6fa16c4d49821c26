package server

import "github.com/go-chi/chi/v5"

// mountPublic exposes the unscoped listings under /api/public. The caller
// only invokes it when content visibility is public.
func mountPublic(r chi.Router, postH *PostHandlers, feedH *FeedHandlers, progressH *ProgressHandlers) {
	r.Route("/api/public", func(r chi.Router) {
		if postH != nil {
			r.Get("/posts", postH.ListAll)
		}
		if feedH != nil {
			r.Get("/feeds", feedH.ListAll)
		}
		if progressH != nil {
			r.Get("/learning-progress", progressH.ListAll)
		}
	})
}
