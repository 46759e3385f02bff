package transport

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/rpggio/tracksheet/internal/domain/activity"
)

func (s *Server) listActivity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := activity.ListOptions{ProjectID: q.Get("projectId")}
	if v := q.Get("type"); v != "" {
		typ := activity.Type(v)
		opts.Type = &typ
	}
	for key, dst := range map[string]*int{"limit": &opts.Limit, "offset": &opts.Offset} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: %s must be an integer", activity.ErrInvalidInput, key), "Failed to fetch activity")
			return
		}
		*dst = n
	}

	entries, err := s.opts.Activity.Recent(r.Context(), ownerFrom(r), opts)
	if err != nil {
		writeError(w, r, err, "Failed to fetch activity")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
