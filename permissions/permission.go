// Package permissions maps chi route patterns to the staff roles allowed on them.
// The table is embedded from permissions.json at build time.
package permissions

import (
	_ "embed"
	"encoding/json"
	"strings"

	"guesthouse/shared/principal"

	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var permissionsData []byte

// Permission is one route entry. An empty Permissions list admits any
// authenticated caller; Skip bypasses bearer authentication altogether.
type Permission struct {
	Permissions []string `json:"permissions"`
	Path        string   `json:"path"`
	Method      string   `json:"method"`
	Skip        bool     `json:"skip"`
}

// Allows reports whether caller may call the route.
func (p Permission) Allows(caller principal.Principal) bool {
	return len(p.Permissions) == 0 || caller.HasRole(p.Permissions...)
}

type PermissionData struct {
	Endpoints []Permission `json:"endpoints"`
	Skip      bool         `json:"skip"`

	index map[string]Permission
}

func routeKey(method, path string) string {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	return method + " " + path
}

// FindPermissions returns the entry for a chi route pattern. "/v1/rooms" and
// "/v1/rooms/" resolve to the same entry; unknown routes get the zero Permission.
func (r *PermissionData) FindPermissions(path, method string) Permission {
	if r.index == nil {
		r.buildIndex()
	}

	return r.index[routeKey(method, path)]
}

func (r *PermissionData) buildIndex() {
	r.index = make(map[string]Permission, len(r.Endpoints))

	for _, endpoint := range r.Endpoints {
		key := routeKey(endpoint.Method, endpoint.Path)
		if _, dup := r.index[key]; dup {
			log.Warn().Str("route", key).Msg("duplicate permission entry, keeping the first")

			continue
		}

		r.index[key] = endpoint
	}
}

// Get decodes the embedded table. It returns nil when the file is malformed,
// which makes RBAC reject every request.
func Get() *PermissionData {
	var permissions PermissionData

	if err := json.Unmarshal(permissionsData, &permissions); err != nil {
		log.Error().Err(err).Msg("Failed to decode embedded permissions")

		return nil
	}

	permissions.buildIndex()

	log.Info().Int("endpoints", len(permissions.Endpoints)).Msg("Loaded embedded permissions")

	return &permissions
}
