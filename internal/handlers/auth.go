package handlers

import (
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

// requireAdmin gates the console surface to superusers and records in
// the admins auth collection.
func requireAdmin(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Admin access required", nil)
	}
	switch e.Auth.Collection().Name {
	case core.CollectionNameSuperusers, "admins":
		return nil
	default:
		return apis.NewUnauthorizedError("Admin access required", nil)
	}
}
