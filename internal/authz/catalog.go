package authz

import (
	"fmt"
	"sort"
)

// Catalog is the closed set of permission names the service recognizes,
// mapped to human descriptions. It feeds the bootstrap procedure and
// validates the per-route permission requirements at startup, so a route
// cannot gate on a name nobody can ever be granted.
type Catalog map[string]string

// ManagementCatalog returns the permission catalog protecting the service's
// own management endpoints.
func ManagementCatalog() Catalog {
	return Catalog{
		"version:r": "Read the service version.",
		"stats:r":   "Read the entity counters.",

		"apps:r": "List the applications.",
		"app:c":  "Create a new application.",
		"app:r":  "Read the properties of an application.",
		"app:u":  "Update the properties of an application.",
		"app:d":  "Remove an application.",

		"tenants:r": "List the tenants in an application.",
		"tenant:c":  "Create a new tenant.",
		"tenant:r":  "Read the properties of a tenant.",
		"tenant:u":  "Update the properties of a tenant.",
		"tenant:d":  "Remove a tenant.",

		"users:r": "List the users of a tenant.",
		"user:c":  "Create a new user.",
		"user:r":  "Read the properties of a user.",
		"user:u":  "Update the properties of a user.",
		"user:d":  "Remove a user.",

		"roles:r": "List the roles of a tenant.",
		"role:c":  "Create a new role.",
		"role:r":  "Read the properties of a role.",
		"role:u":  "Update the properties of a role.",
		"role:d":  "Remove a role.",

		"perms:r": "List the permissions of a tenant.",
		"perm:c":  "Create a new permission.",
		"perm:r":  "Read the properties of a permission.",
		"perm:u":  "Update the properties of a permission.",
		"perm:d":  "Remove a permission.",
	}
}

// Validate checks that every given name is part of the catalog. Route
// registration calls this so that an unknown gate name fails at startup
// instead of silently locking out every caller.
func (c Catalog) Validate(names ...string) error {
	for _, name := range names {
		if _, ok := c[name]; !ok {
			return fmt.Errorf("unknown permission %q: add it to the catalog", name)
		}
	}
	return nil
}

// Names returns the sorted permission names.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
