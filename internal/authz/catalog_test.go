package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogValidate(t *testing.T) {
	catalog := Catalog{"x:r": "read x", "x:u": "update x"}

	assert.NoError(t, catalog.Validate())
	assert.NoError(t, catalog.Validate("x:r"))
	assert.NoError(t, catalog.Validate("x:r", "x:u"))
	assert.Error(t, catalog.Validate("x:r", "y:d"))
}

func TestManagementCatalog(t *testing.T) {
	catalog := ManagementCatalog()

	// Every entity gets the list + c/r/u/d quintet.
	for _, entity := range []string{"app", "tenant", "user", "role", "perm"} {
		require.NoError(t, catalog.Validate(
			entity+"s:r", entity+":c", entity+":r", entity+":u", entity+":d",
		), entity)
	}
	assert.NoError(t, catalog.Validate("version:r", "stats:r"))

	assert.Equal(t, len(catalog), len(catalog.Names()))
	assert.Contains(t, catalog.Names(), "app:c")
}
