package simulations

import (
	"testing"

	"mockapi/testutil"
)

func TestAdapterDoesNotImportInfra(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InfraImportForbidden, "adapters talk to services, not storage backends")
}
