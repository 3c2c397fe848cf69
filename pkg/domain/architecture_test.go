package domain

import (
	"testing"

	"mockapi/testutil"
)

func TestDomainDoesNotImportInternal(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden, "domain must stay independent of internal packages")
}

func TestDomainIsStdlibOnly(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.ThirdPartyImportForbidden, "domain types carry no third-party dependencies")
}
