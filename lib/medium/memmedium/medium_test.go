package memmedium

import (
	"testing"

	"github.com/ValentinKolb/ttlstore/lib/medium"
	mediumtesting "github.com/ValentinKolb/ttlstore/lib/medium/testing"
)

func Test(t *testing.T) {
	mediumtesting.RunMediumTests(t, "MemMedium", func() (medium.IMedium, error) {
		return New(), nil
	})
}
