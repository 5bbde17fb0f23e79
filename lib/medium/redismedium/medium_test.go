package redismedium

import (
	"os"
	"testing"

	"github.com/ValentinKolb/ttlstore/lib/medium"
	mediumtesting "github.com/ValentinKolb/ttlstore/lib/medium/testing"
)

// redisAddr returns the test server address, or "" if none is configured.
// The suite enumerates every key on the server, so it needs a dedicated
// (and disposable) database.
func redisAddr() string {
	return os.Getenv("TTLSTORE_TEST_REDIS")
}

func Test(t *testing.T) {
	addr := redisAddr()
	if addr == "" {
		t.Skip("TTLSTORE_TEST_REDIS not set, skipping redis medium tests")
	}

	mediumtesting.RunMediumTests(t, "RedisMedium", func() (medium.IMedium, error) {
		m, err := New(addr)
		if err != nil {
			return nil, err
		}
		// each suite case expects an empty medium
		keys, err := m.Keys()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			if err := m.Delete(key); err != nil {
				return nil, err
			}
		}
		return m, nil
	})
}

func TestConnectFailure(t *testing.T) {
	if _, err := New("127.0.0.1:1"); err == nil {
		t.Errorf("Expected connection error for unreachable server")
	}
}
