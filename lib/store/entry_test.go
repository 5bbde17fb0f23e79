package store

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/ttlstore/lib/lifespan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.UnixMilli(1_700_000_000_000)

func TestWrap(t *testing.T) {
	entry, err := Wrap(map[string]int{"n": 1}, lifespan.Millis(1000), testNow)
	require.NoError(t, err)

	assert.Equal(t, testNow.UnixMilli(), entry.StoredMs)
	assert.Equal(t, testNow.UnixMilli()+1000, entry.ExpiryMs)
	assert.JSONEq(t, `{"n":1}`, string(entry.Value))
}

func TestWrapStructuredLifespan(t *testing.T) {
	entry, err := Wrap("v", lifespan.Lifespan{Hours: 1, Minutes: 30}, testNow)
	require.NoError(t, err)
	assert.Equal(t, testNow.UnixMilli()+5_400_000, entry.ExpiryMs)
}

func TestWrapRejectsNil(t *testing.T) {
	_, err := Wrap(nil, lifespan.Millis(1000), testNow)
	require.Error(t, err)
	assert.Equal(t, RetCInvalidOperation, CodeOf(err))
}

func TestWrapRejectsUnserializable(t *testing.T) {
	_, err := Wrap(func() {}, lifespan.Millis(1000), testNow)
	require.Error(t, err)
	assert.Equal(t, RetCSerialization, CodeOf(err))
}

func TestValidate(t *testing.T) {
	live := Entry{Value: json.RawMessage(`"v"`), StoredMs: testNow.UnixMilli(), ExpiryMs: testNow.UnixMilli() + 1000}

	tests := []struct {
		name  string
		entry Entry
		at    time.Time
		want  bool
	}{
		{"live entry", live, testNow, true},
		{"just before expiry", live, testNow.Add(999 * time.Millisecond), true},
		{"at expiry boundary", live, testNow.Add(1000 * time.Millisecond), false},
		{"after expiry", live, testNow.Add(time.Hour), false},
		{"missing value", Entry{StoredMs: 1, ExpiryMs: live.ExpiryMs}, testNow, false},
		{"missing storedMs", Entry{Value: live.Value, ExpiryMs: live.ExpiryMs}, testNow, false},
		{"missing expiryMs", Entry{Value: live.Value, StoredMs: 1}, testNow, false},
		{"zero entry", Entry{}, testNow, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.entry, tt.at))
		})
	}
}

func TestEntryUnmarshal(t *testing.T) {
	entry, err := Wrap([]int{1, 2, 3}, lifespan.Millis(1000), testNow)
	require.NoError(t, err)

	var got []int
	require.NoError(t, entry.Unmarshal(&got))
	assert.Equal(t, []int{1, 2, 3}, got)

	// type mismatch surfaces as a serialization error the caller must handle
	var wrong string
	err = entry.Unmarshal(&wrong)
	require.Error(t, err)
	assert.Equal(t, RetCSerialization, CodeOf(err))

	// nil destination is an existence probe, not an error
	assert.NoError(t, entry.Unmarshal(nil))
}

func TestDescribeValue(t *testing.T) {
	assert.Equal(t, `{"a":1}`, DescribeValue(map[string]int{"a": 1}))
	assert.Equal(t, `"text"`, DescribeValue("text"))

	long := DescribeValue(strings.Repeat("x", 500))
	assert.LessOrEqual(t, len(long), describeMaxLen+3)
	assert.True(t, strings.HasSuffix(long, "..."))

	// unserializable values fall back to fmt formatting
	assert.NotEmpty(t, DescribeValue(func() {}))
}
