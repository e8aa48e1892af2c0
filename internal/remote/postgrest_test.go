package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterEncoding(t *testing.T) {
	t.Parallel()

	v := newFilter().
		selectCols("*").
		eq("member_id", "m1").
		in("transaction_id", []string{"a", "b,c", `say "hi"`}).
		orderDesc("created_at").
		limit(20).
		values()

	assert.Equal(t, "*", v.Get("select"))
	assert.Equal(t, "eq.m1", v.Get("member_id"))
	assert.Equal(t, `in.(a,"b,c","say \"hi\"")`, v.Get("transaction_id"))
	assert.Equal(t, "created_at.desc", v.Get("order"))
	assert.Equal(t, "20", v.Get("limit"))

	assert.Empty(t, newFilter().limit(0).values().Get("limit"))
}
