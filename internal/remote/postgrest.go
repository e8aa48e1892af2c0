package remote

import (
	"net/url"
	"strconv"
	"strings"
)

// Table and procedure names of the hosted backend.
const (
	tableTransactions             = "transactions"
	tableTransactionNotifications = "transaction_notifications"
	tableGlobalNotifications      = "global_notifications"
	tableReadStatus               = "global_notification_read_status"

	rpcMemberTransactionNotifications = "get_member_transaction_notifications"
	rpcGlobalWithReadStatus           = "get_global_notifications_with_read_status"
	rpcMarkReadPrivileged             = "mark_notification_read_privileged"
)

// Prefer header values.
const (
	preferRepresentation = "return=representation"
	preferMinimal        = "return=minimal"
	preferCountExact     = "count=exact"
)

func tablePath(table string) string { return "/rest/v1/" + table }
func rpcPath(fn string) string      { return "/rest/v1/rpc/" + fn }

// filter builds a PostgREST query string.
type filter struct {
	v url.Values
}

func newFilter() *filter {
	return &filter{v: url.Values{}}
}

func (f *filter) selectCols(cols string) *filter {
	f.v.Set("select", cols)
	return f
}

func (f *filter) eq(col, val string) *filter {
	f.v.Set(col, "eq."+val)
	return f
}

func (f *filter) in(col string, vals []string) *filter {
	quoted := make([]string, len(vals))
	for i, v := range vals {
		quoted[i] = quoteValue(v)
	}
	f.v.Set(col, "in.("+strings.Join(quoted, ",")+")")
	return f
}

func (f *filter) orderDesc(col string) *filter {
	f.v.Set("order", col+".desc")
	return f
}

func (f *filter) limit(n int) *filter {
	if n > 0 {
		f.v.Set("limit", strconv.Itoa(n))
	}
	return f
}

func (f *filter) values() url.Values { return f.v }

// quoteValue wraps list members that contain reserved characters in
// double quotes.
func quoteValue(v string) string {
	if !strings.ContainsAny(v, `,()" `) {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
}
