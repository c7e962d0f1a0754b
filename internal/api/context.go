package api

import "context"

type contextKey string

const callInfoKey contextKey = "api_call"

// CallInfo is filled in by HTTPClient with the details of the request it
// sent, for decorators that record calls.
type CallInfo struct {
	Method     string
	Path       string
	RequestID  string
	StatusCode int
}

func withCallInfo(ctx context.Context, info *CallInfo) context.Context {
	return context.WithValue(ctx, callInfoKey, info)
}

// callInfoFrom returns the CallInfo attached to ctx, or nil.
func callInfoFrom(ctx context.Context) *CallInfo {
	info, _ := ctx.Value(callInfoKey).(*CallInfo)
	return info
}
