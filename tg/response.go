package tg

import "github.com/prilive-com/minigram/obj"

// Response is the decoded API envelope. Every remote call returns one,
// whether the method succeeded or not: application-level failures are a
// Response with Ok() == false, never a Go error.
//
// Result fields are not promoted to the top level; use Result():
//
//	r, err := client.Invoke(ctx, "getMe", nil)
//	if err != nil { ... }            // transport tier only
//	if r.Ok() {
//	    id := r.Result().Field("id").Int()
//	}
type Response struct {
	obj.Obj
}

// WrapResponse wraps a decoded envelope value.
func WrapResponse(o obj.Obj) Response { return Response{Obj: o} }

// Ok reports the envelope's own success indicator, read as a real
// boolean. A missing or non-boolean ok field reads as false.
func (r Response) Ok() bool {
	v, _ := r.Field("ok").Value().(bool)
	return v
}

// Result returns the envelope's result payload. Empty when Ok() is false.
func (r Response) Result() obj.Obj { return r.Field("result") }

// ErrorCode returns the envelope's error_code, or 0 on success.
func (r Response) ErrorCode() int64 { return r.Field("error_code").Int() }

// Description returns the envelope's human-readable error description.
func (r Response) Description() string { return r.Field("description").Str() }
