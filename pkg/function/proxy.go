package function

import "github.com/outpost-run/outpost/pkg/object"

// LiveGetter is the slice of an App a Proxy needs: looking up the live
// object behind a tag.
type LiveGetter interface {
	LiveObject(tag string) (object.Handle, bool)
}

// Proxy is the handle returned by function registration. It is distinct
// from the spec itself: user code keeps the proxy, the blueprint keeps the
// spec.
type Proxy struct {
	fn  *Function
	app LiveGetter
	tag string
}

func NewProxy(fn *Function, app LiveGetter, tag string) *Proxy {
	return &Proxy{fn: fn, app: app, tag: tag}
}

func (p *Proxy) Tag() string {
	return p.tag
}

func (p *Proxy) Spec() *Function {
	return p.fn
}

// ID is the function's remote identity. It is available only while the
// owning application is running.
func (p *Proxy) ID() (string, bool) {
	h, ok := p.app.LiveObject(p.tag)
	if !ok {
		return "", false
	}
	return h.ID(), true
}
