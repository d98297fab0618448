package dispatch

// RouteInfo describes one registered resource method and the writer that
// its declared return type resolves to.
type RouteInfo struct {
	Path      string `json:"path" yaml:"path"`
	Method    string `json:"method" yaml:"method"`
	Returns   string `json:"returns" yaml:"returns"`
	MediaType string `json:"media_type,omitempty" yaml:"media_type,omitempty"`
}

// Routes lists every resource method in registration order. MediaType is
// empty when no writer accepts the declared type.
func (r *Registry) Routes() []RouteInfo {
	var out []RouteInfo
	for _, res := range r.resources {
		for _, m := range res.Methods {
			info := RouteInfo{
				Path:    res.Path,
				Method:  m.Verb,
				Returns: m.Returns.String(),
			}
			if w, err := r.WriterFor(m.Returns, ""); err == nil {
				info.MediaType = w.MediaType()
			}
			out = append(out, info)
		}
	}
	return out
}
