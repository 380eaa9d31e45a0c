package decoder

// Options configures the builtin decoders.
type Options struct {
	// FordTable is the path of the Ford M/V lookup table.
	FordTable string
}

// Builtin returns a Registry holding every decoder shipped with the service.
// Adding a make means adding a line here.
func Builtin(opts Options) *Registry {
	r := NewRegistry()
	r.Register("dacia", newSecurityHashFactory("Dacia"))
	r.Register("ford", newFordFactory(opts.FordTable))
	r.Register("renault", newSecurityHashFactory("Renault"))
	return r
}
