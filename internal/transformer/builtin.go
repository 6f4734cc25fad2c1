package transformer

// Built-in transformer names.
const (
	NameNull = "null"
	NameFile = "file"
	NameNATS = "nats"
)

// RegisterBuiltins registers the built-in transformers on r.
func RegisterBuiltins(r *Registry) {
	r.Register(NameNull, NullConfigType{})
	r.Register(NameFile, FileConfigType{})
	r.Register(NameNATS, NATSConfigType{})
}
