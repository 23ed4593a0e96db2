package autoload

// Loader performs the one-time load of a resolved file.
type Loader interface {
	// Load loads the file that is expected to define the fully-qualified
	// name.
	Load(name, filename string) error
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(name, filename string) error

// Load implements the Loader interface.
func (f LoaderFunc) Load(name, filename string) error {
	return f(name, filename)
}

// nopLoader does nothing: resolution becomes a pure filesystem probe.
type nopLoader struct{}

func (nopLoader) Load(name, filename string) error {
	return nil
}

// Registrar is implemented by hosts that consult an ordered chain of
// autoload callbacks when a name is not yet defined.
type Registrar interface {
	RegisterAutoloader(fn func(name string) (string, bool), prepend bool)
}
