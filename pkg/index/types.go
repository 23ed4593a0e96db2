package index

// IndexSpec is a report of a resolution run.
type IndexSpec struct {
	// Separator is the hierarchy separator the names use.
	Separator string `json:"separator,omitempty"`
	// Extension is the source file extension that was probed.
	Extension string `json:"extension,omitempty"`
	// Namespaces is the prefix table at the time of the run.
	Namespaces []*NamespaceSpec `json:"namespaces,omitempty"`
	// Resolutions is the list of names that were resolved, in request order.
	Resolutions []*ResolutionSpec `json:"resolutions,omitempty"`
}

// NamespaceSpec describes a registered prefix and its base directories.
type NamespaceSpec struct {
	// Prefix is the normalized namespace prefix
	Prefix string `json:"prefix,omitempty"`
	// Dirs is the list of base directories in search order
	Dirs []string `json:"dirs,omitempty"`
}

// ResolutionSpec describes the outcome of resolving a single name.
type ResolutionSpec struct {
	// Name is the fully-qualified name
	Name string `json:"name,omitempty"`
	// Filename is the file that was loaded for the name, empty if not found
	Filename string `json:"filename,omitempty"`
	// Found is true if a file was located
	Found bool `json:"found"`
	// Error is the load or call error, if any
	Error string `json:"error,omitempty"`
}

// Unresolved returns the names that were not found.
func (s *IndexSpec) Unresolved() []string {
	var names []string
	for _, r := range s.Resolutions {
		if !r.Found {
			names = append(names, r.Name)
		}
	}
	return names
}
