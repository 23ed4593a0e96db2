package collections

import "strings"

// StringSlice is a flag.Value that collects every occurrence of a repeated
// flag.
type StringSlice []string

// String implements the flag.Value interface.
func (i *StringSlice) String() string {
	return strings.Join(*i, ",")
}

// Set implements the flag.Value interface.
func (i *StringSlice) Set(value string) error {
	*i = append(*i, value)
	return nil
}
