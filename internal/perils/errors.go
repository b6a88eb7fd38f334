// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package perils

import "fmt"

// ConfigLoadError reports a keyword source that is missing, unreadable, or
// not valid structured data.
type ConfigLoadError struct {
	Path string
	Err  error
}

func (e *ConfigLoadError) Error() string {
	return fmt.Sprintf("loading keywords from %s: %v", e.Path, e.Err)
}

func (e *ConfigLoadError) Unwrap() error { return e.Err }

// EmptyInputError reports that one side of the cross-product has no
// elements. Input is "states" or "keywords".
type EmptyInputError struct {
	Input string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("no %s to combine", e.Input)
}
