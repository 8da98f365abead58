package lazyview

import "fmt"

// ConfigurationError reports a missing collaborator. It is fatal: the view
// cannot mount without it.
type ConfigurationError struct {
	Component string
	Reason    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("lazyview: %s: %s", e.Component, e.Reason)
}
