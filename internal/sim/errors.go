package sim

import "fmt"

// ConfigError reports an invalid run parameter. It is fatal at startup; no
// partial run is performed.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s %s", e.Field, e.Message)
}

// NumericError reports a non-finite position, velocity, or force during
// integration. The run aborts immediately; LastGoodStep is the last step
// that completed with a finite state.
type NumericError struct {
	LastGoodStep int
}

func (e *NumericError) Error() string {
	return fmt.Sprintf("numeric instability: non-finite state after step %d (last good step %d)", e.LastGoodStep+1, e.LastGoodStep)
}
