package telemetry

import "errors"

// ErrMeterNil is returned when a metrics constructor gets a nil meter
var ErrMeterNil = errors.New("telemetry: meter is nil")
