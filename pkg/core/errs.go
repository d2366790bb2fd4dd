package core

import "errors"

var (
	ErrNoData          = errors.New("no data")
	ErrInvalidParam    = errors.New("invalid param")
	ErrMetricNotFound  = errors.New("metric not found")
	ErrUnknownPage     = errors.New("unknown page")
	ErrUnsupportedKind = errors.New("unsupported figure kind")
)
