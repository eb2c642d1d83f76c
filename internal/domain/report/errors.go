package report

import "errors"

var ErrUnsupportedFormat = errors.New("format must be csv or xlsx")
