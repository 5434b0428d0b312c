package pdftext

import (
	"fmt"

	"github.com/ragtext/pdftext/logger"
)

func logWarnf(format string, args ...interface{}) {
	logger.Warn(fmt.Sprintf(format, args...))
}

func logDebugf(trace bool, format string, args ...interface{}) {
	logger.Debug(fmt.Sprintf(format, args...), trace)
}
