// SPDX-License-Identifier: EPL-2.0

// Package log builds the logrus loggers shared by the granulator packages.
package log

import (
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// DebugEnv switches every logger from GetLogger to debug level.
const DebugEnv = "GRANULATOR_DEBUG"

// GetLogger returns a new text logger writing to stderr.
func GetLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if debug, err := strconv.ParseBool(os.Getenv(DebugEnv)); err == nil && debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// Discard returns a logger that drops everything, for tests.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
