// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package names

import "github.com/btcsuite/btclog"

// log is the package-level logger for the name-state machine, following
// the same deferred-injection convention every other core package uses:
// a caller that wants output calls UseLogger, and anything logged before
// that point is silently dropped.
var log btclog.Logger

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger btclog.Logger) {
	log = logger
}

func init() {
	DisableLog()
}

// DisableLog disables all library log output. Logging output is disabled
// by default until either UseLogger or SetLogWriter are called.
func DisableLog() {
	log = btclog.Disabled
}
