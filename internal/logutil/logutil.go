// Copyright 2024 The Distributed String Sorting Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logutil wraps zap the way the rest of this module's ambient
// stack expects: a *zap.SugaredLogger carried explicitly through
// constructors, never a package-level global, with a no-op default so a
// caller that does not ask for logging pays nothing but a nil check.
package logutil

import (
	"go.uber.org/zap"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Nop returns a logger that discards everything, the default used when a
// caller never supplies one of its own (tracker semantics mirror the
// driver's own DummyTracker: tolerate absence silently).
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// New builds a zap production-config (JSON) logger at the given level, used by
// the CLI / test harnesses around this module. level must be one of
// "debug", "info", "warn", "error".
func New(level string) (*zap.SugaredLogger, error) {
	var lvl zap.AtomicLevel
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// RotatingSink builds a lumberjack rotating file writer (an io.Writer,
// with compression of rotated files turned on), for
// long-running driver processes that want size-bounded rotating log files
// instead of (or in addition to) stderr.
func RotatingSink(path string, maxSizeMB, maxBackups, maxAgeDays int) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}
}
