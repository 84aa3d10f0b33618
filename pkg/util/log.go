// Copyright 2023-2024 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util

import "go.uber.org/zap"

var gLogger *zap.Logger

func init() {
	gLogger, _ = zap.NewProduction()
	if gLogger == nil {
		gLogger = zap.NewNop()
	}
}

// SetLogger swaps the package-level logger, e.g. for a development
// logger in cmd/iejoin or a nop logger in tests.
func SetLogger(l *zap.Logger) {
	if l != nil {
		gLogger = l
	}
}

func Info(msg string, fields ...zap.Field) {
	gLogger.Info(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	gLogger.Error(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	gLogger.Debug(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	gLogger.Warn(msg, fields...)
}
