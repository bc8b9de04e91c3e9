// Copyright 2026 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errno

// ErrMessage is an error message with the positions of arguments that
// should be redacted from logs.
type ErrMessage struct {
	Raw          string
	RedactArgPos []int
}

// Message creates an error message.
func Message(message string, redactArgs []int) *ErrMessage {
	return &ErrMessage{Raw: message, RedactArgPos: redactArgs}
}

// MySQLErrName maps error codes to the standard messages.
var MySQLErrName = map[uint16]*ErrMessage{
	ErrInternal:                Message("Internal : %s", nil),
	ErrWindowNoSuchWindow:      Message("Window name '%s' is not defined.", nil),
	ErrWindowFrameStartIllegal: Message("Window '%s': frame start cannot be UNBOUNDED FOLLOWING.", nil),
	ErrWindowFrameEndIllegal:   Message("Window '%s': frame end cannot be UNBOUNDED PRECEDING.", nil),

	ErrWindowNestedCall:       Message("window function calls may not be nested", nil),
	ErrWindowOuterReference:   Message("call to window function may not reference outer queries", nil),
	ErrWindowOrdinaryFunction: Message("can not call ordinary function, %s, as window function", nil),
	ErrNtileArgument:          Message("NTILE function argument expression should be in PARTITION BY", nil),
	ErrNtileVolatile:          Message("NTILE function argument should not use volatile functions", nil),
	ErrLeadLagOffsetNull:      Message("%s offset cannot be NULL", nil),
	ErrLeadLagOffsetNegative:  Message("%s offset cannot be negative", nil),
	ErrWindowFrameUnordered:   Message("invalid window specification: only ordered windows may specify ROWS or RANGE framing", nil),
	ErrWindowFrameIllegal:     Message("Window '%s': frame starting from a following row cannot end with a preceding or current row.", nil),
}
