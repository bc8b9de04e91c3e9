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

// MySQL compatible error codes.
const (
	ErrInternal                = 1815
	ErrWindowNoSuchWindow      = 3579
	ErrWindowFrameStartIllegal = 3584
	ErrWindowFrameEndIllegal   = 3585
)

// Error codes private to the window planner. They live in the 8xxx range
// like other non-MySQL codes.
const (
	ErrWindowNestedCall       = 8250
	ErrWindowOuterReference   = 8251
	ErrWindowOrdinaryFunction = 8252
	ErrNtileArgument          = 8253
	ErrNtileVolatile          = 8254
	ErrLeadLagOffsetNull      = 8255
	ErrLeadLagOffsetNegative  = 8256
	ErrWindowFrameUnordered   = 8257
	ErrWindowFrameIllegal     = 8258
)
