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

package plannererrors

import (
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/errno"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/util/dbterror"
)

// error definitions.
var (
	ErrInternal                = dbterror.ClassOptimizer.NewStd(errno.ErrInternal)
	ErrWindowNoSuchWindow      = dbterror.ClassOptimizer.NewStd(errno.ErrWindowNoSuchWindow)
	ErrWindowFrameStartIllegal = dbterror.ClassOptimizer.NewStd(errno.ErrWindowFrameStartIllegal)
	ErrWindowFrameEndIllegal   = dbterror.ClassOptimizer.NewStd(errno.ErrWindowFrameEndIllegal)
	ErrWindowFrameIllegal      = dbterror.ClassOptimizer.NewStd(errno.ErrWindowFrameIllegal)
	ErrWindowFrameUnordered    = dbterror.ClassOptimizer.NewStd(errno.ErrWindowFrameUnordered)
	ErrWindowNestedCall        = dbterror.ClassOptimizer.NewStd(errno.ErrWindowNestedCall)
	ErrWindowOuterReference    = dbterror.ClassOptimizer.NewStd(errno.ErrWindowOuterReference)
	ErrWindowOrdinaryFunction  = dbterror.ClassOptimizer.NewStd(errno.ErrWindowOrdinaryFunction)
	ErrNtileArgument           = dbterror.ClassOptimizer.NewStd(errno.ErrNtileArgument)
	ErrNtileVolatile           = dbterror.ClassOptimizer.NewStd(errno.ErrNtileVolatile)
	ErrLeadLagOffsetNull       = dbterror.ClassOptimizer.NewStd(errno.ErrLeadLagOffsetNull)
	ErrLeadLagOffsetNegative   = dbterror.ClassOptimizer.NewStd(errno.ErrLeadLagOffsetNegative)
)
