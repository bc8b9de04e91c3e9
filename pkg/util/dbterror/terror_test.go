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

package dbterror_test

import (
	"testing"

	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/errno"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/util/dbterror"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/util/dbterror/plannererrors"
	"github.com/pingcap/errors"
	"github.com/stretchr/testify/require"
)

func TestErrClassEqual(t *testing.T) {
	err := plannererrors.ErrLeadLagOffsetNegative.GenWithStackByArgs("LAG")
	require.True(t, dbterror.ClassOptimizer.Equal(err, errno.ErrLeadLagOffsetNegative))
	require.False(t, dbterror.ClassOptimizer.Equal(err, errno.ErrLeadLagOffsetNull))
	require.False(t, dbterror.ClassOptimizer.Equal(err, errno.ErrInternal))
	require.True(t, dbterror.ClassOptimizer.EqualClass(err))
	require.False(t, dbterror.ErrClass(2).EqualClass(err))
	require.Contains(t, err.Error(), "LAG offset cannot be negative")

	traced := errors.Trace(err)
	require.True(t, dbterror.ClassOptimizer.Equal(traced, errno.ErrLeadLagOffsetNegative))
	require.True(t, plannererrors.ErrLeadLagOffsetNegative.Equal(traced))

	require.False(t, dbterror.ClassOptimizer.Equal(errors.New("plain"), errno.ErrInternal))
	require.False(t, dbterror.ClassOptimizer.EqualClass(nil))
}

func TestClassString(t *testing.T) {
	require.Equal(t, "planner", dbterror.ClassOptimizer.String())
	require.Equal(t, "99", dbterror.ErrClass(99).String())
	require.Equal(t, "planner:8256", string(plannererrors.ErrLeadLagOffsetNegative.RFCCode()))
}
