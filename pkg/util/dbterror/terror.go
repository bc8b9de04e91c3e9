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

package dbterror

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/errno"
	"github.com/pingcap/errors"
)

// ErrClass groups error codes under an RFC prefix.
type ErrClass int

// ErrCode is an error number from package errno.
type ErrCode int

// Error is the normalized error type of every class.
type Error = errors.Error

// ClassOptimizer holds the planner errors.
const ClassOptimizer ErrClass = 1

var classNames = map[ErrClass]string{
	ClassOptimizer: "planner",
}

// String implements fmt.Stringer interface.
func (ec ErrClass) String() string {
	if s, ok := classNames[ec]; ok {
		return s
	}
	return strconv.Itoa(int(ec))
}

// NewStd defines an *Error with the registered message of code. It panics
// when code has no message, so it belongs in package variable initializers.
func (ec ErrClass) NewStd(code ErrCode) *Error {
	msg, ok := errno.MySQLErrName[uint16(code)]
	if !ok {
		panic(fmt.Sprintf("no standard message for error code %d", code))
	}
	return errors.Normalize(msg.Raw,
		errors.RFCCodeText(ec.rfcCode(code)),
		errors.MySQLErrorCode(int(code)),
	)
}

func (ec ErrClass) rfcCode(code ErrCode) string {
	return ec.String() + ":" + strconv.Itoa(int(code))
}

func rfcCodeOf(err error) (string, bool) {
	te, ok := errors.Cause(err).(*Error)
	if !ok {
		return "", false
	}
	return string(te.RFCCode()), true
}

// Equal reports whether err, possibly traced, is the error code of ec.
func (ec ErrClass) Equal(err error, code ErrCode) bool {
	c, ok := rfcCodeOf(err)
	return ok && c == ec.rfcCode(code)
}

// EqualClass reports whether err, possibly traced, belongs to ec.
func (ec ErrClass) EqualClass(err error) bool {
	c, ok := rfcCodeOf(err)
	return ok && strings.HasPrefix(c, ec.String()+":")
}
