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

package types

import (
	"strings"

	"github.com/pingcap/errors"
)

// TypeCode identifies the scalar type of an expression.
type TypeCode byte

// Type codes.
const (
	TypeUnspecified TypeCode = iota
	TypeBool
	TypeInt4
	TypeInt8
	TypeFloat8
	TypeNumeric
	TypeText
	TypeDate
	TypeTimestamp
	// TypeBytes is an opaque internal state, e.g. the preliminary value of a
	// deferred window function.
	TypeBytes
	TypeJSON
	TypePoint
)

var typeNames = map[TypeCode]string{
	TypeUnspecified: "unspecified",
	TypeBool:        "bool",
	TypeInt4:        "int4",
	TypeInt8:        "int8",
	TypeFloat8:      "float8",
	TypeNumeric:     "numeric",
	TypeText:        "text",
	TypeDate:        "date",
	TypeTimestamp:   "timestamp",
	TypeBytes:       "bytea",
	TypeJSON:        "json",
	TypePoint:       "point",
}

// String implements fmt.Stringer interface.
func (tp TypeCode) String() string {
	if s, ok := typeNames[tp]; ok {
		return s
	}
	return "unknown"
}

// ParseTypeCode parses a type name such as "int8" or "text".
func ParseTypeCode(name string) (TypeCode, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "int", "integer":
		return TypeInt4, nil
	case "bigint":
		return TypeInt8, nil
	case "double", "float":
		return TypeFloat8, nil
	case "varchar", "string":
		return TypeText, nil
	}
	for tp, s := range typeNames {
		if s == name && tp != TypeUnspecified {
			return tp, nil
		}
	}
	return TypeUnspecified, errors.Errorf("unknown type name %q", name)
}

// Operator names shared by sort clauses and join conditions.
const (
	OpLT     = "lt"
	OpGT     = "gt"
	OpEQ     = "eq"
	OpNullEQ = "nulleq"
)

// HasOrderingOp reports whether values of the type can be sorted.
func (tp TypeCode) HasOrderingOp() bool {
	switch tp {
	case TypeJSON, TypePoint, TypeUnspecified:
		return false
	}
	return true
}

// EqualityOpForOrderingOp returns the equality operator matching an ordering
// operator on the given type. The second result is false when the type has no
// btree equality family.
func EqualityOpForOrderingOp(tp TypeCode, sortOp string) (string, bool) {
	if !tp.HasOrderingOp() {
		return "", false
	}
	switch sortOp {
	case OpLT, OpGT:
		return OpEQ, true
	}
	return "", false
}

// IsInteger reports whether the type is an integer type.
func (tp TypeCode) IsInteger() bool {
	return tp == TypeInt4 || tp == TypeInt8
}
