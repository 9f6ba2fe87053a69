// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package ops

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Unmarshals a polymorphic operator from JSON, based on its type field
func UnmarshalOperator(raw json.RawMessage) (Operator, error) {
	var base OpBase
	if err := json.Unmarshal(raw, &base); err != nil {
		return nil, err
	}
	factory := GetOperatorFactory(base.Type)
	if factory == nil {
		return nil, fmt.Errorf("unknown operator type '%s' in raw JSON message '%s'", base.Type, string(raw))
	}
	op := factory()
	if err := json.Unmarshal(raw, op); err != nil {
		return nil, err
	}
	return op, nil
}

// Applies a sequence of operators to a promise. Number of inputs, outputs as per the chained steps
type OpSequence struct {
	OpBase
	Steps    []Operator        `json:"-"`     // the actual steps
	StepsRaw []json.RawMessage `json:"steps"` // helper for unmarshaling
}

func init() { SetOperatorFactory(func() Operator { return NewOpSequenceDefault() }) } // register the operator for JSON decoding

func NewOpSequenceDefault() *OpSequence { return NewOpSequence() }

func NewOpSequence(steps ...Operator) *OpSequence {
	return &OpSequence{
		OpBase: OpBase{Type: "seq", Active: len(steps) > 0},
		Steps:  steps,
	}
}

// Unmarshals a sequence of polymorphic operators from JSON.
// Uses temporary op.StepsRaw inspired by https://alexkappa.medium.com/json-polymorphism-in-go-4cade1e58ed1
func (op *OpSequence) UnmarshalJSON(b []byte) error {
	type alias OpSequence
	def := alias(*NewOpSequenceDefault())
	def.Active = true
	if err := json.Unmarshal(b, &def); err != nil {
		return err
	}
	*op = OpSequence(def)
	for _, raw := range op.StepsRaw {
		step, err := UnmarshalOperator(raw)
		if err != nil {
			return err
		}
		op.Steps = append(op.Steps, step)
	}
	op.StepsRaw = nil
	return nil
}

// Appends one or more operators to the existing sequence
func (op *OpSequence) Append(steps ...Operator) {
	op.Steps = append(op.Steps, steps...)
	op.Active = op.Active || len(steps) > 0
}

// Marshals a sequence with polymorphic operators to JSON.
// Uses the actual op.Steps with label "steps", and ignores op.StepsRaw
func (op *OpSequence) MarshalJSON() (bs []byte, err error) {
	buf := bytes.Buffer{}
	buf.WriteString("{\"type\":")
	inner, err := json.Marshal(op.Type)
	if err != nil {
		return nil, err
	}
	buf.Write(inner)
	fmt.Fprintf(&buf, ",\"active\":%v,\"steps\":", op.Active)
	steps := op.Steps
	if steps == nil {
		steps = []Operator{}
	}
	inner, err = json.Marshal(steps)
	if err != nil {
		return nil, err
	}
	buf.Write(inner)
	buf.WriteRune('}')
	return buf.Bytes(), nil
}

// Chains the promises of all active steps. Inactive steps pass their inputs through
func (op *OpSequence) MakePromises(ins []Promise, c *Context) (outs []Promise, err error) {
	if !op.Active {
		return ins, nil
	}
	return op.applyRecursive(op.Steps, ins, c)
}

func (op *OpSequence) applyRecursive(steps []Operator, ins []Promise, c *Context) (outs []Promise, err error) {
	if len(steps) == 0 {
		return ins, nil
	}
	if steps[0].IsActive() {
		ins, err = steps[0].MakePromises(ins, c)
		if err != nil {
			return nil, err
		}
	}
	return op.applyRecursive(steps[1:], ins, c)
}

// Applies a single operator to each input. Takes n inputs, produces n outputs
type OpForEach struct {
	OpBase
	Operation Operator `json:"operation"`
}

func init() { SetOperatorFactory(func() Operator { return NewOpForEachDefault() }) } // register the operator for JSON decoding

func NewOpForEachDefault() *OpForEach { return NewOpForEach(nil) }

func NewOpForEach(operation Operator) *OpForEach {
	return &OpForEach{
		OpBase:    OpBase{Type: "forEach", Active: operation != nil},
		Operation: operation,
	}
}

// Unmarshals the embedded polymorphic operation from JSON
func (op *OpForEach) UnmarshalJSON(b []byte) error {
	var aux struct {
		OpBase
		Operation json.RawMessage `json:"operation"`
	}
	aux.OpBase = NewOpForEachDefault().OpBase
	aux.Active = true
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	op.OpBase = aux.OpBase
	op.Operation = nil
	if len(aux.Operation) > 0 && string(aux.Operation) != "null" {
		inner, err := UnmarshalOperator(aux.Operation)
		if err != nil {
			return err
		}
		op.Operation = inner
	}
	return nil
}

// Applies the operation to each input individually
func (op *OpForEach) MakePromises(ins []Promise, c *Context) (outs []Promise, err error) {
	if len(ins) == 0 {
		return ins, nil
	}
	if op.Operation == nil {
		return nil, fmt.Errorf("%s operator has no operation to apply", op.Type)
	}
	for _, in := range ins {
		out, err := op.Operation.MakePromises([]Promise{in}, c)
		if err != nil {
			return nil, err
		}
		if len(out) != 1 {
			return nil, fmt.Errorf("%s operator needs exactly one promise from embedded operation", op.Type)
		}
		outs = append(outs, out[0])
	}
	return outs, nil
}
