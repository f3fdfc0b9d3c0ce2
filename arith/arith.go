// Package arith holds the arithmetic operation vocabulary shared by the
// request/reply sample pairs. A requester streams an operation ordinal and two
// operands; the replier evaluates them and streams back a success flag and result.
package arith

import (
	"fmt"

	"github.com/peake100/amqpSamples-go/streammsg"
)

// Operation is an arithmetic operation a requester may ask a replier to perform.
type Operation byte

// Wire ordinals for each operation.
const (
	Plus   Operation = 1
	Minus  Operation = 2
	Times  Operation = 3
	Divide Operation = 4
)

func (op Operation) String() string {
	switch op {
	case Plus:
		return "PLUS"
	case Minus:
		return "MINUS"
	case Times:
		return "TIMES"
	case Divide:
		return "DIVIDE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", byte(op))
	}
}

// Apply evaluates the operation. ok is false when the operation cannot produce a
// result, as with division by zero.
func (op Operation) Apply(left int32, right int32) (result float64, ok bool) {
	switch op {
	case Plus:
		return float64(left) + float64(right), true
	case Minus:
		return float64(left) - float64(right), true
	case Times:
		return float64(left) * float64(right), true
	case Divide:
		if right == 0 {
			return 0, false
		}
		return float64(left) / float64(right), true
	default:
		return 0, false
	}
}

// EncodeRequest builds the request payload: operation ordinal followed by both
// operands.
func EncodeRequest(op Operation, left int32, right int32) []byte {
	writer := streammsg.NewWriter()
	writer.WriteByte(byte(op))
	writer.WriteInt32(left)
	writer.WriteInt32(right)
	return writer.Bytes()
}

// DecodeRequest unpacks a request payload built by EncodeRequest.
func DecodeRequest(payload []byte) (op Operation, left int32, right int32, err error) {
	reader := streammsg.NewReader(payload)

	ordinal, err := reader.ReadByte()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("error reading operation ordinal: %w", err)
	}
	left, err = reader.ReadInt32()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("error reading left operand: %w", err)
	}
	right, err = reader.ReadInt32()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("error reading right operand: %w", err)
	}

	op = Operation(ordinal)
	if op < Plus || op > Divide {
		return 0, 0, 0, fmt.Errorf("unknown operation ordinal %d", ordinal)
	}

	return op, left, right, nil
}

// EncodeReply builds the reply payload: a success flag followed by the result.
// When ok is false the result field is still present but carries zero.
func EncodeReply(ok bool, result float64) []byte {
	writer := streammsg.NewWriter()
	writer.WriteBool(ok)
	writer.WriteFloat64(result)
	return writer.Bytes()
}

// DecodeReply unpacks a reply payload built by EncodeReply.
func DecodeReply(payload []byte) (ok bool, result float64, err error) {
	reader := streammsg.NewReader(payload)

	ok, err = reader.ReadBool()
	if err != nil {
		return false, 0, fmt.Errorf("error reading success flag: %w", err)
	}
	result, err = reader.ReadFloat64()
	if err != nil {
		return false, 0, fmt.Errorf("error reading result: %w", err)
	}

	return ok, result, nil
}
