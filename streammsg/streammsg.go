// Package streammsg implements a compact, sequentially-typed payload format for
// message bodies. A writer appends typed fields in order and a reader consumes them
// in the same order, the way a JMS StreamMessage would. Each field is written as a
// single type tag byte followed by the field's big-endian encoding.
package streammsg

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Type tags. One byte precedes every field on the wire.
const (
	tagBool    byte = 0x01
	tagByte    byte = 0x02
	tagInt32   byte = 0x03
	tagFloat64 byte = 0x04
	tagString  byte = 0x05
)

// ErrTypeMismatch is returned when the next field in the stream is not of the
// requested type.
type ErrTypeMismatch struct {
	// The tag the caller asked for and the tag found in the stream.
	Want byte
	Got  byte
}

func (err ErrTypeMismatch) Error() string {
	return fmt.Sprintf(
		"stream field type mismatch: want tag 0x%02x, got 0x%02x", err.Want, err.Got,
	)
}

// Writer appends typed fields to a payload buffer.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty payload writer.
func NewWriter() *Writer {
	return new(Writer)
}

// Bytes returns the encoded payload.
func (writer *Writer) Bytes() []byte {
	return writer.buf.Bytes()
}

// WriteBool appends a boolean field.
func (writer *Writer) WriteBool(value bool) {
	writer.buf.WriteByte(tagBool)
	if value {
		writer.buf.WriteByte(1)
	} else {
		writer.buf.WriteByte(0)
	}
}

// WriteByte appends a single-byte field. The error is always nil and exists to
// satisfy io.ByteWriter.
func (writer *Writer) WriteByte(value byte) error {
	writer.buf.WriteByte(tagByte)
	return writer.buf.WriteByte(value)
}

// WriteInt32 appends a 32-bit signed integer field.
func (writer *Writer) WriteInt32(value int32) {
	writer.buf.WriteByte(tagInt32)
	var scratch [4]byte
	binary.BigEndian.PutUint32(scratch[:], uint32(value))
	writer.buf.Write(scratch[:])
}

// WriteFloat64 appends a 64-bit float field.
func (writer *Writer) WriteFloat64(value float64) {
	writer.buf.WriteByte(tagFloat64)
	var scratch [8]byte
	binary.BigEndian.PutUint64(scratch[:], math.Float64bits(value))
	writer.buf.Write(scratch[:])
}

// WriteString appends a length-prefixed UTF-8 string field.
func (writer *Writer) WriteString(value string) {
	writer.buf.WriteByte(tagString)
	var scratch [4]byte
	binary.BigEndian.PutUint32(scratch[:], uint32(len(value)))
	writer.buf.Write(scratch[:])
	writer.buf.WriteString(value)
}

// Reader consumes typed fields from a payload in writing order.
type Reader struct {
	buf *bytes.Reader
}

// NewReader returns a reader over an encoded payload.
func NewReader(payload []byte) *Reader {
	return &Reader{buf: bytes.NewReader(payload)}
}

// expect consumes the next tag byte and checks it against want.
func (reader *Reader) expect(want byte) error {
	got, err := reader.buf.ReadByte()
	if err == io.EOF {
		return fmt.Errorf("stream exhausted reading field tag: %w", err)
	}
	if err != nil {
		return err
	}
	if got != want {
		return ErrTypeMismatch{Want: want, Got: got}
	}
	return nil
}

// ReadBool consumes a boolean field.
func (reader *Reader) ReadBool() (bool, error) {
	if err := reader.expect(tagBool); err != nil {
		return false, err
	}
	value, err := reader.buf.ReadByte()
	if err != nil {
		return false, fmt.Errorf("stream exhausted reading bool: %w", err)
	}
	return value != 0, nil
}

// ReadByte consumes a single-byte field.
func (reader *Reader) ReadByte() (byte, error) {
	if err := reader.expect(tagByte); err != nil {
		return 0, err
	}
	value, err := reader.buf.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("stream exhausted reading byte: %w", err)
	}
	return value, nil
}

// ReadInt32 consumes a 32-bit signed integer field.
func (reader *Reader) ReadInt32() (int32, error) {
	if err := reader.expect(tagInt32); err != nil {
		return 0, err
	}
	var scratch [4]byte
	if _, err := io.ReadFull(reader.buf, scratch[:]); err != nil {
		return 0, fmt.Errorf("stream exhausted reading int32: %w", err)
	}
	return int32(binary.BigEndian.Uint32(scratch[:])), nil
}

// ReadFloat64 consumes a 64-bit float field.
func (reader *Reader) ReadFloat64() (float64, error) {
	if err := reader.expect(tagFloat64); err != nil {
		return 0, err
	}
	var scratch [8]byte
	if _, err := io.ReadFull(reader.buf, scratch[:]); err != nil {
		return 0, fmt.Errorf("stream exhausted reading float64: %w", err)
	}
	return math.Float64frombits(binary.BigEndian.Uint64(scratch[:])), nil
}

// ReadString consumes a length-prefixed string field.
func (reader *Reader) ReadString() (string, error) {
	if err := reader.expect(tagString); err != nil {
		return "", err
	}
	var scratch [4]byte
	if _, err := io.ReadFull(reader.buf, scratch[:]); err != nil {
		return "", fmt.Errorf("stream exhausted reading string length: %w", err)
	}
	length := binary.BigEndian.Uint32(scratch[:])
	value := make([]byte, length)
	if _, err := io.ReadFull(reader.buf, value); err != nil {
		return "", fmt.Errorf("stream exhausted reading string body: %w", err)
	}
	return string(value), nil
}
