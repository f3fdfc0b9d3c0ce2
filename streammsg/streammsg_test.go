package streammsg_test

import (
	"testing"

	"github.com/peake100/amqpSamples-go/streammsg"
	"github.com/stretchr/testify/suite"
)

type StreamSuite struct {
	suite.Suite
}

func (s *StreamSuite) TestFieldsComeBackInOrder() {
	writer := streammsg.NewWriter()
	_ = writer.WriteByte(4)
	writer.WriteInt32(-1500)
	writer.WriteBool(true)
	writer.WriteFloat64(1.25)
	writer.WriteString("hello broker")

	reader := streammsg.NewReader(writer.Bytes())

	b, err := reader.ReadByte()
	s.NoError(err, "read byte")
	s.Equal(byte(4), b)

	i, err := reader.ReadInt32()
	s.NoError(err, "read int32")
	s.Equal(int32(-1500), i)

	ok, err := reader.ReadBool()
	s.NoError(err, "read bool")
	s.True(ok)

	f, err := reader.ReadFloat64()
	s.NoError(err, "read float64")
	s.Equal(1.25, f)

	text, err := reader.ReadString()
	s.NoError(err, "read string")
	s.Equal("hello broker", text)
}

func (s *StreamSuite) TestTypeMismatchIsReported() {
	writer := streammsg.NewWriter()
	writer.WriteInt32(12)

	reader := streammsg.NewReader(writer.Bytes())
	_, err := reader.ReadBool()
	s.Error(err, "reading an int32 as bool should fail")

	mismatch, ok := err.(streammsg.ErrTypeMismatch)
	s.True(ok, "error should be a type mismatch")
	s.NotEqual(mismatch.Want, mismatch.Got)
}

func (s *StreamSuite) TestReadingPastEndFails() {
	writer := streammsg.NewWriter()
	writer.WriteBool(true)

	reader := streammsg.NewReader(writer.Bytes())
	_, err := reader.ReadBool()
	s.NoError(err, "first read")

	_, err = reader.ReadBool()
	s.Error(err, "stream should be exhausted")
}

func (s *StreamSuite) TestEmptyStringRoundTrips() {
	writer := streammsg.NewWriter()
	writer.WriteString("")

	reader := streammsg.NewReader(writer.Bytes())
	text, err := reader.ReadString()
	s.NoError(err, "read empty string")
	s.Equal("", text)
}

func TestStreamSuite(t *testing.T) {
	suite.Run(t, new(StreamSuite))
}
