package arith_test

import (
	"testing"

	"github.com/peake100/amqpSamples-go/arith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type ArithSuite struct {
	suite.Suite
}

func (s *ArithSuite) TestApply() {
	result, ok := arith.Plus.Apply(5, 4)
	s.True(ok)
	s.Equal(9.0, result)

	result, ok = arith.Minus.Apply(5, 4)
	s.True(ok)
	s.Equal(1.0, result)

	result, ok = arith.Times.Apply(5, 4)
	s.True(ok)
	s.Equal(20.0, result)

	result, ok = arith.Divide.Apply(5, 4)
	s.True(ok)
	s.Equal(1.25, result)
}

func (s *ArithSuite) TestDivideByZeroFails() {
	_, ok := arith.Divide.Apply(5, 0)
	s.False(ok, "dividing by zero should not produce a result")
}

func (s *ArithSuite) TestRequestRoundTrip() {
	payload := arith.EncodeRequest(arith.Times, 7, -3)

	op, left, right, err := arith.DecodeRequest(payload)
	s.NoError(err, "decode request")
	s.Equal(arith.Times, op)
	s.Equal(int32(7), left)
	s.Equal(int32(-3), right)
}

func (s *ArithSuite) TestUnknownOrdinalRejected() {
	payload := arith.EncodeRequest(arith.Operation(9), 1, 2)

	_, _, _, err := arith.DecodeRequest(payload)
	s.Error(err, "ordinal 9 is not a known operation")
}

func (s *ArithSuite) TestTruncatedRequestRejected() {
	payload := arith.EncodeRequest(arith.Plus, 1, 2)

	_, _, _, err := arith.DecodeRequest(payload[:len(payload)-2])
	s.Error(err, "truncated request should not decode")
}

func (s *ArithSuite) TestReplyRoundTrip() {
	ok, result, err := arith.DecodeReply(arith.EncodeReply(true, 1.25))
	s.NoError(err, "decode reply")
	s.True(ok)
	s.Equal(1.25, result)

	ok, result, err = arith.DecodeReply(arith.EncodeReply(false, 0))
	s.NoError(err, "decode failed reply")
	s.False(ok)
	s.Equal(0.0, result)
}

func TestArithSuite(t *testing.T) {
	suite.Run(t, new(ArithSuite))
}

func TestOperationNames(t *testing.T) {
	assert.Equal(t, "PLUS", arith.Plus.String())
	assert.Equal(t, "MINUS", arith.Minus.String())
	assert.Equal(t, "TIMES", arith.Times.String())
	assert.Equal(t, "DIVIDE", arith.Divide.String())
	assert.Contains(t, arith.Operation(99).String(), "UNKNOWN")
}
