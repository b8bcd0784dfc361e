package api

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"ball-tracker/internal/domain/entity"
)

func TestEnvelopeRoundtrip(t *testing.T) {
	var buf bytes.Buffer

	in := &Envelope{Type: TypeCoords, X: 320, Y: 240, Seq: 42}
	require.NoError(t, WriteEnvelope(&buf, in))

	out, err := ReadEnvelope(bufio.NewReader(&buf))
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestFrameRoundtrip(t *testing.T) {
	var buf bytes.Buffer

	frame := &entity.Frame{
		Seq:    7,
		PTS:    21000,
		Width:  4,
		Height: 2,
		Data:   bytes.Repeat([]byte{1, 2, 3}, 8),
	}
	require.NoError(t, WriteFrame(&buf, frame))

	// После кадра граница сообщения должна сохраниться.
	require.NoError(t, WriteEnvelope(&buf, &Envelope{Type: TypeBye}))

	r := bufio.NewReader(&buf)

	env, err := ReadEnvelope(r)
	require.NoError(t, err)
	require.Equal(t, TypeFrame, env.Type)
	require.Equal(t, len(frame.Data), env.Size)

	got, err := ReadFrameData(r, env)
	require.NoError(t, err)
	require.Equal(t, frame, got)

	bye, err := ReadEnvelope(r)
	require.NoError(t, err)
	require.Equal(t, TypeBye, bye.Type)
}

func TestReadFrameData_InvalidSize(t *testing.T) {
	r := bufio.NewReader(bytes.NewReader(nil))

	_, err := ReadFrameData(r, &Envelope{Type: TypeFrame, Size: 0})
	require.Error(t, err)

	_, err = ReadFrameData(r, &Envelope{Type: TypeFrame, Size: MaxFrameSize + 1})
	require.Error(t, err)
}

func TestReadFrameData_WrongType(t *testing.T) {
	r := bufio.NewReader(bytes.NewReader(nil))

	_, err := ReadFrameData(r, &Envelope{Type: TypeCoords, Size: 8})
	require.Error(t, err)
}

func TestReadEnvelope_BadJSON(t *testing.T) {
	r := bufio.NewReader(bytes.NewBufferString("not json\n"))

	_, err := ReadEnvelope(r)
	require.Error(t, err)
}
