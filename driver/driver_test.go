package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerber "gerberflow"
)

const minimalSrc = "%FSLAX24Y24*%\n%MOMM*%\n%TF.Part,Single*%\n%ADD10C,1*%\nD10*\nX0Y0D03*\nM02*\n"

func TestParseSynchronous(t *testing.T) {
	d := Open([]byte(minimalSrc))
	result, err := d.Parse()
	require.NoError(t, err)
	assert.Len(t, result.Stream.Objects, 1)
	assert.Equal(t, gerber.UnitMillimeter, result.Units)
}

func TestParseWithDigest(t *testing.T) {
	d := Open([]byte(minimalSrc), WithDigest(true))
	result, err := d.Parse()
	require.NoError(t, err)
	assert.Len(t, result.MD5, 32)
}

func TestHeaderReadsPrologue(t *testing.T) {
	d := Open([]byte(minimalSrc))
	header, err := d.Header()
	require.NoError(t, err)
	assert.Equal(t, gerber.UnitMillimeter, header.Units)
	part, ok := header.FileAttributes.Get(".Part")
	require.True(t, ok)
	assert.Equal(t, []string{"Single"}, part.Values)

	// Header does not consume the Driver's single parse.
	result, err := d.Parse()
	require.NoError(t, err)
	assert.Len(t, result.Stream.Objects, 1)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.gbr")
	require.NoError(t, os.WriteFile(path, []byte(minimalSrc), 0o644))

	d, err := OpenFile(path)
	require.NoError(t, err)
	result, err := d.Parse()
	require.NoError(t, err)
	assert.Len(t, result.Stream.Objects, 1)
}

func TestOpenFileMissingIsIOError(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "nope.gbr"))
	require.Error(t, err)
	var gerr *gerber.GerberFormatError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, gerber.KindIO, gerr.Kind())
}

func TestParseBackgroundDeliversResult(t *testing.T) {
	d := Open([]byte(minimalSrc))
	progress := make(chan float64, 1)
	out := d.ParseBackground(context.Background(), progress)

	select {
	case outcome := <-out:
		require.NoError(t, outcome.Err)
		assert.Len(t, outcome.Result.Stream.Objects, 1)
	case <-time.After(5 * time.Second):
		t.Fatal("background parse did not complete")
	}

	// The progress mailbox holds at most the latest value.
	select {
	case p := <-progress:
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	default:
	}
}

func TestParseBackgroundSecondCallRejected(t *testing.T) {
	d := Open([]byte(minimalSrc))
	<-d.ParseBackground(context.Background(), nil)
	outcome := <-d.ParseBackground(context.Background(), nil)
	assert.ErrorIs(t, outcome.Err, ErrAlreadyStarted)
}

func TestCancelBeforeStartIsNoOp(t *testing.T) {
	d := Open([]byte(minimalSrc))
	d.Cancel() // must not panic or poison the later parse
	result, err := d.Parse()
	require.NoError(t, err)
	assert.Len(t, result.Stream.Objects, 1)
}

// Cooperative cancellation is polled between commands: a pre-closed cancel
// channel stops the interpreter before it emits anything.
func TestInterpreterCancellation(t *testing.T) {
	cancelled := make(chan struct{})
	close(cancelled)
	ip := gerber.New([]byte(minimalSrc), gerber.WithCancel(cancelled))
	_, err := ip.Parse()
	assert.ErrorIs(t, err, gerber.ErrCancelled)
}
