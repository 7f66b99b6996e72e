// Package transcoder invokes the external ffmpeg encoder against staged
// files. The encoder is a black box: only its exit status and the
// presence of the output file are authoritative, stdout is never
// inspected.
package transcoder

import (
	"context"
	"io"
	"os/exec"
	"time"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.opentelemetry.io/otel"

	"audio_conversion/entity"
)

const traceName = "transcoder"

// stderrCap bounds how much encoder diagnostic output is retained.
const stderrCap = 64 * 1024

const truncationMark = "\n...[stderr truncated]"

type Transcoder struct {
	timeout time.Duration
	bitrate string

	// newCmd builds the encoder command. Tests swap in stub processes.
	newCmd func(inputPath, outputPath string, stderr io.Writer) *exec.Cmd
}

func New(timeout time.Duration, bitrate string) *Transcoder {
	t := &Transcoder{timeout: timeout, bitrate: bitrate}
	t.newCmd = t.ffmpegCmd

	return t
}

func (t *Transcoder) ffmpegCmd(inputPath, outputPath string, stderr io.Writer) *exec.Cmd {
	cmd := ffmpeg.Input(inputPath).
		Output(outputPath, ffmpeg.KwArgs{"f": "mp3", "acodec": "libmp3lame", "b:a": t.bitrate}).
		OverWriteOutput().
		Compile()
	cmd.Stderr = stderr

	return cmd
}

// Convert launches the encoder and waits for it synchronously, bounded
// by the configured deadline. On expiry the child is killed and reaped
// before returning, so no orphaned encoder processes accumulate.
func (t *Transcoder) Convert(ctx context.Context, inputPath, outputPath string) error {
	_, span := otel.Tracer(traceName).Start(ctx, "Convert")
	defer span.End()

	stderr := newCappedBuffer(stderrCap)
	cmd := t.newCmd(inputPath, outputPath, stderr)

	if err := cmd.Start(); err != nil {
		return errors.Wrap(entity.ErrConversionFailed, err.Error())
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(t.timeout)
	defer timer.Stop()

	select {
	case <-timer.C:
		_ = cmd.Process.Kill()
		<-done
		return errors.Wrapf(entity.ErrConversionTimeout, "killed after %s", t.timeout)
	case err := <-done:
		if err != nil {
			return errors.Wrapf(entity.ErrConversionFailed, "%v: %s", err, stderr.String())
		}
	}

	return nil
}

// cappedBuffer keeps the first cap bytes written and drops the rest,
// appending a marker when anything was dropped.
type cappedBuffer struct {
	buf       []byte
	cap       int
	truncated bool
}

func newCappedBuffer(cap int) *cappedBuffer {
	return &cappedBuffer{cap: cap}
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if room := b.cap - len(b.buf); room > 0 {
		if len(p) > room {
			b.buf = append(b.buf, p[:room]...)
			b.truncated = true
		} else {
			b.buf = append(b.buf, p...)
		}
	} else if len(p) > 0 {
		b.truncated = true
	}

	return len(p), nil
}

func (b *cappedBuffer) String() string {
	if b.truncated {
		return string(b.buf) + truncationMark
	}

	return string(b.buf)
}
