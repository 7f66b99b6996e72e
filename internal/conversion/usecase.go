package conversion

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"audio_conversion/config"
	"audio_conversion/entity"
	"audio_conversion/internal/telemetry/metric"
	"audio_conversion/pkg/logger"
	"audio_conversion/pkg/transcoder"
	"audio_conversion/pkg/workspace"
)

const traceName = "conversion-usecase"

// Encoder runs the external encoder against a staged input file.
type Encoder interface {
	Convert(ctx context.Context, inputPath, outputPath string) error
}

type ConversionUsecase struct {
	ws        *workspace.Manager
	enc       Encoder
	l         logger.Interface
	maxUpload int64

	// slots caps concurrently running encoders. Requests beyond the cap
	// are rejected, never queued.
	slots chan struct{}
}

func NewConversionUsecase(cfg *config.Config, l logger.Interface) *ConversionUsecase {
	ws := workspace.NewManager(cfg.Conversion.TmpRoot, l)
	enc := transcoder.New(cfg.Conversion.EncoderTimeout, cfg.Conversion.Bitrate)

	return &ConversionUsecase{
		ws:        ws,
		enc:       enc,
		l:         l,
		maxUpload: cfg.Conversion.MaxUploadBytes,
		slots:     make(chan struct{}, cfg.Conversion.MaxInFlight),
	}
}

// Convert drives one payload through validate, stage, invoke and
// collect. The workspace is released on every exit path, so no request
// ever leaks scratch files, and validation failures never allocate one.
func (c *ConversionUsecase) Convert(ctx context.Context, audio entity.Audio) (res *entity.ConversionResult, err error) {
	ctx, span := otel.Tracer(traceName).Start(ctx, "Convert")
	defer span.End()

	span.SetAttributes(attribute.String("ext", audio.Ext))
	span.SetAttributes(attribute.Int("payload_bytes", len(audio.Body)))

	started := time.Now()
	defer func() {
		metric.ConversionDuration.Observe(time.Since(started).Seconds())
		metric.ConversionsTotal.WithLabelValues(outcomeLabel(err)).Inc()
	}()

	if len(audio.Body) == 0 {
		return nil, entity.ErrInvalidInput
	}

	if int64(len(audio.Body)) > c.maxUpload {
		return nil, errors.Wrapf(entity.ErrPayloadTooLarge, "%d bytes, cap %d", len(audio.Body), c.maxUpload)
	}

	select {
	case c.slots <- struct{}{}:
		metric.ConversionsInFlight.Inc()
		defer func() {
			<-c.slots
			metric.ConversionsInFlight.Dec()
		}()
	default:
		return nil, entity.ErrTooManyRequests
	}

	ws, err := c.ws.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer c.ws.Release(ws)

	if err := c.ws.WriteInput(ctx, ws, audio.Body); err != nil {
		return nil, err
	}

	if err := c.enc.Convert(ctx, ws.InputPath(), ws.OutputPath()); err != nil {
		return nil, err
	}

	out, err := c.ws.ReadOutput(ctx, ws)
	if err != nil {
		return nil, err
	}

	return &entity.ConversionResult{
		Audio: entity.Audio{Ext: "mp3", Body: out},
		Size:  int64(len(out)),
	}, nil
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, entity.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, entity.ErrPayloadTooLarge):
		return "payload_too_large"
	case errors.Is(err, entity.ErrTooManyRequests):
		return "rejected_busy"
	case errors.Is(err, entity.ErrConversionTimeout):
		return "timeout"
	case errors.Is(err, entity.ErrOutputNotFound):
		return "no_output"
	default:
		return "failed"
	}
}
