package v1

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"audio_conversion/entity"
	"audio_conversion/pkg/logger"
)

const traceName = "conversion-api"

var oggMagic = []byte("OggS")

type conversionRoutes struct {
	cu entity.ConversionUsecase
	l  logger.Interface

	maxUpload int64
}

func newConversionRoutes(handler *gin.RouterGroup, cu entity.ConversionUsecase, l logger.Interface, maxUpload int64) {
	r := &conversionRoutes{cu, l, maxUpload}

	h := handler.Group("/audio")
	{
		h.POST("/convert", r.convert)
	}
}

// @Summary     convert audio
// @Description convert an uploaded ogg/opus payload to mp3
// @ID          convert-audio
// @Tags  	    conversion
// @Accept      octet-stream
// @Produce     octet-stream
// @Success     200
// @Failure     400
// @Failure     500
// @Failure     503
// @Failure     504
// @Router      /audio/convert [post]
func (r *conversionRoutes) convert(c *gin.Context) {
	ctx, span := otel.Tracer(traceName).Start(c.Request.Context(), "convert-api")
	defer span.End()

	// Read one byte past the cap at most: enough for the usecase to
	// classify the payload as oversized without buffering the excess.
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, r.maxUpload+1))
	if err != nil {
		r.l.Error(err, "http - v1 - convert")
		errorResponse(c, http.StatusBadRequest, "could not read payload")
		return
	}

	audio := entity.Audio{Ext: sourceExt(c.ContentType(), body), Body: body}

	res, err := r.cu.Convert(ctx, audio)
	if err != nil {
		// Full diagnostics (encoder stderr included) stay in the server
		// log; the caller only sees the sanitized message.
		r.l.Error(err, "http - v1 - convert")
		status, msg := statusFromError(err)
		errorResponse(c, status, msg)
		return
	}

	c.Data(http.StatusOK, "audio/mpeg", res.Audio.Body)
}

// sourceExt records the declared or sniffed source container. It is
// informational: the encoder does the real format validation.
func sourceExt(contentType string, body []byte) string {
	switch contentType {
	case "audio/opus":
		return "opus"
	case "audio/ogg":
		return "ogg"
	}
	if bytes.HasPrefix(body, oggMagic) {
		return "ogg"
	}
	return "bin"
}

func statusFromError(err error) (int, string) {
	switch {
	case errors.Is(err, entity.ErrInvalidInput):
		return http.StatusBadRequest, "invalid audio payload"
	case errors.Is(err, entity.ErrPayloadTooLarge):
		return http.StatusBadRequest, "payload too large"
	case errors.Is(err, entity.ErrTooManyRequests):
		return http.StatusServiceUnavailable, "too many conversions in flight"
	case errors.Is(err, entity.ErrConversionTimeout):
		return http.StatusGatewayTimeout, "conversion timed out"
	default:
		return http.StatusInternalServerError, "conversion failed"
	}
}
