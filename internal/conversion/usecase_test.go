package conversion

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audio_conversion/entity"
	"audio_conversion/pkg/logger"
	"audio_conversion/pkg/workspace"
)

type stubEncoder struct {
	fn func(ctx context.Context, inputPath, outputPath string) error
}

func (s *stubEncoder) Convert(ctx context.Context, inputPath, outputPath string) error {
	return s.fn(ctx, inputPath, outputPath)
}

func newTestUsecase(t *testing.T, enc Encoder, maxUpload int64, maxInFlight int) (*ConversionUsecase, string) {
	t.Helper()

	root := filepath.Join(t.TempDir(), "scratch")
	l := logger.New("error")

	return &ConversionUsecase{
		ws:        workspace.NewManager(root, l),
		enc:       enc,
		l:         l,
		maxUpload: maxUpload,
		slots:     make(chan struct{}, maxInFlight),
	}, root
}

func leftoverWorkspaces(t *testing.T, root string) int {
	t.Helper()

	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return 0
	}
	require.NoError(t, err)
	return len(entries)
}

func TestConvertSuccessReleasesWorkspace(t *testing.T) {
	enc := &stubEncoder{fn: func(ctx context.Context, inputPath, outputPath string) error {
		return os.WriteFile(outputPath, []byte("mp3 bytes"), 0o600)
	}}
	uc, root := newTestUsecase(t, enc, 1024, 2)

	res, err := uc.Convert(context.Background(), entity.Audio{Ext: "ogg", Body: []byte("OggS payload")})
	require.NoError(t, err)

	assert.Equal(t, "mp3", res.Audio.Ext)
	assert.Equal(t, []byte("mp3 bytes"), res.Audio.Body)
	assert.Equal(t, int64(len("mp3 bytes")), res.Size)
	assert.Equal(t, 0, leftoverWorkspaces(t, root))
}

func TestEmptyPayloadRejectedBeforeStaging(t *testing.T) {
	enc := &stubEncoder{fn: func(ctx context.Context, inputPath, outputPath string) error {
		t.Fatal("encoder must not run for an empty payload")
		return nil
	}}
	uc, root := newTestUsecase(t, enc, 1024, 2)

	_, err := uc.Convert(context.Background(), entity.Audio{Ext: "ogg"})
	assert.ErrorIs(t, err, entity.ErrInvalidInput)
	assert.Equal(t, 0, leftoverWorkspaces(t, root))
}

func TestOversizedPayloadRejectedBeforeEncoder(t *testing.T) {
	enc := &stubEncoder{fn: func(ctx context.Context, inputPath, outputPath string) error {
		t.Fatal("encoder must not run for an oversized payload")
		return nil
	}}
	uc, root := newTestUsecase(t, enc, 4, 2)

	_, err := uc.Convert(context.Background(), entity.Audio{Ext: "ogg", Body: []byte("12345")})
	assert.ErrorIs(t, err, entity.ErrPayloadTooLarge)
	assert.Equal(t, 0, leftoverWorkspaces(t, root))
}

func TestEncoderFailureReleasesWorkspace(t *testing.T) {
	enc := &stubEncoder{fn: func(ctx context.Context, inputPath, outputPath string) error {
		return errors.Wrap(entity.ErrConversionFailed, "exit status 1: unsupported format")
	}}
	uc, root := newTestUsecase(t, enc, 1024, 2)

	_, err := uc.Convert(context.Background(), entity.Audio{Ext: "ogg", Body: []byte("OggS")})
	assert.ErrorIs(t, err, entity.ErrConversionFailed)
	assert.Equal(t, 0, leftoverWorkspaces(t, root))
}

func TestEncoderTimeoutReleasesWorkspace(t *testing.T) {
	enc := &stubEncoder{fn: func(ctx context.Context, inputPath, outputPath string) error {
		return entity.ErrConversionTimeout
	}}
	uc, root := newTestUsecase(t, enc, 1024, 2)

	_, err := uc.Convert(context.Background(), entity.Audio{Ext: "ogg", Body: []byte("OggS")})
	assert.ErrorIs(t, err, entity.ErrConversionTimeout)
	assert.Equal(t, 0, leftoverWorkspaces(t, root))
}

func TestZeroExitWithoutOutputIsDistinctFailure(t *testing.T) {
	enc := &stubEncoder{fn: func(ctx context.Context, inputPath, outputPath string) error {
		return nil
	}}
	uc, root := newTestUsecase(t, enc, 1024, 2)

	_, err := uc.Convert(context.Background(), entity.Audio{Ext: "ogg", Body: []byte("OggS")})
	assert.ErrorIs(t, err, entity.ErrOutputNotFound)
	assert.Equal(t, 0, leftoverWorkspaces(t, root))
}

func TestInFlightCapRejectsInsteadOfQueueing(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	enc := &stubEncoder{fn: func(ctx context.Context, inputPath, outputPath string) error {
		close(entered)
		<-release
		return os.WriteFile(outputPath, []byte("mp3"), 0o600)
	}}
	uc, _ := newTestUsecase(t, enc, 1024, 1)

	firstDone := make(chan error, 1)
	go func() {
		_, err := uc.Convert(context.Background(), entity.Audio{Ext: "ogg", Body: []byte("OggS")})
		firstDone <- err
	}()

	<-entered
	_, err := uc.Convert(context.Background(), entity.Audio{Ext: "ogg", Body: []byte("OggS")})
	assert.ErrorIs(t, err, entity.ErrTooManyRequests)

	close(release)
	require.NoError(t, <-firstDone)
}

func TestConcurrentRequestsUseIndependentWorkspaces(t *testing.T) {
	var mu sync.Mutex
	inputPaths := map[string]struct{}{}

	enc := &stubEncoder{fn: func(ctx context.Context, inputPath, outputPath string) error {
		mu.Lock()
		inputPaths[inputPath] = struct{}{}
		mu.Unlock()
		return os.WriteFile(outputPath, []byte(inputPath), 0o600)
	}}
	uc, root := newTestUsecase(t, enc, 1024, 4)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := uc.Convert(context.Background(), entity.Audio{Ext: "ogg", Body: []byte("identical payload")})
			if err == nil {
				assert.NotEmpty(t, res.Audio.Body)
			}
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	for err := range results {
		require.NoError(t, err)
	}

	mu.Lock()
	assert.Len(t, inputPaths, 2)
	mu.Unlock()
	assert.Equal(t, 0, leftoverWorkspaces(t, root))
}
