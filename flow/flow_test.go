package flow_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/Vishwa9011/solcraft/flow"
	"github.com/Vishwa9011/solcraft/token"
	"github.com/Vishwa9011/solcraft/uploader"
)

type mockUploader struct {
	UploadImageFunc    func(ctx context.Context, filename string, data io.Reader) (string, error)
	UploadMetadataFunc func(ctx context.Context, meta uploader.TokenMetadata) (string, error)
}

func (m *mockUploader) UploadImage(ctx context.Context, filename string, data io.Reader) (string, error) {
	return m.UploadImageFunc(ctx, filename, data)
}

func (m *mockUploader) UploadMetadata(ctx context.Context, meta uploader.TokenMetadata) (string, error) {
	return m.UploadMetadataFunc(ctx, meta)
}

type mockCreator struct {
	CreateFunc func(ctx context.Context, params token.CreateParams) (token.CreateResult, error)
}

func (m *mockCreator) Create(ctx context.Context, params token.CreateParams) (token.CreateResult, error) {
	return m.CreateFunc(ctx, params)
}

func stepByName(t *testing.T, steps []flow.Step, name string) flow.Step {
	t.Helper()
	for _, s := range steps {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("step %q not found", name)
	return flow.Step{}
}

func testParams() flow.CreateTokenParams {
	return flow.CreateTokenParams{
		Name:     "Test Token",
		Symbol:   "TST",
		Decimals: 6,
		Supply:   "1000000",
		Logo:     strings.NewReader("png-bytes"),
		LogoName: "logo.png",
	}
}

func TestCreateToken_AllStepsSucceed(t *testing.T) {
	t.Parallel()

	mint := solana.NewWallet().PublicKey()
	up := &mockUploader{
		UploadImageFunc: func(_ context.Context, filename string, _ io.Reader) (string, error) {
			require.Equal(t, "logo.png", filename)
			return "https://cdn.example.com/logo.png", nil
		},
		UploadMetadataFunc: func(_ context.Context, meta uploader.TokenMetadata) (string, error) {
			require.Equal(t, "https://cdn.example.com/logo.png", meta.Image)
			require.Equal(t, "TST", meta.Symbol)
			return "https://cdn.example.com/meta.json", nil
		},
	}
	creator := &mockCreator{
		CreateFunc: func(_ context.Context, params token.CreateParams) (token.CreateResult, error) {
			require.Equal(t, "https://cdn.example.com/meta.json", params.URI)
			return token.CreateResult{Mint: mint}, nil
		},
	}

	f, err := flow.New(slog.Default(), up, creator)
	require.NoError(t, err)

	result, err := f.CreateToken(context.Background(), testParams())
	require.NoError(t, err)
	require.Equal(t, mint, result.Mint)
	require.Equal(t, "https://cdn.example.com/meta.json", result.MetadataURI)

	for _, name := range []string{flow.StepUploadImage, flow.StepUploadMetadata, flow.StepCreateToken} {
		require.Equal(t, flow.StepSuccess, stepByName(t, result.Steps, name).Status)
	}
}

// A failure in the metadata step must halt the pipeline: the create step
// never runs and the returned error names the step that failed.
func TestCreateToken_MetadataFailureHaltsPipeline(t *testing.T) {
	t.Parallel()

	uploadErr := errors.New("metadata host down")
	up := &mockUploader{
		UploadImageFunc: func(_ context.Context, _ string, _ io.Reader) (string, error) {
			return "https://cdn.example.com/logo.png", nil
		},
		UploadMetadataFunc: func(_ context.Context, _ uploader.TokenMetadata) (string, error) {
			return "", uploadErr
		},
	}
	creator := &mockCreator{
		CreateFunc: func(_ context.Context, _ token.CreateParams) (token.CreateResult, error) {
			t.Fatal("create must not run after an earlier step failed")
			return token.CreateResult{}, nil
		},
	}

	f, err := flow.New(slog.Default(), up, creator)
	require.NoError(t, err)

	result, err := f.CreateToken(context.Background(), testParams())
	require.ErrorIs(t, err, uploadErr)
	require.ErrorContains(t, err, flow.StepUploadMetadata)

	require.Equal(t, flow.StepSuccess, stepByName(t, result.Steps, flow.StepUploadImage).Status)
	failed := stepByName(t, result.Steps, flow.StepUploadMetadata)
	require.Equal(t, flow.StepError, failed.Status)
	require.ErrorIs(t, failed.Err, uploadErr)
	require.Equal(t, flow.StepPending, stepByName(t, result.Steps, flow.StepCreateToken).Status)
}

func TestCreateToken_ImageStepSkippedWithoutLogo(t *testing.T) {
	t.Parallel()

	up := &mockUploader{
		UploadImageFunc: func(_ context.Context, _ string, _ io.Reader) (string, error) {
			t.Fatal("image upload must not run without a logo")
			return "", nil
		},
		UploadMetadataFunc: func(_ context.Context, meta uploader.TokenMetadata) (string, error) {
			require.Empty(t, meta.Image)
			return "https://cdn.example.com/meta.json", nil
		},
	}
	creator := &mockCreator{
		CreateFunc: func(_ context.Context, _ token.CreateParams) (token.CreateResult, error) {
			return token.CreateResult{}, nil
		},
	}

	f, err := flow.New(slog.Default(), up, creator)
	require.NoError(t, err)

	params := testParams()
	params.Logo = nil
	params.LogoName = ""

	result, err := f.CreateToken(context.Background(), params)
	require.NoError(t, err)
	require.Equal(t, flow.StepSkipped, stepByName(t, result.Steps, flow.StepUploadImage).Status)
	require.Equal(t, flow.StepSuccess, stepByName(t, result.Steps, flow.StepUploadMetadata).Status)
}

func TestCreateToken_PreHostedImageSkipsUpload(t *testing.T) {
	t.Parallel()

	up := &mockUploader{
		UploadImageFunc: func(_ context.Context, _ string, _ io.Reader) (string, error) {
			t.Fatal("image upload must not run for a pre-hosted URL")
			return "", nil
		},
		UploadMetadataFunc: func(_ context.Context, meta uploader.TokenMetadata) (string, error) {
			require.Equal(t, "https://example.com/hosted.png", meta.Image)
			return "https://cdn.example.com/meta.json", nil
		},
	}
	creator := &mockCreator{
		CreateFunc: func(_ context.Context, _ token.CreateParams) (token.CreateResult, error) {
			return token.CreateResult{}, nil
		},
	}

	f, err := flow.New(slog.Default(), up, creator)
	require.NoError(t, err)

	params := testParams()
	params.Logo = nil
	params.ImageURL = "https://example.com/hosted.png"

	result, err := f.CreateToken(context.Background(), params)
	require.NoError(t, err)
	require.Equal(t, flow.StepSuccess, stepByName(t, result.Steps, flow.StepUploadImage).Status)
	require.Equal(t, "https://example.com/hosted.png", result.ImageURL)
}

func TestCreateToken_ObserverSeesTransitions(t *testing.T) {
	t.Parallel()

	up := &mockUploader{
		UploadImageFunc: func(_ context.Context, _ string, _ io.Reader) (string, error) {
			return "https://cdn.example.com/logo.png", nil
		},
		UploadMetadataFunc: func(_ context.Context, _ uploader.TokenMetadata) (string, error) {
			return "https://cdn.example.com/meta.json", nil
		},
	}
	creator := &mockCreator{
		CreateFunc: func(_ context.Context, _ token.CreateParams) (token.CreateResult, error) {
			return token.CreateResult{}, nil
		},
	}

	var snapshots [][]flow.Step
	f, err := flow.New(slog.Default(), up, creator, flow.WithObserver(func(steps []flow.Step) {
		snapshots = append(snapshots, steps)
	}))
	require.NoError(t, err)

	_, err = f.CreateToken(context.Background(), testParams())
	require.NoError(t, err)

	// Reset plus two transitions per step.
	require.Len(t, snapshots, 7)
	first := snapshots[0]
	for _, s := range first {
		require.Equal(t, flow.StepPending, s.Status)
	}
	last := snapshots[len(snapshots)-1]
	for _, s := range last {
		require.Equal(t, flow.StepSuccess, s.Status)
	}
}
