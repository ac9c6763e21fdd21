// Package flow sequences the multi-request operations that a single on-chain
// instruction cannot express, keeping a per-step ledger so callers can render
// progress and pinpoint the step that failed.
package flow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/Vishwa9011/solcraft/token"
	"github.com/Vishwa9011/solcraft/uploader"
	"github.com/gagliardetto/solana-go"
)

// StepStatus is the lifecycle of a single pipeline step.
type StepStatus int

const (
	StepPending StepStatus = iota
	StepActive
	StepSuccess
	StepError
	StepSkipped
)

func (s StepStatus) String() string {
	switch s {
	case StepPending:
		return "pending"
	case StepActive:
		return "active"
	case StepSuccess:
		return "success"
	case StepError:
		return "error"
	case StepSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Step names are stable identifiers, usable as UI keys.
const (
	StepUploadImage    = "upload-image"
	StepUploadMetadata = "upload-metadata"
	StepCreateToken    = "create-token"
)

type Step struct {
	Name   string
	Status StepStatus
	Err    error
}

// MetadataUploader is the slice of the uploader client the pipeline needs.
type MetadataUploader interface {
	UploadImage(ctx context.Context, filename string, data io.Reader) (string, error)
	UploadMetadata(ctx context.Context, meta uploader.TokenMetadata) (string, error)
}

// TokenCreator is the slice of the token service the pipeline needs.
type TokenCreator interface {
	Create(ctx context.Context, params token.CreateParams) (token.CreateResult, error)
}

// CreateTokenParams carry everything the three-step creation needs. Provide
// either Logo (raw bytes to host) or ImageURL (already hosted); when both are
// absent the image step is skipped and the metadata carries no image.
type CreateTokenParams struct {
	Name     string
	Symbol   string
	Decimals uint8
	Supply   string

	Description string
	Logo        io.Reader
	LogoName    string
	ImageURL    string

	ExternalURL string
	Twitter     string
	Discord     string
	Website     string
	Telegram    string
}

// CreateTokenResult is returned whether or not the pipeline completed; Steps
// always reflects how far it got.
type CreateTokenResult struct {
	Signature   solana.Signature
	Mint        solana.PublicKey
	ImageURL    string
	MetadataURI string
	Steps       []Step
}

type Option func(*Flow)

// WithObserver registers a callback invoked with a ledger snapshot after
// every step transition.
func WithObserver(fn func(steps []Step)) Option {
	return func(f *Flow) {
		f.observe = fn
	}
}

type Flow struct {
	log      *slog.Logger
	uploader MetadataUploader
	tokens   TokenCreator
	observe  func(steps []Step)

	mu    sync.Mutex
	steps []Step
}

var (
	ErrLoggerRequired   = errors.New("logger is required")
	ErrUploaderRequired = errors.New("uploader is required")
	ErrTokensRequired   = errors.New("token service is required")
)

func New(log *slog.Logger, up MetadataUploader, tokens TokenCreator, opts ...Option) (*Flow, error) {
	if log == nil {
		return nil, ErrLoggerRequired
	}
	if up == nil {
		return nil, ErrUploaderRequired
	}
	if tokens == nil {
		return nil, ErrTokensRequired
	}
	f := &Flow{
		log:      log,
		uploader: up,
		tokens:   tokens,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Steps returns a snapshot of the current ledger.
func (f *Flow) Steps() []Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Step, len(f.steps))
	copy(out, f.steps)
	return out
}

func (f *Flow) resetSteps() {
	f.mu.Lock()
	f.steps = []Step{
		{Name: StepUploadImage, Status: StepPending},
		{Name: StepUploadMetadata, Status: StepPending},
		{Name: StepCreateToken, Status: StepPending},
	}
	f.mu.Unlock()
	f.notify()
}

func (f *Flow) setStep(name string, status StepStatus, err error) {
	f.mu.Lock()
	for i := range f.steps {
		if f.steps[i].Name == name {
			f.steps[i].Status = status
			f.steps[i].Err = err
			break
		}
	}
	f.mu.Unlock()
	f.notify()
}

func (f *Flow) notify() {
	if f.observe != nil {
		f.observe(f.Steps())
	}
}

// CreateToken runs upload-image, upload-metadata, create-token in order. A
// failing step halts the pipeline; steps after it stay pending and the
// returned error names the step that failed.
func (f *Flow) CreateToken(ctx context.Context, params CreateTokenParams) (CreateTokenResult, error) {
	f.resetSteps()
	result := CreateTokenResult{}

	imageURL, err := f.runImageStep(ctx, params)
	if err != nil {
		result.Steps = f.Steps()
		return result, fmt.Errorf("step %s: %w", StepUploadImage, err)
	}
	result.ImageURL = imageURL

	uri, err := f.runMetadataStep(ctx, params, imageURL)
	if err != nil {
		result.Steps = f.Steps()
		return result, fmt.Errorf("step %s: %w", StepUploadMetadata, err)
	}
	result.MetadataURI = uri

	f.setStep(StepCreateToken, StepActive, nil)
	created, err := f.tokens.Create(ctx, token.CreateParams{
		Name:     params.Name,
		Symbol:   params.Symbol,
		URI:      uri,
		Decimals: params.Decimals,
		Supply:   params.Supply,
	})
	if err != nil {
		f.setStep(StepCreateToken, StepError, err)
		result.Steps = f.Steps()
		return result, fmt.Errorf("step %s: %w", StepCreateToken, err)
	}
	f.setStep(StepCreateToken, StepSuccess, nil)

	result.Signature = created.Signature
	result.Mint = created.Mint
	result.Steps = f.Steps()
	f.log.Info("Token creation flow finished", "mint", result.Mint, "sig", result.Signature)
	return result, nil
}

func (f *Flow) runImageStep(ctx context.Context, params CreateTokenParams) (string, error) {
	// A pre-hosted URL satisfies the step without a network call; no logo at
	// all skips it.
	if params.ImageURL != "" {
		f.setStep(StepUploadImage, StepSuccess, nil)
		return params.ImageURL, nil
	}
	if params.Logo == nil {
		f.setStep(StepUploadImage, StepSkipped, nil)
		return "", nil
	}

	f.setStep(StepUploadImage, StepActive, nil)
	url, err := f.uploader.UploadImage(ctx, params.LogoName, params.Logo)
	if err != nil {
		f.setStep(StepUploadImage, StepError, err)
		return "", err
	}
	f.setStep(StepUploadImage, StepSuccess, nil)
	return url, nil
}

func (f *Flow) runMetadataStep(ctx context.Context, params CreateTokenParams, imageURL string) (string, error) {
	f.setStep(StepUploadMetadata, StepActive, nil)
	uri, err := f.uploader.UploadMetadata(ctx, uploader.TokenMetadata{
		Name:        params.Name,
		Symbol:      params.Symbol,
		Decimals:    params.Decimals,
		Description: params.Description,
		Image:       imageURL,
		ExternalURL: params.ExternalURL,
		Twitter:     params.Twitter,
		Discord:     params.Discord,
		Website:     params.Website,
		Telegram:    params.Telegram,
	})
	if err != nil {
		f.setStep(StepUploadMetadata, StepError, err)
		return "", err
	}
	f.setStep(StepUploadMetadata, StepSuccess, nil)
	return uri, nil
}
