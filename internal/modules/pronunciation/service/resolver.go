package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"vocabhub/internal/modules/pronunciation/domain"
	pronunciationout "vocabhub/internal/modules/pronunciation/port/out"
	apperrors "vocabhub/internal/platform/errors"
	"vocabhub/internal/platform/logging"
)

type Options struct {
	Accent string
	Locale string
	Rate   float64
}

func DefaultOptions() Options {
	return Options{Accent: "us", Locale: "en-US", Rate: 0.9}
}

// Resolver voices a label: recorded asset first, device synthesizer on any
// failure. One attempt runs at a time; requests made meanwhile are ignored.
type Resolver struct {
	lookup pronunciationout.Lookup
	player pronunciationout.Player
	synth  pronunciationout.Synthesizer
	opts   Options
	logger *zap.Logger
	sem    *semaphore.Weighted
}

func NewResolver(lookup pronunciationout.Lookup, player pronunciationout.Player, synth pronunciationout.Synthesizer, opts Options, logger *zap.Logger) *Resolver {
	def := DefaultOptions()
	if opts.Locale == "" {
		opts.Locale = def.Locale
	}
	if opts.Rate <= 0 {
		opts.Rate = def.Rate
	}
	return &Resolver{
		lookup: lookup,
		player: player,
		synth:  synth,
		opts:   opts,
		logger: logging.OrNop(logger).With(zap.String("component", "pronunciation")),
		sem:    semaphore.NewWeighted(1),
	}
}

func (r *Resolver) Pronounce(ctx context.Context, label string) (domain.Result, error) {
	const op = "pronunciation.pronounce"
	label = strings.TrimSpace(label)
	if label == "" {
		return domain.Result{}, fmt.Errorf("%s: %w: empty label", op, apperrors.ErrInvalidInput)
	}
	if !r.sem.TryAcquire(1) {
		return domain.Result{Label: label, Ignored: true}, nil
	}
	defer r.sem.Release(1)

	assetURL, assetErr := r.playAsset(ctx, label)
	if assetErr == nil {
		return domain.Result{Label: label, Source: domain.SourceAsset, AssetURL: assetURL}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return domain.Result{Label: label}, ctxErr
	}
	r.logger.Debug("asset playback failed, using synthesizer",
		zap.String("label", label),
		zap.String("kind", string(apperrors.KindOf(assetErr))),
		zap.Error(assetErr),
	)

	if r.synth == nil || !r.synth.Available() {
		return domain.Result{Label: label}, apperrors.New(op, apperrors.KindSynthesisUnavailable, errors.Join(errors.New("no speech synthesizer on this device"), assetErr))
	}
	if err := r.synth.Speak(ctx, label, r.opts.Locale, r.opts.Rate); err != nil {
		r.logger.Warn("speech synthesis failed", zap.String("label", label), zap.Error(err))
		return domain.Result{Label: label}, apperrors.New(op, apperrors.KindSynthesisUnavailable, errors.Join(err, assetErr))
	}
	return domain.Result{Label: label, Source: domain.SourceSynthesizer}, nil
}

func (r *Resolver) playAsset(ctx context.Context, label string) (string, error) {
	if r.lookup == nil || r.player == nil {
		return "", apperrors.New("pronunciation.lookup", apperrors.KindLookup, errors.New("no dictionary configured"))
	}
	assets, err := r.lookup.Lookup(ctx, label)
	if err != nil {
		if apperrors.KindOf(err) == "" {
			err = apperrors.New("pronunciation.lookup", apperrors.KindLookup, err)
		}
		return "", err
	}
	assetURL, ok := domain.PickAsset(assets, r.opts.Accent)
	if !ok {
		return "", apperrors.New("pronunciation.lookup", apperrors.KindAssetMissing, fmt.Errorf("no audio for %q", label))
	}
	if err := r.player.Play(ctx, assetURL); err != nil {
		if apperrors.KindOf(err) == "" {
			err = apperrors.New("pronunciation.play", apperrors.KindPlayback, err)
		}
		return assetURL, err
	}
	return assetURL, nil
}
