package fileio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"
)

// ErrCancelled is returned by a Picker or Saver when the user dismissed the
// dialog. Cancelled operations are dropped silently.
var ErrCancelled = errors.New("cancelled")

// Picker chooses and reads a script file.
type Picker interface {
	Pick(ctx context.Context) (Result, error)
}

// Saver writes a script file.
type Saver interface {
	Save(ctx context.Context, content, name string) error
}

// PickerFunc adapts a function to the Picker interface.
type PickerFunc func(ctx context.Context) (Result, error)

func (f PickerFunc) Pick(ctx context.Context) (Result, error) { return f(ctx) }

// SaverFunc adapts a function to the Saver interface.
type SaverFunc func(ctx context.Context, content, name string) error

func (f SaverFunc) Save(ctx context.Context, content, name string) error {
	return f(ctx, content, name)
}

// Service runs picks and saves in the background and reports picks through
// a Slot.
type Service struct {
	picker Picker
	saver  Saver
	slot   *Slot[Result]
	logger *zap.Logger

	wg sync.WaitGroup
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger that receives save failures.
func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a Service. Either of picker or saver may be nil, in
// which case the corresponding operation reports an error.
func NewService(picker Picker, saver Saver, slot *Slot[Result], opts ...ServiceOption) *Service {
	s := &Service{
		picker: picker,
		saver:  saver,
		slot:   slot,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Slot returns the slot picks are delivered to.
func (s *Service) Slot() *Slot[Result] {
	return s.slot
}

// Pick starts a background pick and returns immediately. Its result, or the
// read error, is put into the slot. Invalid UTF-8 content is an error.
func (s *Service) Pick(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		if s.picker == nil {
			s.slot.Put(Result{Err: errors.New("no file picker available")})
			return
		}

		res, err := s.picker.Pick(ctx)
		switch {
		case errors.Is(err, ErrCancelled):
			s.logger.Debug("pick cancelled")
			return
		case err != nil:
			s.slot.Put(Result{Err: fmt.Errorf("open file: %w", err)})
			return
		case !utf8.ValidString(res.Content):
			s.slot.Put(Result{Err: fmt.Errorf("open file %s: not valid UTF-8", res.Name)})
			return
		}
		s.logger.Debug("picked", zap.String("name", res.Name), zap.Int("bytes", len(res.Content)))
		s.slot.Put(res)
	}()
}

// Save starts a background save. There is no result; failures are logged.
func (s *Service) Save(ctx context.Context, content, name string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		if s.saver == nil {
			s.logger.Warn("save skipped: no file saver available", zap.String("name", name))
			return
		}

		err := s.saver.Save(ctx, content, name)
		switch {
		case errors.Is(err, ErrCancelled):
			s.logger.Debug("save cancelled", zap.String("name", name))
		case err != nil:
			s.logger.Error("save failed", zap.String("name", name), zap.Error(err))
		default:
			s.logger.Info("saved", zap.String("name", name), zap.Int("bytes", len(content)))
		}
	}()
}

// Wait blocks until every started pick and save has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}
