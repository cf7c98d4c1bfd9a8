// Package pipeline owns the mutable analysis session: the current image, the
// stage parameters, and the latest artifact produced by each stage. The
// stages themselves are pure functions (calib, segment, sizes); the session
// threads immutable artifacts between them and invalidates downstream
// artifacts whenever an upstream parameter changes, so a parameter tweak only
// recomputes what it affects.
package pipeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"nanosizer/internal/calib"
	"nanosizer/internal/imageio"
	"nanosizer/internal/segment"
	"nanosizer/internal/sizes"
	"nanosizer/pkg/geometry"
	"nanosizer/pkg/grid"
)

// Stage identifies one step of the analysis pipeline, in execution order.
type Stage int

const (
	StageMask Stage = iota
	StageDistance
	StageMarkers
	StageWatershed
	StageBorder
	StageSizes
	stageCount
)

func (s Stage) String() string {
	switch s {
	case StageMask:
		return "mask"
	case StageDistance:
		return "distance"
	case StageMarkers:
		return "markers"
	case StageWatershed:
		return "watershed"
	case StageBorder:
		return "border"
	case StageSizes:
		return "sizes"
	default:
		return "unknown"
	}
}

// Params holds every user-adjustable pipeline parameter.
type Params struct {
	Threshold    float64 // binarization threshold in [0,1]
	Repair       bool    // run seeded region-growing hole repair
	Quantile     float64 // marker extraction quantile in [0,1]
	BorderMargin int     // border filter margin in pixels
	MinSize      float64 // size window lower bound (physical units, exclusive)
	MaxSize      float64 // size window upper bound (physical units, exclusive)
	BarLength    float64 // physical length of the scale bar for calibration
}

// DefaultParams returns the parameter set the UI starts from.
func DefaultParams() Params {
	return Params{
		Threshold:    0.5,
		Repair:       false,
		Quantile:     0.90,
		BorderMargin: 5,
		MinSize:      0,
		MaxSize:      40,
		BarLength:    100,
	}
}

// EventType identifies session events the UI can subscribe to.
type EventType int

const (
	EventImageLoaded EventType = iota
	EventScaleChanged
	EventRecomputed
)

// Listener is called when a session event occurs.
type Listener func(data interface{})

// Session is the analysis state for one micrograph.
type Session struct {
	mu  sync.RWMutex
	log *logrus.Entry

	params Params

	img  *grid.Dense
	meta *imageio.Meta

	scale    float64 // physical units per pixel, 0 until calibrated
	scaleBar *grid.Mask

	mask     *grid.Mask
	dist     *grid.Dense
	markers  *grid.Labels
	labels   *grid.Labels
	filtered *grid.Labels
	samples  []float64
	fit      sizes.Fit

	valid [stageCount]bool

	listeners map[EventType][]Listener
}

// NewSession creates a session with default parameters.
func NewSession(log *logrus.Logger) *Session {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Session{
		log:       log.WithField("component", "pipeline"),
		params:    DefaultParams(),
		listeners: make(map[EventType][]Listener),
	}
}

// On registers an event listener.
func (s *Session) On(event EventType, l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], l)
}

func (s *Session) emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()
	for _, l := range listeners {
		l(data)
	}
}

// LoadImage reads a micrograph from disk and makes it the session image.
func (s *Session) LoadImage(path string) error {
	img, meta, err := imageio.Load(path)
	if err != nil {
		return err
	}
	s.SetImage(img, meta)
	return nil
}

// SetImage replaces the session image and invalidates every artifact.
func (s *Session) SetImage(img *grid.Dense, meta *imageio.Meta) {
	s.mu.Lock()
	s.img = img
	s.meta = meta
	s.scale = 0
	s.scaleBar = nil
	s.invalidateFrom(StageMask)
	s.mu.Unlock()
	s.emit(EventImageLoaded, meta)
}

// Image returns the current micrograph, nil if none is loaded.
func (s *Session) Image() *grid.Dense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.img
}

// Meta returns metadata for the current micrograph.
func (s *Session) Meta() *imageio.Meta {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meta
}

// Params returns the current parameter set.
func (s *Session) Params() Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// SetParams installs a new parameter set and invalidates exactly the stages
// downstream of the earliest changed parameter.
func (s *Session) SetParams(p Params) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.params
	s.params = p

	switch {
	case old.Threshold != p.Threshold || old.Repair != p.Repair:
		s.invalidateFrom(StageMask)
	case old.Quantile != p.Quantile:
		s.invalidateFrom(StageMarkers)
	case old.BorderMargin != p.BorderMargin:
		s.invalidateFrom(StageBorder)
	case old.MinSize != p.MinSize || old.MaxSize != p.MaxSize:
		s.invalidateFrom(StageSizes)
	}
}

// Calibrate derives the physical scale from a scale-bar selection using the
// configured bar length. The detected bar mask is kept for display.
func (s *Session) Calibrate(sel geometry.RectInt) (float64, error) {
	s.mu.Lock()
	img := s.img
	length := s.params.BarLength
	s.mu.Unlock()
	if img == nil {
		return 0, fmt.Errorf("calibrate: no image loaded")
	}

	scale, bar, err := calib.Calibrate(img, sel, length)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.scale = scale
	s.scaleBar = bar
	s.invalidateFrom(StageSizes)
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"scale": scale, "bar_length": length}).Info("calibrated")
	s.emit(EventScaleChanged, scale)
	return scale, nil
}

// SetScale installs a known scale factor directly, bypassing calibration.
func (s *Session) SetScale(scale float64) error {
	if scale <= 0 {
		return fmt.Errorf("set scale: scale factor must be positive, got %g", scale)
	}
	s.mu.Lock()
	s.scale = scale
	s.scaleBar = nil
	s.invalidateFrom(StageSizes)
	s.mu.Unlock()
	s.emit(EventScaleChanged, scale)
	return nil
}

// Scale returns the current physical scale, 0 if uncalibrated.
func (s *Session) Scale() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scale
}

// ScaleBar returns the detected scale-bar mask from the last calibration.
func (s *Session) ScaleBar() *grid.Mask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scaleBar
}

// invalidateFrom marks a stage and everything after it stale. Caller holds mu.
func (s *Session) invalidateFrom(stage Stage) {
	for st := stage; st < stageCount; st++ {
		s.valid[st] = false
	}
}

// Recompute runs every stale stage in order. Stages before the first stale
// one keep their artifacts untouched. The size stage needs a calibrated
// scale; without one, recomputation stops after the border filter and an
// error is returned while all geometric artifacts stay valid.
func (s *Session) Recompute() error {
	err := s.recompute()
	if err == nil {
		s.emit(EventRecomputed, nil)
	}
	return err
}

func (s *Session) recompute() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.img == nil {
		return fmt.Errorf("recompute: no image loaded")
	}

	for st := Stage(0); st < stageCount; st++ {
		if s.valid[st] {
			continue
		}
		start := time.Now()
		if err := s.runStage(st); err != nil {
			s.log.WithFields(logrus.Fields{"stage": st.String(), "err": err}).Warn("stage failed")
			return err
		}
		s.valid[st] = true
		s.log.WithFields(logrus.Fields{
			"stage":    st.String(),
			"duration": time.Since(start).Round(time.Microsecond).String(),
		}).Debug("stage complete")
	}

	return nil
}

// runStage executes one stage from the current upstream artifacts.
// Caller holds mu.
func (s *Session) runStage(st Stage) error {
	switch st {
	case StageMask:
		mask := segment.Binarize(s.img, s.params.Threshold)
		if s.params.Repair {
			repaired, err := segment.Repair(s.img, mask)
			if err != nil {
				return err
			}
			mask = repaired
		}
		s.mask = mask
	case StageDistance:
		s.dist = segment.DistanceTransform(s.mask)
	case StageMarkers:
		markers, err := segment.ExtractMarkers(s.dist, s.params.Quantile)
		if err != nil {
			return err
		}
		s.markers = markers
	case StageWatershed:
		labels, err := segment.Watershed(s.dist, s.markers, s.mask)
		if err != nil {
			return err
		}
		s.labels = labels
	case StageBorder:
		s.filtered = segment.FilterBorder(s.labels, s.params.BorderMargin)
	case StageSizes:
		if s.scale <= 0 {
			return fmt.Errorf("recompute: size estimation needs a calibrated scale")
		}
		samples, fit, err := sizes.Estimate(s.filtered, s.scale, s.params.MinSize, s.params.MaxSize)
		if err != nil {
			return err
		}
		s.samples = samples
		s.fit = fit
	}
	return nil
}

// Mask returns the latest binarized (and possibly repaired) mask.
func (s *Session) Mask() *grid.Mask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mask
}

// DistanceField returns the latest distance transform.
func (s *Session) DistanceField() *grid.Dense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dist
}

// Markers returns the latest marker seeds.
func (s *Session) Markers() *grid.Labels {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.markers
}

// Labels returns the latest clipped watershed label map.
func (s *Session) Labels() *grid.Labels {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.labels
}

// Filtered returns the latest border-filtered label map.
func (s *Session) Filtered() *grid.Labels {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filtered
}

// Results returns the latest size samples and Normal fit.
func (s *Session) Results() ([]float64, sizes.Fit) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.samples, s.fit
}
