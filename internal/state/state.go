// Package state holds the console's shared mutable state behind a single
// store object. Every field has one writer path, and writes are whole-value
// replacements or functional merges, never partial field pokes, so no
// reader can observe a half-written record.
package state

import (
	"sync"

	"github.com/tanicerdas/seedbot-console/model"
)

// Store is the application state container, passed by reference to the
// components that read it.
type Store struct {
	mu         sync.RWMutex
	robot      model.RobotState
	mode       model.Mode
	probing    bool
	readings   model.SensorReadings
	thresholds model.Thresholds
}

// NewStore creates a store with the resting defaults.
func NewStore() *Store {
	return &Store{
		robot: model.RobotState{
			ConnectionStatus: model.ConnectionDisconnected,
			OperationStatus:  model.StatusStandby,
		},
		mode: model.ModeManual,
	}
}

// Robot returns the cached robot state.
func (s *Store) Robot() model.RobotState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.robot
}

// SetRobot replaces the cached robot state wholesale.
func (s *Store) SetRobot(r model.RobotState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.robot = r
}

// UpdateRobot applies a functional merge against the latest cached robot
// state. The revert timer uses this so a flip to Standby never clobbers
// fields written after the timer was armed.
func (s *Store) UpdateRobot(fn func(model.RobotState) model.RobotState) model.RobotState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.robot = fn(s.robot)
	return s.robot
}

// Mode returns the control mode.
func (s *Store) Mode() model.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// SetMode replaces the control mode.
func (s *Store) SetMode(m model.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
}

// Probing reports whether a sensor probe is in progress.
func (s *Store) Probing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.probing
}

// SetProbing flips the probe flag.
func (s *Store) SetProbing(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.probing = v
}

// Readings returns the cached sensor six-tuple.
func (s *Store) Readings() model.SensorReadings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readings
}

// SetReadings replaces the cached sensor six-tuple.
func (s *Store) SetReadings(r model.SensorReadings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings = r
}

// Thresholds returns the cached threshold configuration. May be nil when
// none has been loaded; classification then uses built-in defaults.
func (s *Store) Thresholds() model.Thresholds {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.thresholds
}

// SetThresholds replaces the cached threshold configuration.
func (s *Store) SetThresholds(t model.Thresholds) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.thresholds = t
}
