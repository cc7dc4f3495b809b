// Package robot owns the robot command lifecycle: precondition checks,
// command dispatch, the single-slot revert-to-Standby timer, and the
// per-view status pollers.
package robot

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tanicerdas/seedbot-console/internal/backend"
	"github.com/tanicerdas/seedbot-console/internal/observability"
	"github.com/tanicerdas/seedbot-console/internal/sensor"
	"github.com/tanicerdas/seedbot-console/internal/state"
	"github.com/tanicerdas/seedbot-console/internal/timing"
	"github.com/tanicerdas/seedbot-console/model"
)

// Command actions the manual-control view can issue.
const (
	ActionMaju           = "Maju"
	ActionMundur         = "Mundur"
	ActionKiri           = "Kiri"
	ActionKanan          = "Kanan"
	ActionStop           = "Stop"
	ActionReturnToBase   = "Return to Base"
	ActionTancapSensor   = "Tancap Sensor"
	ActionMulaiPenaburan = "Mulai Penaburan"
)

// Backend is the slice of the backend client the controller drives.
type Backend interface {
	RobotControl(ctx context.Context, token, action string) (backend.ControlResult, error)
	GetRobotStatus(ctx context.Context, token string) (model.RobotState, error)
	UpdateRobotStatus(ctx context.Context, token string, s model.RobotState) (model.RobotState, error)
	CreateRobotHistory(ctx context.Context, token string, e model.HistoryEntry) error
	GetSensorData(ctx context.Context, token string) (model.SensorReadings, error)
}

// Controller issues robot commands and owns the revert timer. The timer is
// a detached task keyed by a single slot: arming a new revert replaces any
// pending one, and view navigation never tears it down.
type Controller struct {
	store     *state.Store
	api       Backend
	estimator *sensor.Estimator
	revert    timing.Scheduler
	logger    *zap.Logger
	metrics   *observability.Metrics

	directionalRevert time.Duration
	terminalRevert    time.Duration
}

// Config carries the controller's collaborators and revert delays.
type Config struct {
	Store     *state.Store
	API       Backend
	Estimator *sensor.Estimator
	// Revert is the single timer slot. Defaults to the wall-clock scheduler;
	// tests pass a manual one.
	Revert            timing.Scheduler
	DirectionalRevert time.Duration
	TerminalRevert    time.Duration
	Logger            *zap.Logger
	Metrics           *observability.Metrics
}

// NewController creates a controller.
func NewController(cfg Config) *Controller {
	revert := cfg.Revert
	if revert == nil {
		revert = timing.NewSlotScheduler()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		store:             cfg.Store,
		api:               cfg.API,
		estimator:         cfg.Estimator,
		revert:            revert,
		logger:            logger,
		metrics:           cfg.Metrics,
		directionalRevert: cfg.DirectionalRevert,
		terminalRevert:    cfg.TerminalRevert,
	}
}

// CommandResult reports a confirmed command back to the caller.
type CommandResult struct {
	Message         string                `json:"message"`
	OperationStatus model.OperationStatus `json:"operationStatus"`
	// SnapshotError carries a non-fatal history write failure during
	// Tancap Sensor. The command itself still succeeded.
	SnapshotError string `json:"snapshotError,omitempty"`
}

func directional(action string) bool {
	switch action {
	case ActionMaju, ActionMundur, ActionKiri, ActionKanan:
		return true
	}
	return false
}

// IssueCommand runs the full command lifecycle for one action. Precondition
// failures return before any backend call. On success the backend's
// operation status is adopted and the action's revert timer, if any, is
// armed; on failure the cached status is left untouched.
func (c *Controller) IssueCommand(ctx context.Context, token, action string) (CommandResult, error) {
	robot := c.store.Robot()
	if !robot.Connected() {
		return CommandResult{}, model.NewRobotDisconnectedError()
	}
	if action == ActionMulaiPenaburan && c.store.Mode() == model.ModeOtomatis && robot.SelectedMappingID == "" {
		return CommandResult{}, model.NewMissingMappingError()
	}

	c.revert.Cancel()

	res, err := c.api.RobotControl(ctx, token, action)
	if err != nil {
		return CommandResult{}, err
	}

	if res.OperationStatus.String() != "" {
		c.store.UpdateRobot(func(r model.RobotState) model.RobotState {
			r.OperationStatus = res.OperationStatus
			return r
		})
	}

	out := CommandResult{
		Message:         res.Message,
		OperationStatus: c.store.Robot().OperationStatus,
	}
	if out.Message == "" {
		out.Message = fmt.Sprintf("Perintah %s berhasil dikirim ke robot!", action)
	}

	switch {
	case directional(action):
		c.scheduleRevert(token, c.directionalRevert, false)
	case action == ActionReturnToBase || action == ActionStop:
		c.scheduleRevert(token, c.terminalRevert, false)
	case action == ActionTancapSensor:
		c.store.SetProbing(true)
		if err := c.recordHistorySnapshot(ctx, token); err != nil {
			c.logger.Warn("history snapshot failed", zap.Error(err))
			out.SnapshotError = "Gagal menyimpan data sensor ke history"
		}
		c.scheduleRevert(token, c.terminalRevert, true)
	}

	// Stop pre-empts any delayed revert, including the one armed above.
	if action == ActionStop {
		c.store.SetProbing(false)
		c.revert.Cancel()
	}

	return out, nil
}

// scheduleRevert arms the slot to flip the cached and backend status back
// to Standby. The flip is a functional merge so state written between
// arming and firing survives.
func (c *Controller) scheduleRevert(token string, after time.Duration, clearProbing bool) {
	c.revert.Schedule(after, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if c.metrics != nil {
			c.metrics.RecordRevertFired()
		}
		if _, err := c.api.UpdateRobotStatus(ctx, token, model.RobotState{OperationStatus: model.StatusStandby}); err != nil {
			c.logger.Warn("standby revert push failed", zap.Error(err))
		}
		c.store.UpdateRobot(func(r model.RobotState) model.RobotState {
			r.OperationStatus = model.StatusStandby
			return r
		})
		if clearProbing {
			c.store.SetProbing(false)
		}
	})
}

// recordHistorySnapshot appends the cached readings with a suitability
// verdict. Only Tancap Sensor triggers it; failure never rolls back the
// command.
func (c *Controller) recordHistorySnapshot(ctx context.Context, token string) error {
	readings := c.store.Readings()
	robot := c.store.Robot()

	verdict := model.VerdictUnsuitable
	if c.estimator != nil && c.estimator.Estimate(ctx, token, readings).IsSuitable {
		verdict = model.VerdictSuitable
	}

	battery := robot.BatteryPercent
	if battery == 0 {
		battery = 100
	}

	entry := model.HistoryEntry{
		Suhu:         readings.Suhu,
		Kelembapan:   readings.Kelembapan,
		PH:           readings.PH,
		Nitrogen:     readings.Nitrogen,
		Phospor:      readings.Phospor,
		Kalium:       readings.Kalium,
		SeedsPlanted: robot.SeedsPlanted,
		Battery:      battery,
		Status:       verdict,
	}
	return c.api.CreateRobotHistory(ctx, token, entry)
}

// SetMode flips the control mode optimistically and pushes the matching
// status marker. A failed push reverts the flip and surfaces the error.
func (c *Controller) SetMode(ctx context.Context, token string, mode model.Mode) error {
	previous := c.store.Mode()
	c.store.SetMode(mode)

	status := model.OperationStatusFor(mode)
	if _, err := c.api.UpdateRobotStatus(ctx, token, model.RobotState{OperationStatus: status}); err != nil {
		c.store.SetMode(previous)
		return err
	}

	c.store.UpdateRobot(func(r model.RobotState) model.RobotState {
		r.OperationStatus = status
		return r
	})
	return nil
}

// RefreshStatus pulls the backend's robot state into the cache. The pollers
// call this on their tick; command handlers call it to pick up the
// selected mapping persisted server-side.
func (c *Controller) RefreshStatus(ctx context.Context, token string) (model.RobotState, error) {
	robot, err := c.api.GetRobotStatus(ctx, token)
	if err != nil {
		return c.store.Robot(), err
	}
	c.store.SetRobot(robot)
	return robot, nil
}

// RefreshReadings pulls the latest sensor six-tuple into the cache.
func (c *Controller) RefreshReadings(ctx context.Context, token string) (model.SensorReadings, error) {
	readings, err := c.api.GetSensorData(ctx, token)
	if err != nil {
		return c.store.Readings(), err
	}
	c.store.SetReadings(readings)
	return readings, nil
}
