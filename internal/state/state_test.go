package state

import (
	"sync"
	"testing"

	"github.com/tanicerdas/seedbot-console/model"
)

func TestStoreDefaults(t *testing.T) {
	s := NewStore()

	if s.Robot().OperationStatus != model.StatusStandby {
		t.Errorf("initial status = %v, want Standby", s.Robot().OperationStatus)
	}
	if s.Robot().Connected() {
		t.Error("robot starts connected")
	}
	if s.Mode() != model.ModeManual {
		t.Errorf("initial mode = %v, want manual", s.Mode())
	}
	if s.Probing() {
		t.Error("probe flag starts set")
	}
}

func TestUpdateRobotMergesAgainstLatest(t *testing.T) {
	s := NewStore()
	s.SetRobot(model.RobotState{
		ConnectionStatus: model.ConnectionConnected,
		OperationStatus:  model.StatusMaju,
		SeedsPlanted:     3,
	})

	// A poll lands after the command but before the revert fires.
	s.UpdateRobot(func(r model.RobotState) model.RobotState {
		r.SeedsPlanted = 7
		return r
	})

	// The revert must see the poll's write, not a stale snapshot.
	got := s.UpdateRobot(func(r model.RobotState) model.RobotState {
		r.OperationStatus = model.StatusStandby
		return r
	})

	if got.OperationStatus != model.StatusStandby {
		t.Errorf("status = %v, want Standby", got.OperationStatus)
	}
	if got.SeedsPlanted != 7 {
		t.Errorf("seeds planted = %d, the merge clobbered a later write", got.SeedsPlanted)
	}
}

func TestConcurrentUpdates(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.UpdateRobot(func(r model.RobotState) model.RobotState {
				r.SeedsPlanted++
				return r
			})
		}()
	}
	wg.Wait()

	if got := s.Robot().SeedsPlanted; got != 100 {
		t.Errorf("seeds planted = %d after 100 increments, want 100", got)
	}
}
