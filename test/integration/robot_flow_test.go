package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/tanicerdas/seedbot-console/model"
)

// syncRobot pulls the backend robot state into the console's cache, the way
// the dashboard's status poll does before any command is issued.
func syncRobot(t *testing.T, h *Harness, token string) {
	t.Helper()
	resp := h.Do("GET", "/ui/robot/status", token, nil)
	if resp.Status != http.StatusOK {
		t.Fatalf("robot status sync: %d, body %v", resp.Status, resp.Body)
	}
}

func errorCode(body map[string]any) string {
	errBody, _ := body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func TestKeyCommandIssuesAndReverts(t *testing.T) {
	h := NewHarness(t)
	token := h.Login("tani", "rahasia1")
	syncRobot(t, h, token)

	resp := h.Do("POST", "/ui/robot/keys", token, map[string]any{
		"key":  "w",
		"view": "kendali-manual",
	})
	if resp.Status != http.StatusOK {
		t.Fatalf("status = %d, body %v", resp.Status, resp.Body)
	}
	if resp.Body["issued"] != true {
		t.Fatal("w on the manual-control view should issue Maju")
	}
	if got := h.State.Robot().OperationStatus; got != model.StatusMaju {
		t.Errorf("cached status = %v, want Maju", got)
	}
	if len(h.Backend.ControlActions) != 1 || h.Backend.ControlActions[0] != "Maju" {
		t.Errorf("backend received %v, want [Maju]", h.Backend.ControlActions)
	}

	delay, armed := h.RevertTimer.Pending()
	if !armed || delay != 3*time.Second {
		t.Fatalf("revert = (%v, %v), want armed 3s", delay, armed)
	}

	h.RevertTimer.Fire()

	if got := h.State.Robot().OperationStatus; got != model.StatusStandby {
		t.Errorf("post-revert status = %v, want Standby", got)
	}
	if len(h.Backend.StatusPushes) != 1 || h.Backend.StatusPushes[0] != "Standby" {
		t.Errorf("status pushes = %v, want [Standby]", h.Backend.StatusPushes)
	}
}

func TestKeyCommandIgnoredOffManualView(t *testing.T) {
	h := NewHarness(t)
	token := h.Login("tani", "rahasia1")
	syncRobot(t, h, token)

	resp := h.Do("POST", "/ui/robot/keys", token, map[string]any{
		"key":  "w",
		"view": "dashboard",
	})
	if resp.Status != http.StatusOK {
		t.Fatalf("status = %d", resp.Status)
	}
	if resp.Body["issued"] != false {
		t.Error("keypress off the manual-control view should be ignored")
	}
	if len(h.Backend.ControlActions) != 0 {
		t.Errorf("backend received %v, want none", h.Backend.ControlActions)
	}
}

func TestKeyCommandIgnoredWhileTyping(t *testing.T) {
	h := NewHarness(t)
	token := h.Login("tani", "rahasia1")
	syncRobot(t, h, token)

	resp := h.Do("POST", "/ui/robot/keys", token, map[string]any{
		"key":          "w",
		"view":         "kendali-manual",
		"inputFocused": true,
	})
	if resp.Body["issued"] != false {
		t.Error("keypress with a focused input should be ignored")
	}
}

func TestCommandRejectedWhileDisconnected(t *testing.T) {
	h := NewHarness(t)
	token := h.Login("tani", "rahasia1")

	robot := h.Backend.Robot()
	robot.ConnectionStatus = model.ConnectionDisconnected
	h.Backend.SetRobot(robot)
	syncRobot(t, h, token)

	resp := h.Do("POST", "/ui/robot/commands", token, map[string]string{"action": "Maju"})
	if resp.Status != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.Status)
	}
	if errorCode(resp.Body) != "ROBOT_DISCONNECTED" {
		t.Errorf("code = %s, want ROBOT_DISCONNECTED", errorCode(resp.Body))
	}
	if len(h.Backend.ControlActions) != 0 {
		t.Errorf("disconnected robot still received %v", h.Backend.ControlActions)
	}
}

func TestSowingRequiresMappingInAutoMode(t *testing.T) {
	h := NewHarness(t)
	token := h.Login("tani", "rahasia1")
	syncRobot(t, h, token)

	if resp := h.Do("PUT", "/ui/robot/mode", token, map[string]string{"mode": "otomatis"}); resp.Status != http.StatusOK {
		t.Fatalf("mode switch status = %d, body %v", resp.Status, resp.Body)
	}

	resp := h.Do("POST", "/ui/robot/commands", token, map[string]string{"action": "Mulai Penaburan"})
	if resp.Status != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.Status)
	}
	if errorCode(resp.Body) != "MISSING_MAPPING" {
		t.Errorf("code = %s, want MISSING_MAPPING", errorCode(resp.Body))
	}
	if len(h.Backend.ControlActions) != 0 {
		t.Errorf("guard did not short-circuit: backend received %v", h.Backend.ControlActions)
	}
}

func TestStopPreemptsPendingRevert(t *testing.T) {
	h := NewHarness(t)
	token := h.Login("tani", "rahasia1")
	syncRobot(t, h, token)

	h.Do("POST", "/ui/robot/commands", token, map[string]string{"action": "Maju"})
	if _, armed := h.RevertTimer.Pending(); !armed {
		t.Fatal("Maju did not arm a revert")
	}

	resp := h.Do("POST", "/ui/robot/commands", token, map[string]string{"action": "Stop"})
	if resp.Status != http.StatusOK {
		t.Fatalf("stop status = %d", resp.Status)
	}
	if _, armed := h.RevertTimer.Pending(); armed {
		t.Error("Stop left a revert timer pending")
	}
	if h.State.Probing() {
		t.Error("Stop did not clear the probing flag")
	}
}

func TestTancapSensorRecordsSnapshot(t *testing.T) {
	h := NewHarness(t)
	h.Backend.SetReadings(model.SensorReadings{
		Suhu: 28, Kelembapan: 65, PH: 6.5,
		Nitrogen: 45, Phospor: 20, Kalium: 55,
	})
	token := h.Login("tani", "rahasia1")
	syncRobot(t, h, token)

	resp := h.Do("POST", "/ui/robot/commands", token, map[string]string{"action": "Tancap Sensor"})
	if resp.Status != http.StatusOK {
		t.Fatalf("status = %d, body %v", resp.Status, resp.Body)
	}
	if !h.State.Probing() {
		t.Error("Tancap Sensor did not set the probing flag")
	}

	history := h.Backend.History()
	if len(history) != 1 {
		t.Fatalf("history entries = %d, want 1", len(history))
	}
	entry := history[0]
	if entry["phospor"] != float64(20) {
		t.Errorf("snapshot phospor = %v, want 20", entry["phospor"])
	}
	if entry["benihTertanam"] != float64(12) {
		t.Errorf("snapshot seeds = %v, want 12", entry["benihTertanam"])
	}
	if entry["baterai"] != float64(80) {
		t.Errorf("snapshot battery = %v, want 80", entry["baterai"])
	}
	// One bad reading does not flip the verdict; the estimator's crop
	// ranking decides it.
	if entry["status"] != "Layak" {
		t.Errorf("snapshot status = %v, want Layak", entry["status"])
	}

	delay, armed := h.RevertTimer.Pending()
	if !armed || delay != 5*time.Second {
		t.Fatalf("revert = (%v, %v), want armed 5s", delay, armed)
	}
	h.RevertTimer.Fire()
	if h.State.Probing() {
		t.Error("revert did not clear the probing flag")
	}
	if got := h.State.Robot().OperationStatus; got != model.StatusStandby {
		t.Errorf("post-revert status = %v, want Standby", got)
	}
}

func TestModeSwitchPersistsToBackend(t *testing.T) {
	h := NewHarness(t)
	token := h.Login("tani", "rahasia1")
	syncRobot(t, h, token)

	resp := h.Do("PUT", "/ui/robot/mode", token, map[string]string{"mode": "otomatis"})
	if resp.Status != http.StatusOK {
		t.Fatalf("status = %d, body %v", resp.Status, resp.Body)
	}
	if resp.Body["mode"] != "otomatis" {
		t.Errorf("mode = %v, want otomatis", resp.Body["mode"])
	}
	if got := h.Backend.Robot().OperationStatus; got != model.StatusModeOtomatis {
		t.Errorf("backend status = %v, want Mode Otomatis", got)
	}
}

func TestModeRejectsUnknownValue(t *testing.T) {
	h := NewHarness(t)
	token := h.Login("tani", "rahasia1")

	resp := h.Do("PUT", "/ui/robot/mode", token, map[string]string{"mode": "turbo"})
	if resp.Status != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.Status)
	}
}

func TestViewPollingLifecycle(t *testing.T) {
	h := NewHarness(t)
	token := h.Login("tani", "rahasia1")

	if resp := h.Do("POST", "/ui/views/kendali-manual/activate", token, nil); resp.Status != http.StatusOK {
		t.Fatalf("activate status = %d", resp.Status)
	}
	// The activation refresh runs synchronously in the poll goroutine's
	// first iteration.
	deadline := time.Now().Add(2 * time.Second)
	for h.State.Robot().ConnectionStatus != model.ConnectionConnected {
		if time.Now().After(deadline) {
			t.Fatal("activation did not refresh the robot state")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if resp := h.Do("POST", "/ui/views/kendali-manual/deactivate", token, nil); resp.Status != http.StatusOK {
		t.Fatalf("deactivate status = %d", resp.Status)
	}
	h.WaitPollerIdle()

	if resp := h.Do("POST", "/ui/views/invalid-view/activate", token, nil); resp.Status != http.StatusNotFound {
		t.Errorf("unknown view status = %d, want 404", resp.Status)
	}
}
