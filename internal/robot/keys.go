package robot

import (
	"context"
	"strings"

	"github.com/tanicerdas/seedbot-console/model"
)

// keyActions maps manual-control keys to command actions.
var keyActions = map[string]string{
	"w": ActionMaju,
	"a": ActionKiri,
	"s": ActionMundur,
	"d": ActionKanan,
}

// ManualControlView is the menu whose keyboard shortcuts drive the robot.
const ManualControlView = "kendali-manual"

// KeyCommand routes a keypress through IssueCommand when the gate holds:
// the manual-control view is active, the mode is manual, the robot is
// connected, focus is outside a text input, and the key is one of w/a/s/d
// (case-insensitive). Ignored keypresses report issued=false with no error.
func (c *Controller) KeyCommand(ctx context.Context, token, key, view string, inputFocused bool) (CommandResult, bool, error) {
	if view != ManualControlView || inputFocused {
		return CommandResult{}, false, nil
	}
	if c.store.Mode() != model.ModeManual || !c.store.Robot().Connected() {
		return CommandResult{}, false, nil
	}

	action, ok := keyActions[strings.ToLower(key)]
	if !ok {
		return CommandResult{}, false, nil
	}

	res, err := c.IssueCommand(ctx, token, action)
	if err != nil {
		return CommandResult{}, false, err
	}
	return res, true, nil
}
