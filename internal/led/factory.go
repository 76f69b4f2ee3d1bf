package led

import (
	"log/slog"
	"os"
	"strings"
)

const deviceTreeModelPath = "/proc/device-tree/model"

// board maps a device-tree model substring to its LED names.
type board struct {
	model string
	leds  map[string]string
}

// Every supported board exposes its status LED as "system".
var boards = []board{
	{"NanoPC-T6", map[string]string{"system": "sys_led", "user": "usr_led"}},
	{"Orange Pi", map[string]string{"system": "green_led", "user": "blue_led"}},
	{"Raspberry Pi", map[string]string{"system": "ACT"}},
}

// New picks a controller for the board this runs on, falling back to a no-op
// controller when the board is unknown.
func New(logger *slog.Logger) Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return forModel(detectBoard(), logger)
}

func forModel(model string, logger *slog.Logger) Controller {
	for _, b := range boards {
		if strings.Contains(model, b.model) {
			logger.Info("Using sysfs LED controller", "board_model", model, "board", b.model)
			return newSysfs(b.leds)
		}
	}
	logger.Info("No LED support detected, using no-op controller", "board_model", model)
	return newNoop(logger)
}

// detectBoard reads the device tree model, or "unknown".
func detectBoard() string {
	data, err := os.ReadFile(deviceTreeModelPath)
	if err != nil {
		return "unknown"
	}
	return strings.TrimRight(string(data), "\x00")
}
