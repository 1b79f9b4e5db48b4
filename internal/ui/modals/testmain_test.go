package modals

import (
	"os"
	"testing"

	"github.com/zhubert/imagine/internal/logger"
)

func TestMain(m *testing.M) {
	// Disable logging during tests to avoid polluting /tmp/imagine-debug.log
	logger.Reset()
	logger.Init(os.DevNull)

	// Initialize modal constants for tests
	ModalWidth = 60
	ModalWidthWide = 80
	ModalInputWidth = 50
	ModalInputCharLimit = 256
	HelpModalMaxVisible = 18

	code := m.Run()

	logger.Reset()
	os.Exit(code)
}
