// Package utilstest holds test helpers for packages that log through
// utils.Logger.
package utilstest

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/quantum-builds/VinAudit/utils"
)

// NewLogger routes log output through t.Log.
func NewLogger(t testing.TB) *utils.Logger {
	return utils.FromZap(zaptest.NewLogger(t))
}
