package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestInit(t *testing.T) {
	original := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(original) })

	for _, env := range []string{"development", "production", ""} {
		assert.NoError(t, Init(env))
		assert.NotSame(t, original, zap.L())
	}
}
