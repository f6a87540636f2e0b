//go:build integration && !windows

package rod_test

import (
	"syscall"
	"testing"
	"time"

	"github.com/fwojciec/stackdoc/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// alive reports whether pid exists; signal 0 probes without delivering.
func alive(pid int) bool {
	return syscall.Kill(pid, syscall.Signal(0)) == nil
}

func TestBrowserProcesses(t *testing.T) {
	t.Parallel()

	t.Run("close kills the launcher process", func(t *testing.T) {
		t.Parallel()

		fetcher, err := rod.NewFetcher()
		require.NoError(t, err)

		pid := fetcher.LauncherPID()
		require.NotZero(t, pid)
		require.True(t, alive(pid))

		require.NoError(t, fetcher.Close())

		assert.Eventually(t, func() bool { return !alive(pid) }, 2*time.Second, 50*time.Millisecond)
	})

	t.Run("replacing the browser kills the old process", func(t *testing.T) {
		t.Parallel()

		manager, err := rod.NewBrowserManager(rod.WithMaxPages(1))
		require.NoError(t, err)
		defer manager.Close()

		old := manager.LauncherPID()
		require.True(t, alive(old))

		manager.PageDone()
		require.NotNil(t, manager.Browser())

		assert.NotEqual(t, old, manager.LauncherPID())
		assert.Eventually(t, func() bool { return !alive(old) }, 2*time.Second, 50*time.Millisecond)
	})
}
