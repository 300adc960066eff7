package supabase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	dir  string
	name string
	args []string
}

func TestController_Start(t *testing.T) {
	var got []call
	c := NewController("", 0, 0)
	c.run = func(ctx context.Context, dir, name string, args ...string) (string, int, error) {
		got = append(got, call{dir, name, args})
		return "API URL: http://127.0.0.1:54421", 0, nil
	}

	out, err := c.Start(context.Background(), "/work/feature")
	require.NoError(t, err)
	assert.Equal(t, "API URL: http://127.0.0.1:54421", out)
	require.Len(t, got, 1)
	assert.Equal(t, call{"/work/feature", "supabase", []string{"start"}}, got[0])
	assert.Equal(t, DefaultStartTimeout, c.StartTimeout)
	assert.Equal(t, DefaultStopTimeout, c.StopTimeout)
}

func TestController_NonZeroExit(t *testing.T) {
	c := NewController("/opt/bin/supabase", time.Minute, time.Minute)
	c.run = func(ctx context.Context, dir, name string, args ...string) (string, int, error) {
		assert.Equal(t, "/opt/bin/supabase", name)
		return "docker not running", 1, errors.New("exit status 1")
	}

	out, err := c.Stop(context.Background(), "/work/feature")
	require.Error(t, err)
	assert.Equal(t, "docker not running", out)

	var perr *ProcessError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "stop", perr.Op)
	assert.Equal(t, 1, perr.ExitCode)
	assert.False(t, perr.TimedOut)
	assert.Contains(t, perr.Error(), "exited with status 1")
}

func TestController_Timeout(t *testing.T) {
	c := NewController("", 10*time.Millisecond, 0)
	c.run = func(ctx context.Context, dir, name string, args ...string) (string, int, error) {
		<-ctx.Done()
		return "", -1, ctx.Err()
	}

	_, err := c.Start(context.Background(), "/work/feature")
	var perr *ProcessError
	require.ErrorAs(t, err, &perr)
	assert.True(t, perr.TimedOut)
	assert.Contains(t, perr.Error(), "timed out")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
