package filesystem_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// TestStatBirthTime checks that ctime is the creation time, which a later
// chmod leaves alone.
func TestStatBirthTime(t *testing.T) {
	svc, dir := newTestService(t)
	ctx := context.Background()
	p := filepath.Join(dir, "born")
	writeTestFile(t, p, "x")

	var stx unix.Statx_t
	if err := unix.Statx(unix.AT_FDCWD, p, 0, unix.STATX_BTIME, &stx); err != nil || stx.Mask&unix.STATX_BTIME == 0 {
		t.Skip("filesystem does not record birth time")
	}

	before, err := svc.Stat(ctx, uri("born"))
	require.NoError(t, err)
	assert.Equal(t, time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec)).UnixMilli(), before.CtimeInMsEpoch)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.Chmod(p, 0o600))

	after, err := svc.Stat(ctx, uri("born"))
	require.NoError(t, err)
	assert.Equal(t, before.CtimeInMsEpoch, after.CtimeInMsEpoch)
}
