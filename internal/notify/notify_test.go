package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMulti(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	var seen []string
	m := Multi{a, nil, b, Func(func(msg string) { seen = append(seen, msg) })}

	m.Notify(ScreenshotFailed)
	m.Notify(SaveFailed)

	assert.Equal(t, []string{"screenshot failed", "save screenshot failed."}, a.Notices())
	assert.Equal(t, a.Notices(), b.Notices())
	assert.Equal(t, a.Notices(), seen)
}

func TestRecorder_NoticesIsACopy(t *testing.T) {
	r := &Recorder{}
	assert.Empty(t, r.Notices())
	r.Notify(PermissionDenied)
	got := r.Notices()
	got[0] = "changed"
	assert.Equal(t, []string{"Permission Denial: requires android.permission.WRITE_EXTERNAL_STORAGE"}, r.Notices())
}
