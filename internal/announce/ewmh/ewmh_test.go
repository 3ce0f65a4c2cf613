package ewmh

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartwc/sartwc/internal/desktop"
	"github.com/sartwc/sartwc/internal/workspace"
	"github.com/sartwc/sartwc/internal/x11"
)

type published struct {
	names   []string
	current int
}

type fakePublisher struct {
	calls []published
	err   error
}

func (f *fakePublisher) PublishDesktops(names []string, current int) error {
	f.calls = append(f.calls, published{names: append([]string(nil), names...), current: current})
	return f.err
}

func (f *fakePublisher) last() published {
	return f.calls[len(f.calls)-1]
}

// inline runs posted work immediately, standing in for the event loop.
type inline struct{ queued []func() }

func (q *inline) post(fn func()) error {
	q.queued = append(q.queued, fn)
	return nil
}

func (q *inline) drain() {
	for len(q.queued) > 0 {
		fn := q.queued[0]
		q.queued = q.queued[1:]
		fn()
	}
}

type fixture struct {
	pub     *fakePublisher
	loop    *inline
	ann     *Announcer
	desktop *desktop.Desktop
	manager *workspace.Manager
}

func newFixture(t *testing.T, names ...string) *fixture {
	t.Helper()
	f := &fixture{pub: &fakePublisher{}, loop: &inline{}, desktop: desktop.New(desktop.Options{})}
	f.ann = New(f.pub, f.loop.post, nil)
	f.manager = workspace.NewManager(workspace.Options{Shell: f.desktop, Announcers: []workspace.Announcer{f.ann}})
	f.manager.Init()
	if len(names) > 0 {
		f.manager.Reconcile(names)
	}
	return f
}

func TestAnnouncerPublishesDesktops(t *testing.T) {
	f := newFixture(t, "main", "web")
	assert.Equal(t, published{names: []string{"main", "web"}, current: 0}, f.pub.last())

	f.manager.SwitchTo(f.manager.Registry().ByIndex(2), true)
	assert.Equal(t, published{names: []string{"main", "web"}, current: 1}, f.pub.last())

	require.NoError(t, f.manager.RenameIndex(1, "home"))
	assert.Equal(t, []string{"home", "web"}, f.pub.last().names)

	require.NoError(t, f.manager.RemoveIndex(1))
	assert.Equal(t, published{names: []string{"web"}, current: 0}, f.pub.last())
}

func TestAnnouncerRequestSwitchesOnLoop(t *testing.T) {
	f := newFixture(t, "a", "b", "c")

	f.ann.RequestDesktop(2)
	assert.Equal(t, "a", f.manager.Registry().Current().Name(), "request must wait for the loop")

	f.loop.drain()
	assert.Equal(t, "c", f.manager.Registry().Current().Name())
}

func TestAnnouncerIgnoresOutOfRangeRequests(t *testing.T) {
	f := newFixture(t, "a", "b")
	f.ann.RequestDesktop(5)
	f.ann.RequestDesktop(-1)
	f.loop.drain()
	assert.Equal(t, "a", f.manager.Registry().Current().Name())
}

func TestAnnouncerSurvivesPublishErrors(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("display gone")
	_, err := f.manager.AddNamed("x")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "x"}, f.pub.last().names)
}

func TestMirrorMapsUpdatesAndUnmaps(t *testing.T) {
	f := newFixture(t, "a", "b")
	m := NewMirror(f.desktop, f.manager.Registry(), nil)

	m.Apply([]x11.ClientWindow{
		{ID: 0x100, AppID: "XTerm", Title: "xterm", Width: 80, Height: 24, Desktop: 0},
		{ID: 0x200, AppID: "Firefox", Title: "web", Desktop: 1, Maximized: true},
		{ID: 0x300, AppID: "Panel", Desktop: -1},
		{ID: 0x400, AppID: "Far", Desktop: 9},
	})

	xterm := f.desktop.ViewByExternal(0x100)
	require.NotNil(t, xterm)
	assert.Equal(t, f.manager.Registry().ByIndex(1).ID(), xterm.Workspace)
	firefox := f.desktop.ViewByExternal(0x200)
	require.NotNil(t, firefox)
	assert.Equal(t, f.manager.Registry().ByIndex(2).ID(), firefox.Workspace)
	assert.True(t, firefox.Maximized)
	assert.True(t, f.desktop.ViewByExternal(0x300).Omnipresent)
	assert.Equal(t, f.manager.Registry().Current().ID(), f.desktop.ViewByExternal(0x400).Workspace)

	m.Apply([]x11.ClientWindow{
		{ID: 0x100, AppID: "XTerm", Title: "vim", X: 5, Width: 80, Height: 24, Hidden: true},
	})

	assert.Same(t, xterm, f.desktop.ViewByExternal(0x100))
	assert.Equal(t, "vim", xterm.Title)
	assert.Equal(t, 5, xterm.Current.X)
	assert.True(t, xterm.Minimized)
	assert.Nil(t, f.desktop.ViewByExternal(0x200))
	assert.Nil(t, f.desktop.ViewByExternal(0x300))
	assert.False(t, firefox.Mapped)
}
