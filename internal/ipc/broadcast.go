package ipc

import (
	"strconv"

	"github.com/sartwc/sartwc/internal/desktop"
)

var _ desktop.Listener = (*Server)(nil)

// Broadcast sends "EVENT <event>\n" to every subscribed client. A client
// whose write fails is disconnected; the others still receive the event.
// Call on the loop.
func (s *Server) Broadcast(event string) {
	if len(s.clients) == 0 {
		return
	}
	line := make([]byte, 0, len(eventPrefix)+len(event)+1)
	line = append(line, eventPrefix...)
	line = append(line, event...)
	line = append(line, '\n')
	for c := range s.clients {
		if c.subscribed {
			s.write(c, line)
		}
	}
}

func (s *Server) currentIndex() int {
	reg := s.dispatcher.manager.Registry()
	return reg.IndexOf(reg.Current())
}

// WorkspaceChanged implements workspace.Notifier.
func (s *Server) WorkspaceChanged() {
	b := []byte(EventWorkspaceChanged)
	b = appendKV(b, "current", s.currentIndex())
	s.Broadcast(string(b))
}

// WorkspaceListChanged implements workspace.Notifier.
func (s *Server) WorkspaceListChanged() {
	b := []byte(EventWorkspaceListChanged)
	b = appendKV(b, "current", s.currentIndex())
	b = appendKV(b, "count", s.dispatcher.manager.Registry().Len())
	s.Broadcast(string(b))
}

// FocusChanged implements desktop.Listener.
func (s *Server) FocusChanged(v *desktop.View) {
	b := []byte(EventFocusChanged)
	b = appendKV(b, "current", s.currentIndex())
	if v == nil {
		s.Broadcast(string(append(b, " focused=0"...)))
		return
	}
	b = append(b, " focused=1"...)
	s.Broadcast(string(s.appendViewFields(b, v)))
}

// ViewMapped implements desktop.Listener.
func (s *Server) ViewMapped(v *desktop.View) {
	s.viewEvent(EventViewMapped, v)
}

// ViewUnmapped implements desktop.Listener.
func (s *Server) ViewUnmapped(v *desktop.View) {
	s.viewEvent(EventViewUnmapped, v)
}

func (s *Server) viewEvent(kind string, v *desktop.View) {
	if v == nil {
		return
	}
	b := []byte(kind)
	b = appendKV(b, "current", s.currentIndex())
	s.Broadcast(string(s.appendViewFields(b, v)))
}

func (s *Server) appendViewFields(b []byte, v *desktop.View) []byte {
	reg := s.dispatcher.manager.Registry()
	b = append(b, " view="...)
	b = strconv.AppendUint(b, uint64(v.ID), 10)
	b = appendKV(b, "workspace", reg.IndexOfID(v.Workspace))
	b = appendKV(b, "x", v.Current.X)
	b = appendKV(b, "y", v.Current.Y)
	b = appendKV(b, "w", v.Current.Width)
	return appendKV(b, "h", v.Current.Height)
}
