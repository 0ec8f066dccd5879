//go:build linux
// +build linux

// File: reactor/reactor_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7)-based reactor implementation and factory.

package reactor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// linuxReactor is an epoll-based event reactor.
type linuxReactor struct {
	epfd int
	raw  []unix.EpollEvent
}

// NewReactor constructs a new platform-specific EventReactor for Linux.
func NewReactor() (EventReactor, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	return &linuxReactor{epfd: epfd}, nil
}

// The 8-byte epoll_data union starts at Fd on every Linux port of x/sys.
func setToken(ev *unix.EpollEvent, tok Token) {
	*(*uint64)(unsafe.Pointer(&ev.Fd)) = uint64(tok)
}

func getToken(ev *unix.EpollEvent) Token {
	return Token(*(*uint64)(unsafe.Pointer(&ev.Fd)))
}

// Register adds file descriptor to epoll in edge-triggered mode.
func (r *linuxReactor) Register(fd int, tok Token, interest Interest) error {
	if tok == SentinelToken {
		return ErrSentinelToken
	}
	ev := unix.EpollEvent{Events: unix.EPOLLET}
	if interest&Readable != 0 {
		ev.Events |= unix.EPOLLIN | unix.EPOLLRDHUP
	}
	if interest&Writable != 0 {
		ev.Events |= unix.EPOLLOUT
	}
	setToken(&ev, tok)
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("epoll ctl add fd %d: %w", fd, err)
	}
	return nil
}

// Wait waits for epoll events and fills the result into events slice.
func (r *linuxReactor) Wait(events []Event) (int, error) {
	if len(events) == 0 {
		return 0, errors.New("reactor: empty event buffer")
	}
	if cap(r.raw) < len(events) {
		r.raw = make([]unix.EpollEvent, len(events))
	}
	raw := r.raw[:len(events)]
	for {
		n, err := unix.EpollWait(r.epfd, raw, -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("epoll wait: %w", err)
		}
		for i := 0; i < n; i++ {
			flags := raw[i].Events
			events[i] = Event{
				Token:    getToken(&raw[i]),
				Readable: flags&(unix.EPOLLIN|unix.EPOLLPRI) != 0,
				Writable: flags&unix.EPOLLOUT != 0,
				Closed:   flags&(unix.EPOLLHUP|unix.EPOLLRDHUP|unix.EPOLLERR) != 0,
			}
		}
		return n, nil
	}
}

// Close closes the epoll instance.
func (r *linuxReactor) Close() error {
	return unix.Close(r.epfd)
}

// eventfdWaker is a Waker over eventfd(2).
type eventfdWaker struct {
	fd int
}

// NewWaker creates a non-blocking eventfd waker.
func NewWaker() (Waker, error) {
	fd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("eventfd: %w", err)
	}
	return &eventfdWaker{fd: fd}, nil
}

func (w *eventfdWaker) Fd() int { return w.fd }

func (w *eventfdWaker) Wake() error {
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], 1)
	for {
		_, err := unix.Write(w.fd, buf[:])
		switch err {
		case nil, unix.EAGAIN: // EAGAIN: counter saturated, already readable
			return nil
		case unix.EINTR:
			continue
		default:
			return fmt.Errorf("eventfd write: %w", err)
		}
	}
}

func (w *eventfdWaker) Reset() error {
	var buf [8]byte
	for {
		_, err := unix.Read(w.fd, buf[:])
		switch err {
		case nil, unix.EAGAIN:
			return nil
		case unix.EINTR:
			continue
		default:
			return fmt.Errorf("eventfd read: %w", err)
		}
	}
}

func (w *eventfdWaker) Close() error {
	return unix.Close(w.fd)
}
