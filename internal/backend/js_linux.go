//go:build linux

package backend

import (
	"encoding/binary"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Kernel joystick interface ioctls and event bits.
const (
	jsiocgAxes    = 0x80016a11
	jsiocgButtons = 0x80016a12
	jsiocgName    = 0x80006a13 + (128 << 16)

	jsEventButton = 0x01
	jsEventAxis   = 0x02
	jsEventInit   = 0x80

	jsEventSize = 8
	jsAxisMax   = 32767
)

// KernelJoystick reads fixed-size event records from a /dev/input/jsN node.
// Raw indices are already canonical for this interface, so no mapping step
// is involved.
type KernelJoystick struct {
	fd      int
	path    string
	name    string
	axes    int
	buttons int
}

// OpenKernelJoystick opens the device node and queries its geometry. The
// descriptor is non-blocking; Fetch bounds its wait with poll(2).
func OpenKernelJoystick(path string) (*KernelJoystick, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, &OpenError{Device: path, Err: err}
	}

	k := &KernelJoystick{fd: fd, path: path}

	var axes, buttons uint8
	if err := k.ioctl(jsiocgAxes, unsafe.Pointer(&axes)); err != nil {
		unix.Close(fd)
		return nil, &OpenError{Device: path, Err: err}
	}
	if err := k.ioctl(jsiocgButtons, unsafe.Pointer(&buttons)); err != nil {
		unix.Close(fd)
		return nil, &OpenError{Device: path, Err: err}
	}
	k.axes = int(axes)
	k.buttons = int(buttons)

	nameBuf := make([]byte, 128)
	if err := k.ioctl(jsiocgName, unsafe.Pointer(&nameBuf[0])); err == nil {
		k.name = trimNul(nameBuf)
	}
	return k, nil
}

// Fetch waits up to timeout for the next event record. The kernel replays
// the full device state as INIT-flagged events right after open; those are
// folded into the ordinary axis/button path by masking the INIT bit.
func (k *KernelJoystick) Fetch(timeout time.Duration) (Event, error) {
	fds := []unix.PollFd{{Fd: int32(k.fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, int(timeout.Milliseconds()))
	if err != nil {
		if err == unix.EINTR {
			return Event{Kind: None}, nil
		}
		return Event{}, &ReadError{Err: err}
	}
	if n == 0 {
		return Event{Kind: None}, nil
	}
	if fds[0].Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
		return Event{Kind: Removed}, nil
	}

	buf := make([]byte, jsEventSize)
	got, err := unix.Read(k.fd, buf)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EINTR {
			return Event{Kind: None}, nil
		}
		// ENODEV is the usual unplug signal for js nodes.
		if err == unix.ENODEV {
			return Event{Kind: Removed}, nil
		}
		return Event{}, &ReadError{Err: err}
	}
	if got == 0 {
		return Event{Kind: Removed}, nil
	}
	if got != jsEventSize {
		return Event{Kind: None}, nil
	}

	value := int16(binary.LittleEndian.Uint16(buf[4:6]))
	kind := buf[6] &^ jsEventInit
	index := int(buf[7])

	switch kind {
	case jsEventAxis:
		return Event{Kind: Axis, Index: index, Value: scaleAxis(value)}, nil
	case jsEventButton:
		return Event{Kind: Button, Index: index, Pressed: value != 0}, nil
	}
	return Event{Kind: None}, nil
}

func (k *KernelJoystick) Axes() int      { return k.axes }
func (k *KernelJoystick) Buttons() int   { return k.buttons }
func (k *KernelJoystick) Name() string   { return k.name }
func (k *KernelJoystick) Degraded() bool { return false }

func (k *KernelJoystick) Close() error {
	if k.fd < 0 {
		return nil
	}
	err := unix.Close(k.fd)
	k.fd = -1
	return err
}

func (k *KernelJoystick) ioctl(req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(k.fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// scaleAxis maps the kernel's int16 range onto [-1, 1].
func scaleAxis(v int16) float64 {
	out := float64(v) / jsAxisMax
	if out < -1 {
		out = -1
	}
	return out
}

func trimNul(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
