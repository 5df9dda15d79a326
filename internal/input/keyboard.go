package input

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/dreheist/drebot/internal/utils/winproc"
)

const (
	inputKeyboard = 1

	keyeventfScancode    = 0x0008
	keyeventfKeyup       = 0x0002
	keyeventfExtendedKey = 0x0001

	mapvkVkToVsc = 0

	vkReturn = 0x0D
	vkEscape = 0x1B
	vkBack   = 0x08
	vkUp     = 0x26
	vkDown   = 0x28
	vkLeft   = 0x25
	vkRight  = 0x27
	vkQ      = 0x51
	vkE      = 0x45
	vkW      = 0x57
	vkA      = 0x41
	vkS      = 0x53
	vkD      = 0x44
)

// keyboardInput mirrors the Win32 INPUT struct with the KEYBDINPUT union
// member on 64-bit Windows.
type keyboardInput struct {
	inputType uint32
	_         uint32
	vk        uint16
	scan      uint16
	flags     uint32
	time      uint32
	extraInfo uintptr
	_         [8]byte
}

var buttonKeys = map[Button]uint16{
	ButtonConfirm:  vkReturn,
	ButtonBack:     vkBack,
	ButtonUp:       vkUp,
	ButtonDown:     vkDown,
	ButtonLeft:     vkLeft,
	ButtonRight:    vkRight,
	ButtonPrevPage: vkQ,
	ButtonNextPage: vkE,
	ButtonMenu:     vkEscape,
}

var extendedKeys = map[uint16]bool{
	vkUp:    true,
	vkDown:  true,
	vkLeft:  true,
	vkRight: true,
}

// Keyboard drives the game through its default keyboard bindings via
// SendInput. It tracks held keys so ReleaseAll can clean up after a panic or
// shutdown mid-gesture.
type Keyboard struct {
	mu   sync.Mutex
	held map[uint16]bool
}

func NewKeyboard() *Keyboard {
	return &Keyboard{held: make(map[uint16]bool)}
}

func (k *Keyboard) sendKey(vk uint16, up bool) error {
	scan, _, _ := winproc.MapVirtualKey.Call(uintptr(vk), mapvkVkToVsc)

	flags := uint32(keyeventfScancode)
	if up {
		flags |= keyeventfKeyup
	}
	if extendedKeys[vk] {
		flags |= keyeventfExtendedKey
	}

	in := keyboardInput{
		inputType: inputKeyboard,
		vk:        vk,
		scan:      uint16(scan),
		flags:     flags,
	}

	sent, _, _ := winproc.SendInput.Call(1, uintptr(unsafe.Pointer(&in)), unsafe.Sizeof(in))
	if sent != 1 {
		return fmt.Errorf("SendInput rejected key event for vk 0x%X", vk)
	}

	k.mu.Lock()
	if up {
		delete(k.held, vk)
	} else {
		k.held[vk] = true
	}
	k.mu.Unlock()

	return nil
}

func (k *Keyboard) PressButton(b Button) error {
	vk, ok := buttonKeys[b]
	if !ok {
		return fmt.Errorf("no key binding for button %d", b)
	}
	return k.sendKey(vk, false)
}

func (k *Keyboard) ReleaseButton(b Button) error {
	vk, ok := buttonKeys[b]
	if !ok {
		return fmt.Errorf("no key binding for button %d", b)
	}
	return k.sendKey(vk, true)
}

// SetAxis emulates a stick with the movement keys: a negative Y is forward.
// Zero releases both directions of the axis.
func (k *Keyboard) SetAxis(a Axis, value float64) error {
	var negative, positive uint16
	switch a {
	case AxisMoveX:
		negative, positive = vkA, vkD
	case AxisMoveY:
		negative, positive = vkW, vkS
	default:
		return fmt.Errorf("unknown axis %d", a)
	}

	switch {
	case value < 0:
		if err := k.sendKey(positive, true); err != nil {
			return err
		}
		return k.sendKey(negative, false)
	case value > 0:
		if err := k.sendKey(negative, true); err != nil {
			return err
		}
		return k.sendKey(positive, false)
	default:
		if err := k.sendKey(negative, true); err != nil {
			return err
		}
		return k.sendKey(positive, true)
	}
}

func (k *Keyboard) ReleaseAll() error {
	k.mu.Lock()
	held := make([]uint16, 0, len(k.held))
	for vk := range k.held {
		held = append(held, vk)
	}
	k.mu.Unlock()

	var firstErr error
	for _, vk := range held {
		if err := k.sendKey(vk, true); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
