package input

// Button is a semantic controller button. The concrete backend decides how it
// reaches the game (virtual pad or keyboard binding).
type Button int

const (
	ButtonConfirm Button = iota // A
	ButtonBack                  // B
	ButtonUp                    // d-pad up
	ButtonDown                  // d-pad down
	ButtonLeft                  // d-pad left
	ButtonRight                 // d-pad right
	ButtonPrevPage              // LB
	ButtonNextPage              // RB
	ButtonMenu                  // pause menu
)

// Axis is a stick axis in [-1, 1].
type Axis int

const (
	AxisMoveX Axis = iota
	AxisMoveY
)

// Pad is the primitive actuator surface. Implementations must be idempotent
// per call and guarantee everything is released on process exit.
type Pad interface {
	PressButton(b Button) error
	ReleaseButton(b Button) error
	SetAxis(a Axis, value float64) error
	ReleaseAll() error
}
