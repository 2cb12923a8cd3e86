package shade

// Commands posted into the reactor's inbox. All are fire-and-forget
// except runCmd, which carries a single-use reply channel so the
// caller can observe compile/validate failure.

type command interface{ isCommand() }

type registerCmd struct {
	id      WindowID
	size    Size
	handler FrameHandler
}

type destroyCmd struct {
	id WindowID
}

type resizeCmd struct {
	id   WindowID
	size Size
}

type runCmd struct {
	id     WindowID
	source string
	reply  chan<- error
}

type mouseCmd struct {
	id  WindowID
	pos *[2]float32
}

type visibilityCmd struct {
	id      WindowID
	visible bool
}

type pausedCmd struct {
	id     WindowID
	paused bool
}

type resetCmd struct {
	id WindowID
}

func (registerCmd) isCommand()   {}
func (destroyCmd) isCommand()    {}
func (resizeCmd) isCommand()     {}
func (runCmd) isCommand()        {}
func (mouseCmd) isCommand()      {}
func (visibilityCmd) isCommand() {}
func (pausedCmd) isCommand()     {}
func (resetCmd) isCommand()      {}
