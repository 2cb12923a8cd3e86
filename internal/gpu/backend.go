package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// BackendKind identifies a GPU API a Backend can be built on.
type BackendKind int

const (
	// KindAuto probes DefaultChain in order and uses the first kind
	// that yields a working device.
	KindAuto BackendKind = iota

	// KindVulkan requests a Vulkan device. Creation fails when no
	// Vulkan adapter is available.
	KindVulkan

	// KindNoop requests the headless noop device. Always available;
	// executes no real GPU work. Used for tests and CI.
	KindNoop
)

// String returns the kind's lowercase name.
func (k BackendKind) String() string {
	switch k {
	case KindAuto:
		return "auto"
	case KindVulkan:
		return "vulkan"
	case KindNoop:
		return "noop"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Shareable reports whether one Backend of this kind can serve every
// surface in the process. All currently supported kinds expose a single
// device that can back any number of color targets.
func (k BackendKind) Shareable() bool {
	return true
}

// DefaultChain is the auto-detect probe order: highest capability
// first, ending with the universally available noop device.
//
// The chain is a plain ordered list so additional kinds slot in
// without touching the probing logic.
func DefaultChain() []BackendKind {
	return []BackendKind{KindVulkan, KindNoop}
}

// PowerPreference selects which adapter class to favor when a kind
// exposes more than one.
type PowerPreference int

const (
	// PowerDefault takes the first adapter of any type.
	PowerDefault PowerPreference = iota
	// PowerHigh prefers discrete over integrated adapters.
	PowerHigh
	// PowerLow prefers integrated over discrete adapters.
	PowerLow
)

// BackendOptions configures backend creation.
type BackendOptions struct {
	// Kind is the requested API. KindAuto walks Chain instead.
	Kind BackendKind

	// Power biases adapter selection.
	Power PowerPreference

	// Chain overrides the auto-detect probe order. Nil means
	// DefaultChain(). Ignored unless Kind is KindAuto.
	Chain []BackendKind
}

// backendErrorBuffer bounds the async driver error channel. When full,
// the oldest entry is dropped so reporting never blocks the reactor.
const backendErrorBuffer = 8

// Backend owns one GPU context: instance, device, and queue.
// Immutable after creation except for the error channel.
type Backend struct {
	id   uint64
	kind BackendKind
	name string

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	errs chan error
}

// NewBackend creates a backend for the requested kind. For KindAuto it
// walks the probe chain and returns the first kind that opens a device;
// only if every kind fails does it return an error. For an explicit
// kind any failure is returned as-is (startup-fatal to the caller).
//
// The id is assigned by the caller (the reactor owns id allocation).
func NewBackend(id uint64, opts BackendOptions) (*Backend, error) {
	if opts.Kind != KindAuto {
		b, err := openKind(id, opts.Kind, opts.Power)
		if err != nil {
			return nil, fmt.Errorf("create %s backend: %w", opts.Kind, err)
		}
		return b, nil
	}

	chain := opts.Chain
	if chain == nil {
		chain = DefaultChain()
	}
	var errs []error
	for _, kind := range chain {
		b, err := openKind(id, kind, opts.Power)
		if err != nil {
			slogger().Warn("backend probe failed, falling back",
				"kind", kind.String(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", kind, err))
			continue
		}
		slogger().Info("backend created",
			"id", id, "kind", kind.String(), "adapter", b.name)
		return b, nil
	}
	return nil, fmt.Errorf("no backend available: %w", errors.Join(errs...))
}

// openKind opens one device of the given kind.
func openKind(id uint64, kind BackendKind, power PowerPreference) (*Backend, error) {
	var (
		instance hal.Instance
		err      error
	)
	switch kind {
	case KindVulkan:
		api, ok := hal.GetBackend(gputypes.BackendVulkan)
		if !ok {
			return nil, errors.New("vulkan backend not available")
		}
		instance, err = api.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	case KindNoop:
		instance, err = noop.API{}.CreateInstance(nil)
	default:
		return nil, fmt.Errorf("unknown backend kind %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, errors.New("no GPU adapters found")
	}
	selected := pickAdapter(adapters, power)

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}

	return &Backend{
		id:       id,
		kind:     kind,
		name:     selected.Info.Name,
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		errs:     make(chan error, backendErrorBuffer),
	}, nil
}

// pickAdapter chooses an adapter according to the power preference,
// falling back to the other class and then to the first adapter.
func pickAdapter(adapters []hal.ExposedAdapter, power PowerPreference) *hal.ExposedAdapter {
	var first, second gputypes.DeviceType
	switch power {
	case PowerHigh:
		first, second = gputypes.DeviceTypeDiscreteGPU, gputypes.DeviceTypeIntegratedGPU
	case PowerLow:
		first, second = gputypes.DeviceTypeIntegratedGPU, gputypes.DeviceTypeDiscreteGPU
	default:
		return &adapters[0]
	}
	for i := range adapters {
		if adapters[i].Info.DeviceType == first {
			return &adapters[i]
		}
	}
	for i := range adapters {
		if adapters[i].Info.DeviceType == second {
			return &adapters[i]
		}
	}
	return &adapters[0]
}

// ID returns the backend's process-unique identifier.
func (b *Backend) ID() uint64 { return b.id }

// Kind returns the API the backend was built on.
func (b *Backend) Kind() BackendKind { return b.kind }

// AdapterName returns the selected adapter's reported name.
func (b *Backend) AdapterName() string { return b.name }

// Device returns the logical device.
func (b *Backend) Device() hal.Device { return b.device }

// Queue returns the command queue.
func (b *Backend) Queue() hal.Queue { return b.queue }

// Errors exposes device-level errors reported outside a command's
// normal return path (driver callbacks, submission faults noticed
// later). The channel is never closed; receivers should drain it
// opportunistically.
func (b *Backend) Errors() <-chan error { return b.errs }

// ReportError delivers an async device error without blocking. When
// the buffer is full the oldest entry is dropped.
func (b *Backend) ReportError(err error) {
	if err == nil {
		return
	}
	for {
		select {
		case b.errs <- err:
			return
		default:
		}
		select {
		case <-b.errs:
		default:
		}
	}
}

// Destroy releases the device and instance. Safe to call once; the
// backend must not be used afterwards.
func (b *Backend) Destroy() {
	if b.device != nil {
		b.device.Destroy()
		b.device = nil
	}
	if b.instance != nil {
		b.instance.Destroy()
		b.instance = nil
	}
	b.queue = nil
}
