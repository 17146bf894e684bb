package eos

import "github.com/sirupsen/logrus"

// InfiniteTicks requests suspension without a deadline: only an
// explicit signal (mail, queue, semaphore/mutex give) releases the
// task. Mirrors EOS_INFINITE_TICKS in the original kernel.
const InfiniteTicks uint32 = 0xffffffff

// MaxTick is the wrap boundary for the 32-bit tick counter.
const MaxTick uint32 = 0xffffffff

// Config holds the compile-time-ish knobs the original kernel exposed
// as preprocessor defines in config.h. Since a Kernel is now a runtime
// value instead of a single global link-time instance, these are
// plumbed in through functional Options instead.
type Config struct {
	// MaxPriority is the highest valid priority level; levels run
	// 0..MaxPriority inclusive, 0 is the idle task's level and is a
	// valid level for user tasks too (matching "0 is also a valid
	// priority" in scheduler.c).
	MaxPriority uint8

	// NameLen bounds a task's name; longer names are truncated, not
	// rejected, matching EOSCreateStaticTask's strncpy truncation.
	NameLen int

	// WatermarkByte fills the unused region of a task's scratch
	// Stack at creation; any byte that later differs flags overflow.
	WatermarkByte byte

	// WatermarkRoom is the number of trailing bytes reserved for
	// overflow detection (EOS_WATER_MARK_STACK_ROOM).
	WatermarkRoom int

	// Logger receives structured trace of scheduling decisions and
	// assertion failures. Nil disables logging entirely.
	Logger *logrus.Logger

	// IdleHook runs once per idle-task dispatch; it must not block
	// indefinitely, or no other ready check will ever happen once a
	// higher priority task wakes.
	IdleHook func()

	// MaxTicks bounds Scheduler's dispatch loop to a fixed number of
	// ticks, for deterministic tests (spec.md §6: "in tests runs
	// until a bound (e.g., 40 ticks)"). Zero means run until ctx is
	// canceled or a task fatally panics — the production behavior.
	MaxTicks uint64

	// InitialTick seeds the tick counter, for exercising wrap-safe
	// delay ordering (spec.md §8 scenario 6) without waiting for a
	// real 32-bit counter to wrap.
	InitialTick uint32
}

// DefaultConfig returns the configuration the original kernel shipped
// with: 8 priority levels (0..7), names of up to 16 runes, watermark byte 0xA5,
// 16 bytes of watermark room, and a no-op idle hook.
func DefaultConfig() Config {
	return Config{
		MaxPriority:   7,
		NameLen:       16,
		WatermarkByte: 0xA5,
		WatermarkRoom: 16,
		IdleHook:      func() {},
	}
}

// Option mutates a Config during NewKernel.
type Option func(*Config)

// WithMaxPriority sets the highest valid priority level.
func WithMaxPriority(p uint8) Option {
	return func(c *Config) { c.MaxPriority = p }
}

// WithNameLen bounds task name length.
func WithNameLen(n int) Option {
	return func(c *Config) { c.NameLen = n }
}

// WithWatermark sets the overflow-detection fill byte and room size.
func WithWatermark(b byte, room int) Option {
	return func(c *Config) { c.WatermarkByte = b; c.WatermarkRoom = room }
}

// WithLogger attaches a structured logger; pass nil to silence it.
func WithLogger(l *logrus.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithIdleHook overrides the function the idle task calls every time
// it is dispatched.
func WithIdleHook(f func()) Option {
	return func(c *Config) { c.IdleHook = f }
}

// WithMaxTicks bounds the dispatch loop to n ticks; pass 0 to run
// until canceled (the default).
func WithMaxTicks(n uint64) Option {
	return func(c *Config) { c.MaxTicks = n }
}

// WithInitialTick seeds the tick counter instead of starting from 0.
func WithInitialTick(tick uint32) Option {
	return func(c *Config) { c.InitialTick = tick }
}
