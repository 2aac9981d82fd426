// Package blink provides the signal/effect engine behind sparkle apps.
//
// Reading a signal while an effect runs subscribes that effect to the signal.
// Writing the signal re-runs every subscriber synchronously, in the order
// they first subscribed, before Set returns. There is no equality check:
// every write notifies, even when the new value equals the old one.
//
//	count := blink.NewSignal(0)
//	blink.RunEffect(func() {
//	    fmt.Println("count is", count.Get())
//	})              // prints "count is 0"
//	count.Set(5)    // prints "count is 5"
//	count.Set(5)    // prints "count is 5" again
//
// Derived signals are written by an effect that wraps their computation:
//
//	doubled := blink.NewDerived(func() int { return count.Get() * 2 })
//
// # Tracking
//
// Each Runtime keeps a stack of the effects that are currently running. The
// top of the stack is the effect a signal read subscribes. Effects may start
// other effects (directly, or by writing a signal whose subscribers re-run);
// the inner effect is tracked while it runs and the outer one resumes
// tracking afterwards.
//
// Subscriptions are never pruned. An effect that stopped reading a signal is
// still re-run when that signal changes. Use Effect.Dispose to stop an effect.
//
// # Failure
//
// A panic inside an effect unwinds into the Set call that triggered it.
// Subscribers after the panicking one are not notified for that write. The
// runtime's effect stack is restored on the way out.
//
// Write cycles (an effect writing a signal that re-runs itself) panic with
// ErrEffectDepth once the effect stack exceeds the runtime's max depth.
//
// # Threading
//
// A Runtime is a single-threaded scheduler. Its bookkeeping is guarded by
// mutexes, but interleaving effects from several goroutines on one runtime
// corrupts dependency tracking. Hosts serialize all work for one runtime on
// a single goroutine (see pkg/server), or give each goroutine its own runtime.
package blink
