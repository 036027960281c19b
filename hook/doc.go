// File: hook/doc.go
// Author: momentics <momentics@gmail.com>
//
// Package hook is the syscall-interposition surface: an explicit,
// opt-in set of functions (hook.Read, hook.Write, hook.Accept,
// hook.Connect, hook.Sleep, …) that mirror their syscall namesakes but
// transparently suspend the calling fiber instead of blocking its OS
// thread, when hooks are enabled for that goroutine and an IOManager has
// been installed via SetManager. Grounded on original_source/hook/hook.cpp.
//
// Go has no dynamic symbol interposition (no LD_PRELOAD equivalent), so
// unlike the original, callers must call these functions directly
// rather than getting the rewrite for free on the standard library
// calls; this is the resolution documented for "Hook enablement
// default" — hook-enabled means transparent async for code written
// against this package, not a runtime rewrite of net/syscall itself.
package hook
