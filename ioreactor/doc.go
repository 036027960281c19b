// File: ioreactor/doc.go
// Author: momentics <momentics@gmail.com>
//
// Package ioreactor implements the I/O Manager: a Scheduler and a
// timer.Manager fronted by a one-shot, edge-triggered epoll reactor,
// grounded on original_source/hook/ioscheduler.cpp and the teacher's
// reactor/epoll_reactor.go. IOManager embeds both a *scheduler.Scheduler
// and a *timer.Manager and installs itself as the Scheduler's Hooks, the
// Go stand-in for "IOManager : public Scheduler, public TimerManager".
package ioreactor
