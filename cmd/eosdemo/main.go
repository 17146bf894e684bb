// Command eosdemo runs the kernel's end-to-end scenarios and prints
// their trace to stdout, the way toysched/step7's plain func main()
// demo ran its scheduler. It is not part of the importable library
// surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/EdisonAgudelo/EOS"
)

func main() {
	scenario := flag.String("scenario", "alternation", "scenario to run: alternation, delay, mail, queue, mutex, wraparound")
	flag.Parse()

	run, ok := scenarios[*scenario]
	if !ok {
		fmt.Fprintf(os.Stderr, "eosdemo: unknown scenario %q\n", *scenario)
		os.Exit(1)
	}

	fmt.Printf("=== %s ===\n", *scenario)
	run()
	fmt.Println("=== done ===")
}

var scenarios = map[string]func(){
	"alternation": runAlternation,
	"delay":       runDelayOrdering,
	"mail":        runMailTimeout,
	"queue":       runQueueBackpressure,
	"mutex":       runPriorityInheritance,
	"wraparound":  runTickWraparound,
}

func runAlternation() {
	k := eos.NewKernel(eos.WithMaxTicks(6))
	var t1, t2 eos.Task
	k.CreateStaticTask(func(tk *eos.Task, _ any) {
		for {
			fmt.Println("T1")
			tk.Yield()
		}
	}, nil, 1, "T1", make([]byte, 64), &t1)
	k.CreateStaticTask(func(tk *eos.Task, _ any) {
		for {
			fmt.Println("T2")
			tk.Yield()
		}
	}, nil, 1, "T2", make([]byte, 64), &t2)

	if err := k.Scheduler(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

func runDelayOrdering() {
	k := eos.NewKernel(eos.WithMaxTicks(20))
	var t1, t2 eos.Task
	k.CreateStaticTask(func(tk *eos.Task, _ any) {
		tk.Delay(4)
		fmt.Println("T1 woke")
	}, nil, 1, "T1", make([]byte, 64), &t1)
	k.CreateStaticTask(func(tk *eos.Task, _ any) {
		tk.Delay(2)
		fmt.Println("T2 woke")
	}, nil, 1, "T2", make([]byte, 64), &t2)

	if err := k.Scheduler(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

func runMailTimeout() {
	k := eos.NewKernel(eos.WithMaxTicks(15))
	var waiter, sender eos.Task
	k.CreateStaticTask(func(tk *eos.Task, _ any) {
		var v uint32
		ok := tk.MailWait(&v, 10)
		fmt.Printf("waiter: ok=%v value=%d\n", ok, v)
	}, nil, 1, "waiter", make([]byte, 64), &waiter)
	k.CreateStaticTask(func(tk *eos.Task, _ any) {
		tk.Delay(3)
		k.MailSendISR(&waiter, 42)
		fmt.Println("sender: mailed 42")
	}, nil, 2, "sender", make([]byte, 64), &sender)

	if err := k.Scheduler(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

func runQueueBackpressure() {
	k := eos.NewKernel(eos.WithMaxTicks(10))
	q := eos.CreateStaticQueue[int](k, make([]int, 2))

	var sender, receiver eos.Task
	k.CreateStaticTask(func(tk *eos.Task, _ any) {
		for i, v := range []int{1, 2, 3} {
			ok, _ := q.Send(tk, v, eos.WriteBack, 0)
			fmt.Printf("sender: send(%d)=%v\n", v, ok)
			_ = i
		}
		ok, _ := q.Send(tk, 4, eos.WriteBack, eos.InfiniteTicks)
		fmt.Printf("sender: blocking send(4)=%v\n", ok)
	}, nil, 2, "sender", make([]byte, 64), &sender)
	k.CreateStaticTask(func(tk *eos.Task, _ any) {
		tk.Delay(2)
		v, ok := q.Receive(tk, 0)
		fmt.Printf("receiver: got %d ok=%v\n", v, ok)
	}, nil, 1, "receiver", make([]byte, 64), &receiver)

	if err := k.Scheduler(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

func runPriorityInheritance() {
	k := eos.NewKernel(eos.WithMaxTicks(20))
	m := eos.CreateStaticMutexSemaphore(k)

	var low, high eos.Task
	k.CreateStaticTask(func(tk *eos.Task, _ any) {
		m.Take(tk, 0)
		fmt.Println("L: took mutex")
		tk.Delay(3)
		fmt.Printf("L: priority while held = %d\n", tk.Priority)
		tk.Delay(2)
		m.GiveISR(tk)
		fmt.Printf("L: priority after give = %d\n", tk.Priority)
	}, nil, 1, "L", make([]byte, 64), &low)
	k.CreateStaticTask(func(tk *eos.Task, _ any) {
		tk.Delay(2)
		fmt.Println("H: blocking on mutex")
		m.Take(tk, eos.InfiniteTicks)
		fmt.Println("H: acquired mutex")
	}, nil, 3, "H", make([]byte, 64), &high)

	if err := k.Scheduler(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

func runTickWraparound() {
	k := eos.NewKernel(eos.WithMaxTicks(10), eos.WithInitialTick(0xFFFFFFFE))
	var task eos.Task
	k.CreateStaticTask(func(tk *eos.Task, _ any) {
		tk.Delay(5)
		fmt.Println("T: woke after wraparound")
	}, nil, 1, "T", make([]byte, 64), &task)

	if err := k.Scheduler(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}
