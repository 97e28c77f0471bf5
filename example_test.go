package rtkernel_test

import (
	"fmt"

	"github.com/joeycumines/go-rtkernel"
	"github.com/joeycumines/go-rtkernel/hostport"
)

func Example() {
	port, err := hostport.New(hostport.WithVirtualTime(true))
	if err != nil {
		panic(err)
	}
	k, err := rtkernel.New(port)
	if err != nil {
		panic(err)
	}
	defer k.Close()

	sem := rtkernel.NewSemaphore(k, 0)
	worker := k.CreateThread(rtkernel.ThreadConfig{
		Name:     `worker`,
		Priority: rtkernel.NormalPriority + 1,
		Func: func(any) rtkernel.Msg {
			for i := 0; i < 3; i++ {
				if sem.WaitTimeout(50) == rtkernel.MsgTimeout {
					fmt.Println(`worker: timed out at`, k.SystemTime())
					continue
				}
				fmt.Println(`worker: signalled at`, k.SystemTime())
			}
			return 7
		},
	})

	k.Sleep(10)
	sem.Signal()
	k.Sleep(90)
	sem.Signal()
	fmt.Println(`exit code:`, worker.Wait())

	//output:
	//worker: signalled at 10
	//worker: timed out at 60
	//worker: signalled at 100
	//exit code: 7
}

func ExampleVirtualTimer_SetContinuous() {
	port, _ := hostport.New(hostport.WithVirtualTime(true))
	k, _ := rtkernel.New(port)
	defer k.Close()

	vt := rtkernel.NewVirtualTimer(k)
	vt.SetContinuous(10, func(g *rtkernel.ISRGuard, _ any) {
		fmt.Println(`tick`, k.SystemTimeI(g))
	}, nil)
	k.Sleep(35)
	vt.Reset()

	//output:
	//tick 10
	//tick 20
	//tick 30
}
