// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cuda

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/emer/emergent/v2/timer"
	"github.com/emer/spikegen/kernel"
	"github.com/emer/spikegen/prefs"
	"github.com/emer/spikegen/spikeq"
)

// BlockFunChan is a channel that runs thread block functions on a
// streaming multiprocessor; the argument is the SM index
type BlockFunChan chan func(sm int)

// Device emulates a GPU: a grid of thread blocks is spread over NSM
// streaming multiprocessors, each a worker goroutine.  A launch returns
// only when every block has finished.
type Device struct {

	// device id
	ID int

	// number of streaming multiprocessors (worker goroutines)
	NSM int

	// if true, lock each SM worker to an OS thread
	LockThreads bool

	// block sizes used for each kernel
	BlockSizes [prefs.KernelsN]int

	// channels for the SM workers
	SMChans []BlockFunChan `view:"-"`

	// timers for each SM worker
	SMTimes []timer.Time `view:"-"`

	running bool
}

// NewDevice returns a device with nSM multiprocessors and block sizes from
// pf, with the SM workers started
func NewDevice(id, nSM int, pf *prefs.CUDA) *Device {
	dv := &Device{ID: id, NSM: nSM}
	if dv.NSM < 1 {
		dv.NSM = 1
	}
	for k := range dv.BlockSizes {
		dv.BlockSizes[k] = pf.BlockSize(prefs.Kernels(k))
	}
	dv.SMChans = make([]BlockFunChan, dv.NSM)
	for sm := range dv.SMChans {
		dv.SMChans[sm] = make(BlockFunChan)
	}
	dv.SMTimes = make([]timer.Time, dv.NSM)
	dv.StartThreads()
	return dv
}

// StartThreads starts up the SM workers, which monitor the channels for work
func (dv *Device) StartThreads() {
	if dv.running {
		return
	}
	for sm := 0; sm < dv.NSM; sm++ {
		go dv.SMWorker(sm)
	}
	dv.running = true
}

// StopThreads stops the SM workers
func (dv *Device) StopThreads() {
	if !dv.running {
		return
	}
	for sm := 0; sm < dv.NSM; sm++ {
		close(dv.SMChans[sm])
	}
	dv.running = false
}

// SMWorker is the worker function run by the SM goroutines
func (dv *Device) SMWorker(sm int) {
	if dv.LockThreads {
		runtime.LockOSThread()
	}
	for fun := range dv.SMChans[sm] {
		fun(sm)
	}
	if dv.LockThreads {
		runtime.UnlockOSThread()
	}
}

// Launch runs block(bi) for every block bi < nBlocks, blocks distributed
// round-robin over the SMs, and waits for all of them.  Each launch has
// its own wait group, so launches from different goroutines may overlap.
func (dv *Device) Launch(nBlocks int, block func(bi int)) {
	if !dv.running {
		panic(fmt.Sprintf("cuda: launch on closed device %d", dv.ID))
	}
	if dv.NSM <= 1 || nBlocks <= 1 {
		for bi := 0; bi < nBlocks; bi++ {
			block(bi)
		}
		return
	}
	var wg sync.WaitGroup
	fun := func(sm int) {
		dv.SMTimes[sm].Start()
		for bi := sm; bi < nBlocks; bi += dv.NSM {
			block(bi)
		}
		dv.SMTimes[sm].Stop()
		wg.Done()
	}
	nsm := min(dv.NSM, nBlocks)
	wg.Add(nsm)
	for sm := 0; sm < nsm; sm++ {
		dv.SMChans[sm] <- fun
	}
	wg.Wait()
}

// grid is the layout of one launch over n elements of nBatch batch
// elements: blocks of bs threads, blocks per batch element along x and
// batch along y
type grid struct {
	bs, nx, n int
}

func (dv *Device) grid(k prefs.Kernels, n int) grid {
	bs := dv.BlockSizes[k]
	return grid{bs: bs, nx: (n + bs - 1) / bs, n: n}
}

// threads returns the batch element and the range of element indexes of block bi
func (gd grid) threads(bi int) (b, st, ed int) {
	b = bi / gd.nx
	st = (bi % gd.nx) * gd.bs
	ed = min(st+gd.bs, gd.n)
	return
}

// blockSpikes are the spikes and spike events of one block, as collected
// in shared memory before being written to the queues
type blockSpikes struct {
	spk, evt []uint32
}

func (dv *Device) Neurons(k prefs.Kernels, nNeurons, nBatch int, body kernel.Body, spk, evt *spikeq.Queue) {
	gd := dv.grid(k, nNeurons)
	nBlocks := gd.nx * nBatch
	blks := make([]blockSpikes, nBlocks)
	dv.Launch(nBlocks, func(bi int) {
		b, st, ed := gd.threads(bi)
		bk := &blks[bi]
		for n := st; n < ed; n++ {
			fl := body(b, n)
			if fl&kernel.Spiked != 0 {
				bk.spk = append(bk.spk, uint32(n))
			}
			if fl&kernel.Evented != 0 {
				bk.evt = append(bk.evt, uint32(n))
			}
		}
	})
	// blocks are in batch-major, ascending neuron order
	for bi := range blks {
		b := bi / gd.nx
		spk.Append(b, blks[bi].spk)
		evt.Append(b, blks[bi].evt)
	}
}

func (dv *Device) Elements(k prefs.Kernels, n, nBatch int, fn func(b, i int)) {
	gd := dv.grid(k, n)
	dv.Launch(gd.nx*nBatch, func(bi int) {
		b, st, ed := gd.threads(bi)
		for i := st; i < ed; i++ {
			fn(b, i)
		}
	})
}

// ThrTimerReport reports the amount of time spent in each SM
func (dv *Device) ThrTimerReport() {
	fmt.Printf("\n\tSM\tSecs\tPct\n")
	pcts := make([]float64, dv.NSM)
	tot := 0.0
	for sm := 0; sm < dv.NSM; sm++ {
		pcts[sm] = dv.SMTimes[sm].TotalSecs()
		tot += pcts[sm]
	}
	for sm := 0; sm < dv.NSM; sm++ {
		fmt.Printf("\t%v \t%7.3f\t%7.1f\n", sm, pcts[sm], 100*(pcts[sm]/tot))
	}
}

// ThrTimerReset resets the per-SM timers
func (dv *Device) ThrTimerReset() {
	for sm := 0; sm < dv.NSM; sm++ {
		dv.SMTimes[sm].Reset()
	}
}
