package webclient

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/raysh454/ssoprobe/internal/logging"
)

// ChromeDPNavigator loads frame targets into a headless Chrome tab. Each
// Navigate call gets its own tab, closed before returning.
type ChromeDPNavigator struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	idleAfter   time.Duration
	logger      logging.Logger
}

func NewChromeDPNavigator(cfg Config, logger logging.Logger, opts ...chromedp.ExecAllocatorOption) (*ChromeDPNavigator, error) {
	idleAfter := cfg.IdleAfter
	if idleAfter <= 0 {
		idleAfter = 2 * time.Second
	}

	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !cfg.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if cfg.InsecureSkipVerify {
		allocOpts = append(allocOpts, chromedp.IgnoreCertErrors)
	}
	allocOpts = append(allocOpts, opts...)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	componentLogger := logger.With(logging.Field{Key: "backend", Value: "chromedp"})
	componentLogger.Debug("created chromedp navigator",
		logging.Field{Key: "idle_after", Value: idleAfter.String()})

	return &ChromeDPNavigator{
		allocCtx:    allocCtx,
		allocCancel: cancel,
		idleAfter:   idleAfter,
		logger:      componentLogger,
	}, nil
}

// waitNetworkIdle returns a channel signalled once no requests have been in
// flight for idleAfter, and a kick func that arms the timer when nothing was
// ever requested.
func waitNetworkIdle(ctx context.Context, idleAfter time.Duration) (<-chan struct{}, func()) {
	idleChan := make(chan struct{}, 1)
	var activeReqs int32
	var timer *time.Timer
	var timerMutex sync.Mutex
	var once sync.Once

	startTimer := func() {
		timerMutex.Lock()
		defer timerMutex.Unlock()

		if timer != nil {
			timer.Stop()
		}

		timer = time.AfterFunc(idleAfter, func() {
			if atomic.LoadInt32(&activeReqs) == 0 {
				once.Do(func() {
					idleChan <- struct{}{}
				})
			}
		})
	}

	chromedp.ListenTarget(ctx,
		func(ev any) {
			switch ev.(type) {
			case *network.EventRequestWillBeSent:
				atomic.AddInt32(&activeReqs, 1)
			case *network.EventLoadingFinished, *network.EventLoadingFailed:
				if atomic.AddInt32(&activeReqs, -1) <= 0 {
					atomic.StoreInt32(&activeReqs, 0)
					startTimer()
				}
			}
		})

	kick := func() {
		if atomic.LoadInt32(&activeReqs) == 0 {
			startTimer()
		}
	}
	return idleChan, kick
}

// Navigate loads target and waits for the network to settle. The page body is
// never read; only a screenshot is taken when asked.
func (n *ChromeDPNavigator) Navigate(ctx context.Context, target string, screenshot bool) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tabCtx, tabCancel := chromedp.NewContext(n.allocCtx)
	defer tabCancel()

	// ctx only cancels the run; the tab is torn down by tabCancel alone.
	runCtx, runCancel := context.WithCancel(tabCtx)
	defer runCancel()
	stop := context.AfterFunc(ctx, runCancel)
	defer stop()

	idle, kick := waitNetworkIdle(tabCtx, n.idleAfter)

	n.logger.Debug("navigating frame", logging.Field{Key: "url", Value: target})
	if err := chromedp.Run(runCtx, network.Enable(), chromedp.Navigate(target)); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("navigate %s: %w", target, err)
	}
	kick()

	select {
	case <-idle:
	case <-runCtx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, runCtx.Err()
	}

	if !screenshot {
		return nil, nil
	}

	var buf []byte
	if err := chromedp.Run(runCtx, chromedp.FullScreenshot(&buf, 100)); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("screenshot %s: %w", target, err)
	}
	return buf, nil
}

func (n *ChromeDPNavigator) Close() error {
	n.logger.Debug("closing chromedp navigator")
	n.allocCancel()
	return nil
}
