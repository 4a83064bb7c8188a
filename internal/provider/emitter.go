package provider

import (
	"sync"

	"github.com/ethereum/go-ethereum/event"
	"walletconn/internal/wallet"
)

const subscriptionBuffer = 16

// emitter fans provider events out to subscribers, one feed per event name
type emitter struct {
	mu    sync.Mutex
	feeds map[string]*event.Feed
}

func newEmitter() *emitter {
	return &emitter{feeds: make(map[string]*event.Feed)}
}

func (e *emitter) feed(name string) *event.Feed {
	e.mu.Lock()
	defer e.mu.Unlock()
	f, ok := e.feeds[name]
	if !ok {
		f = new(event.Feed)
		e.feeds[name] = f
	}
	return f
}

func (e *emitter) subscribe(name string, handler func(wallet.Event)) event.Subscription {
	ch := make(chan wallet.Event, subscriptionBuffer)
	sub := e.feed(name).Subscribe(ch)
	go func() {
		for {
			select {
			case ev := <-ch:
				handler(ev)
			case <-sub.Err():
				return
			}
		}
	}()
	return sub
}

// send delivers ev to every subscriber of its name and returns how many
// received it
func (e *emitter) send(ev wallet.Event) int {
	return e.feed(wallet.EventName(ev)).Send(ev)
}
