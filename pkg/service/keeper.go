package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang/glog"
)

// Default intervals of a Keeper.
const (
	DefaultKeepInterval = time.Second
	DefaultMaxBackoff   = 30 * time.Second
)

// Connector is something which can be (re)connected.
type Connector interface {
	IsConnected() bool
	Connect(address string) error
}

// Keeper keeps a Connector connected to Address. Failed attempts back off
// exponentially up to MaxBackoff.
type Keeper struct {
	Connector  Connector
	Address    string
	Interval   time.Duration
	MaxBackoff time.Duration

	// OnConnect is called after each successful connection.
	OnConnect func()
}

// NewKeeper creates a Keeper with default intervals.
func NewKeeper(c Connector, address string) *Keeper {
	return &Keeper{
		Connector:  c,
		Address:    address,
		Interval:   DefaultKeepInterval,
		MaxBackoff: DefaultMaxBackoff,
	}
}

// Name implements Named.
func (k *Keeper) Name() string {
	return "keeper"
}

// Run implements Runnable.
func (k *Keeper) Run(ctx context.Context) error {
	interval := k.Interval
	if interval <= 0 {
		interval = DefaultKeepInterval
	}
	for {
		if !k.Connector.IsConnected() {
			b := backoff.WithContext(k.backOff(interval), ctx)
			if err := backoff.RetryNotify(k.connect, b, k.retrying); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

func (k *Keeper) backOff(interval time.Duration) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = interval
	b.MaxInterval = k.MaxBackoff
	if b.MaxInterval < interval {
		b.MaxInterval = interval
	}
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

func (k *Keeper) connect() error {
	if err := k.Connector.Connect(k.Address); err != nil {
		return err
	}
	glog.Infof("connected %s", k.Address)
	if k.OnConnect != nil {
		k.OnConnect()
	}
	return nil
}

func (k *Keeper) retrying(err error, wait time.Duration) {
	glog.Warningf("connect %s: %v, retry in %s", k.Address, err, wait)
}
