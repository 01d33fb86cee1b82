package store

import (
	"github.com/lni/dragonboat/v4/logger"
)

// TryTwice runs fn at most twice. The first failure is logged as a warning
// (to log, or the store logger if nil) and retried; the second failure is
// returned to the caller, who decides whether it is fatal.
//
// Example:
//
//	vec, err := store.TryTwice(nil, func() (*store.Vecx[Block], error) {
//		return store.NewVecx(opts, blockCodec)
//	})
func TryTwice[T any](log logger.ILogger, fn func() (T, error)) (T, error) {
	if log == nil {
		log = plog
	}
	v, err := fn()
	if err == nil {
		return v, nil
	}

	log.Warningf("first attempt failed, retrying once: %v", err)
	openRetriesTotal.Inc()
	return fn()
}
