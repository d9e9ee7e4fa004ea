package history

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"

	"RuleBadge/internal/model"
)

// Store loads the published history. Every failure collapses to an empty
// series; the cause only shows up in the log.
type Store struct {
	Remote        Fetcher
	Local         Fetcher
	Location      *time.Location
	Retries       uint64
	RetryInterval time.Duration
}

// NewStore creates a Store that fetches remote history with the given
// timeout and proxy, retrying transient failures up to retries times.
func NewStore(timeout time.Duration, proxyURL string, retries uint64, loc *time.Location) *Store {
	return &Store{
		Remote:        NewHTTPFetcher(timeout, proxyURL),
		Local:         FileFetcher{},
		Location:      loc,
		Retries:       retries,
		RetryInterval: 500 * time.Millisecond,
	}
}

// Load returns the series stored at location, or an empty series if it is
// missing, unreachable or malformed. It never fails.
func (s *Store) Load(ctx context.Context, location string) model.Series {
	data, err := s.fetch(ctx, location)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Printf("[INFO] no history at %s yet, starting empty", location)
		} else {
			log.Printf("[WARN] history unavailable at %s, starting empty: %v", location, err)
		}
		return model.Series{}
	}

	res := Validate(data, s.Location)
	if !res.Valid() {
		log.Printf("[WARN] history at %s is malformed, starting empty: %s", location, res.Reason)
		return model.Series{}
	}
	log.Printf("[INFO] loaded %d history points from %s", len(res.Series), location)
	return res.Series
}

func (s *Store) fetch(ctx context.Context, location string) ([]byte, error) {
	f := s.Local
	if isRemote(location) {
		f = s.Remote
	}
	if f == nil {
		return nil, errors.New("no fetcher configured")
	}

	var data []byte
	op := func() error {
		var err error
		data, err = f.Fetch(ctx, location)
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	eb := backoff.NewExponentialBackOff()
	if s.RetryInterval > 0 {
		eb.InitialInterval = s.RetryInterval
	}
	b := backoff.WithContext(backoff.WithMaxRetries(eb, s.Retries), ctx)
	err := backoff.RetryNotify(op, b, func(err error, wait time.Duration) {
		log.Printf("[WARN] %s history fetch failed: %v, retrying in %v", f.Name(), err, wait)
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// retryable reports whether a fetch error is worth another attempt.
// Missing documents and client errors are final.
func retryable(err error) bool {
	if errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}
