package retry_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/okian/hackbite/pkg/retry"
	. "github.com/smartystreets/goconvey/convey"
)

var fast = retry.Config{MaxRetries: 3, InitialWait: time.Millisecond, MaxWait: 2 * time.Millisecond, Multiplier: 2}

func TestDo(t *testing.T) {
	Convey("Given a function that fails transiently", t, func() {
		calls := 0
		fn := func(context.Context) (string, error) {
			calls++
			if calls < 3 {
				return "", &retry.StatusError{StatusCode: http.StatusServiceUnavailable}
			}
			return "ok", nil
		}

		Convey("When it is retried", func() {
			out, err := retry.Do(context.Background(), fast, fn)

			Convey("Then it eventually succeeds", func() {
				So(err, ShouldBeNil)
				So(out, ShouldEqual, "ok")
				So(calls, ShouldEqual, 3)
			})
		})
	})

	Convey("Given a function that fails permanently", t, func() {
		calls := 0
		sentinel := errors.New("bad input")
		fn := func(context.Context) (int, error) {
			calls++
			return 0, retry.Permanent(sentinel)
		}

		Convey("When it is retried", func() {
			_, err := retry.Do(context.Background(), fast, fn)

			Convey("Then it stops after the first call", func() {
				So(errors.Is(err, sentinel), ShouldBeTrue)
				So(calls, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a function that always returns a retryable status", t, func() {
		calls := 0
		fn := func(context.Context) (int, error) {
			calls++
			return 0, &retry.StatusError{StatusCode: http.StatusTooManyRequests}
		}

		Convey("When retries are exhausted", func() {
			_, err := retry.Do(context.Background(), fast, fn)

			Convey("Then the last error is returned", func() {
				var se *retry.StatusError
				So(errors.As(err, &se), ShouldBeTrue)
				So(calls, ShouldEqual, fast.MaxRetries+1)
			})
		})
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := retry.Do(ctx, fast, func(context.Context) (int, error) { return 1, nil })

		Convey("Then no call is made", func() {
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestRetryableStatus(t *testing.T) {
	Convey("Given HTTP status codes", t, func() {
		So(retry.RetryableStatus(http.StatusBadGateway), ShouldBeTrue)
		So(retry.RetryableStatus(http.StatusNotFound), ShouldBeFalse)
		So(retry.Retryable(&retry.StatusError{StatusCode: http.StatusForbidden}), ShouldBeFalse)
	})
}
